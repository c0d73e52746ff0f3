package model

// Token is an access/refresh pair, always minted together. The two kill
// switches are separate: Revoked (explicit revocation) invalidates both
// values, RefreshRevoked (set on rotation) only burns the refresh value and
// leaves the access value live until its own expiry.
type Token struct {
	ID             string `gorm:"column:id;primaryKey"`
	AccessValue    string `gorm:"column:access_value;uniqueIndex;not null"`
	RefreshValue   string `gorm:"column:refresh_value;uniqueIndex;not null"`
	UserID         string `gorm:"column:user_id;not null"`
	ClientID       string `gorm:"column:client_id;not null"`
	PermissionID   string `gorm:"column:permission_id;not null"`
	Scope          string `gorm:"column:scope;not null"`
	AccessExpiry   int64  `gorm:"column:access_expiry;not null"`
	RefreshExpiry  int64  `gorm:"column:refresh_expiry;not null"`
	Revoked        bool   `gorm:"column:revoked;default:false"`
	RevokedAt      *int64 `gorm:"column:revoked_at"`
	RefreshRevoked bool   `gorm:"column:refresh_revoked;default:false"`
	RotatedFrom    string `gorm:"column:rotated_from"` // token id this pair replaced, audit only
	CreatedAt      int64  `gorm:"column:created_at;not null"`
}

func (Token) TableName() string {
	return "tokens"
}
