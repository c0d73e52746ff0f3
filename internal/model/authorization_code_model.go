package model

type AuthorizationCode struct {
	Code         string `gorm:"column:code;primaryKey"`
	ClientID     string `gorm:"column:client_id;not null"`
	UserID       string `gorm:"column:user_id;not null"`
	PermissionID string `gorm:"column:permission_id;not null"`
	RedirectURI  string `gorm:"column:redirect_uri;not null"`
	Scope        string `gorm:"column:scope;not null"` // space separated field names
	Used         bool   `gorm:"column:used;default:false"`
	ExpiresAt    int64  `gorm:"column:expires_at;not null"`
	CreatedAt    int64  `gorm:"column:created_at;not null"`
}

func (AuthorizationCode) TableName() string {
	return "authorization_codes"
}
