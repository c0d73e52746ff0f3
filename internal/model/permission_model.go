package model

type Permission struct {
	ID               string `gorm:"column:id;primaryKey"`
	UserID           string `gorm:"column:user_id;not null"`
	ClientID         string `gorm:"column:client_id;not null"`
	AppName          string `gorm:"column:app_name;not null"`
	ShareStreet      bool   `gorm:"column:share_street;default:false"`
	ShareCity        bool   `gorm:"column:share_city;default:false"`
	ShareState       bool   `gorm:"column:share_state;default:false"`
	SharePostalCode  bool   `gorm:"column:share_postal_code;default:false"`
	ShareCountry     bool   `gorm:"column:share_country;default:false"`
	ExpiresAt        *int64 `gorm:"column:expires_at"`
	MaxAccessCount   *int64 `gorm:"column:max_access_count"`
	AccessCount      int64  `gorm:"column:access_count;default:0"`
	Revoked          bool   `gorm:"column:revoked;default:false"` // monotonic, never unset
	RevokedAt        *int64 `gorm:"column:revoked_at"`
	RevocationReason string `gorm:"column:revocation_reason"`
	LastAccessedAt   *int64 `gorm:"column:last_accessed_at"`
	NotifyOnAccess   bool   `gorm:"column:notify_on_access;default:false"`
	CreatedAt        int64  `gorm:"column:created_at;not null"`
}

func (Permission) TableName() string {
	return "permissions"
}

// Shares reports whether the grant covers the given address field.
func (p *Permission) Shares(field string) bool {
	switch field {
	case "street":
		return p.ShareStreet
	case "city":
		return p.ShareCity
	case "state":
		return p.ShareState
	case "postal_code":
		return p.SharePostalCode
	case "country":
		return p.ShareCountry
	}
	return false
}

// SharedFields returns the fields the grant covers, in canonical order.
func (p *Permission) SharedFields() []string {
	fields := make([]string, 0, 5)
	for _, field := range []string{"street", "city", "state", "postal_code", "country"} {
		if p.Shares(field) {
			fields = append(fields, field)
		}
	}
	return fields
}

// PermissionShippingExtension is the typed variant attached to grants made
// for shipping integrations. A permission has at most one.
type PermissionShippingExtension struct {
	PermissionID        string `gorm:"column:permission_id;primaryKey"`
	Carriers            string `gorm:"column:carriers"` // JSON array
	Methods             string `gorm:"column:methods"`  // JSON array
	RequireConfirmation bool   `gorm:"column:require_confirmation;default:false"`
	CreatedAt           int64  `gorm:"column:created_at;not null"`
}

func (PermissionShippingExtension) TableName() string {
	return "permission_shipping_extensions"
}
