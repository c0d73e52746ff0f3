package model

type DeveloperApp struct {
	ClientID         string `gorm:"column:client_id;primaryKey"`
	Name             string `gorm:"column:name;not null"`
	RedirectURIs     string `gorm:"column:redirect_uris;not null"` // JSON array
	Status           string `gorm:"column:status;not null;default:development"`
	Verified         bool   `gorm:"column:verified;default:false"`
	ClientSecretHash string `gorm:"column:client_secret_hash"` // bcrypt, empty for public clients
	WebhookURL       string `gorm:"column:webhook_url"`
	OwnerUserID      string `gorm:"column:owner_user_id"`
	CreatedAt        int64  `gorm:"column:created_at;not null"`
	UpdatedAt        int64  `gorm:"column:updated_at;not null"`
}

func (DeveloperApp) TableName() string {
	return "developer_apps"
}
