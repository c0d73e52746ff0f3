package model

// VerifiedAddress mirrors the output of the external verification pipeline.
// This service only reads it; verification itself happens upstream.
type VerifiedAddress struct {
	UserID     string `gorm:"column:user_id;primaryKey"`
	Street     string `gorm:"column:street"`
	City       string `gorm:"column:city"`
	State      string `gorm:"column:state"`
	PostalCode string `gorm:"column:postal_code"`
	Country    string `gorm:"column:country"`
	Status     string `gorm:"column:status;not null;default:pending"`
	VerifiedAt *int64 `gorm:"column:verified_at"`
	CreatedAt  int64  `gorm:"column:created_at;not null"`
	UpdatedAt  int64  `gorm:"column:updated_at;not null"`
}

func (VerifiedAddress) TableName() string {
	return "verified_addresses"
}
