package model

type Session struct {
	UUID      string `gorm:"column:uuid;primaryKey"`
	UserID    string `gorm:"column:user_id;not null"`
	Expiry    int64  `gorm:"column:expiry;not null"`
	CreatedAt int64  `gorm:"column:created_at;not null"`
}

func (Session) TableName() string {
	return "sessions"
}
