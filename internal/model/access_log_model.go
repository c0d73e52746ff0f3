package model

// AccessLogEntry is append-only. Rows are never updated or deleted.
type AccessLogEntry struct {
	ID             string `gorm:"column:id;primaryKey"`
	PermissionID   string `gorm:"column:permission_id;not null"`
	ClientID       string `gorm:"column:client_id;not null"`
	UserID         string `gorm:"column:user_id;not null"`
	FieldsAccessed string `gorm:"column:fields_accessed;not null"` // JSON array
	CallerIP       string `gorm:"column:caller_ip"`
	CreatedAt      int64  `gorm:"column:created_at;not null"`
}

func (AccessLogEntry) TableName() string {
	return "access_log_entries"
}
