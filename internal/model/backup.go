package model

import (
	"time"
)

// BackupRecord 一次配置备份
type BackupRecord struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Host        string    `json:"host" gorm:"type:varchar(255);not null;index"`
	Retrieve    string    `json:"retrieve" gorm:"type:varchar(16);not null"`
	Backend     string    `json:"backend" gorm:"type:varchar(16);not null"` // local|minio
	URI         string    `json:"uri" gorm:"type:text;not null"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum" gorm:"type:varchar(80)"`
	ContentType string    `json:"content_type" gorm:"type:varchar(64)"`
	Warning     string    `json:"warning,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 表名
func (BackupRecord) TableName() string {
	return "backup_records"
}
