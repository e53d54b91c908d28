package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sshcollectorpro/fortidriver/internal/model"
)

// ErrNotInitialized 未调用 InitSQLite
var ErrNotInitialized = errors.New("database not initialized")

const (
	defaultListLimit = 20
	maxListLimit     = 500
	writeAttempts    = 5
)

// SaveFacts 写入一条 facts 记录
func SaveFacts(record *model.FactsRecord) error {
	return WithRetry(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	}, writeAttempts, 0)
}

// ListFacts 按采集时间倒序返回某台设备的 facts 历史
func ListFacts(host string, limit int) ([]model.FactsRecord, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	records := make([]model.FactsRecord, 0)
	err := db.Where("host = ?", host).
		Order("collected_at DESC").
		Limit(clampLimit(limit)).
		Find(&records).Error
	return records, err
}

// SaveBackup 写入一条备份记录
func SaveBackup(record *model.BackupRecord) error {
	return WithRetry(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	}, writeAttempts, 0)
}

// ListBackups 按创建时间倒序返回某台设备的备份记录，host 为空时返回全部
func ListBackups(host string, limit int) ([]model.BackupRecord, error) {
	if db == nil {
		return nil, ErrNotInitialized
	}
	records := make([]model.BackupRecord, 0)
	q := db.Order("created_at DESC").Limit(clampLimit(limit))
	if host != "" {
		q = q.Where("host = ?", host)
	}
	return records, q.Find(&records).Error
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
