package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sshcollectorpro/fortidriver/pkg/fortinet"
)

// FactsRecord 一次 get_facts 的结果
type FactsRecord struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Host          string    `json:"host" gorm:"type:varchar(255);not null;index"`
	Hostname      string    `json:"hostname" gorm:"type:varchar(255)"`
	Vendor        string    `json:"vendor" gorm:"type:varchar(64)"`
	Model         string    `json:"model" gorm:"type:varchar(128)"`
	SerialNumber  string    `json:"serial_number" gorm:"type:varchar(128);index"`
	OSVersion     string    `json:"os_version" gorm:"type:varchar(64)"`
	FQDN          string    `json:"fqdn" gorm:"type:varchar(255)"`
	Uptime        int64     `json:"uptime"` // 秒，未知为 -1
	InterfaceList string    `json:"-" gorm:"type:text"`
	CollectedAt   time.Time `json:"collected_at" gorm:"index"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 表名
func (FactsRecord) TableName() string {
	return "facts_records"
}

// NewFactsRecord 由驱动返回的 Facts 构造记录
func NewFactsRecord(host string, facts fortinet.Facts, at time.Time) FactsRecord {
	ifaces, _ := json.Marshal(facts.InterfaceList)
	return FactsRecord{
		ID:            uuid.NewString(),
		Host:          host,
		Hostname:      facts.Hostname,
		Vendor:        facts.Vendor,
		Model:         facts.Model,
		SerialNumber:  facts.SerialNumber,
		OSVersion:     facts.OSVersion,
		FQDN:          facts.FQDN,
		Uptime:        facts.Uptime,
		InterfaceList: string(ifaces),
		CollectedAt:   at,
	}
}

// Facts 还原为驱动结构
func (r FactsRecord) Facts() fortinet.Facts {
	facts := fortinet.Facts{
		Vendor:        r.Vendor,
		Model:         r.Model,
		SerialNumber:  r.SerialNumber,
		OSVersion:     r.OSVersion,
		Hostname:      r.Hostname,
		FQDN:          r.FQDN,
		Uptime:        r.Uptime,
		InterfaceList: []string{},
	}
	if r.InterfaceList != "" {
		_ = json.Unmarshal([]byte(r.InterfaceList), &facts.InterfaceList)
	}
	return facts
}
