package models

import "time"

// Connection is an organization's stored tenant database credential.
// EncryptedDSN is sealed with the service's connection key.
type Connection struct {
	OrgID        string    `gorm:"column:org_id;primary_key;type:varchar(64)" json:"org_id"`
	Driver       string    `gorm:"column:driver;type:varchar(32);not null;default:postgres" json:"driver"`
	Host         string    `gorm:"column:host;type:varchar(255)" json:"host"`
	EncryptedDSN []byte    `gorm:"column:encrypted_dsn;not null" json:"-"`
	Nonce        []byte    `gorm:"column:nonce;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Connection) TableName() string {
	return "tenant_connection"
}
