package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionRecord represents gateway_sessions table. Value is the encoded
// session (or limiter counter) exactly as fiber hands it to storage.
type SessionRecord struct {
	Key       string    `gorm:"primaryKey;size:128" json:"key"`
	Value     []byte    `gorm:"type:blob;not null" json:"-"`
	ExpiresAt int64     `gorm:"index;not null;default:0" json:"expires_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SessionRecord) TableName() string {
	return "gateway_sessions"
}

// Expired reports whether the record is past its expiry at now.
// ExpiresAt of zero never expires.
func (r *SessionRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != 0 && r.ExpiresAt <= now.Unix()
}

// AutoMigrate creates the tables the gateway owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&SessionRecord{},
	)
}
