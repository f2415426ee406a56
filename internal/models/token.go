package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionToken is a bearer token issued at login. Tokens are KSUIDs, so the
// primary key sorts by issue time.
type SessionToken struct {
	Token     string    `json:"token" gorm:"type:char(27);primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
