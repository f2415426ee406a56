package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that can own workspaces and join live sessions.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username      string    `json:"username" gorm:"type:varchar(200);not null;uniqueIndex"`
	Email         string    `json:"email" gorm:"type:varchar(320);not null;uniqueIndex"`
	ProfilePicURL string    `json:"profilePicUrl" gorm:"type:varchar(500)"`
	// Stored as v1$<iterations>$<salt b64>$<hash b64>, see internal/security.
	PasswordHash string    `json:"-" gorm:"type:varchar(500);not null"`
	LastSeen     time.Time `json:"lastSeen"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// PublicUser is the profile exposed to other users.
type PublicUser struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	ProfilePicURL string    `json:"profilePicUrl"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		ProfilePicURL: u.ProfilePicURL,
	}
}

type UserCreate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserUpdate struct {
	Username      *string `json:"username,omitempty"`
	Email         *string `json:"email,omitempty"`
	ProfilePicURL *string `json:"profilePicUrl,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
