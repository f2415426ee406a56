package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessLevel orders workspace permissions from weakest to strongest.
type AccessLevel string

const (
	AccessRead  AccessLevel = "Read"
	AccessWrite AccessLevel = "Write"
	AccessAdmin AccessLevel = "Admin"
	AccessOwner AccessLevel = "Owner"
)

var accessRank = map[AccessLevel]int{
	AccessRead:  0,
	AccessWrite: 1,
	AccessAdmin: 2,
	AccessOwner: 3,
}

// Valid reports whether l is one of the four defined levels.
func (l AccessLevel) Valid() bool {
	_, ok := accessRank[l]
	return ok
}

// MeetsMinimum reports whether l grants at least the given level.
// Unknown levels never meet any minimum.
func (l AccessLevel) MeetsMinimum(min AccessLevel) bool {
	lr, ok := accessRank[l]
	if !ok {
		return false
	}
	mr, ok := accessRank[min]
	if !ok {
		return false
	}
	return lr >= mr
}

// WorkspaceAccess grants a user a level of access to a workspace.
type WorkspaceAccess struct {
	UserID      uuid.UUID   `json:"userId" gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID   `json:"workspaceId" gorm:"type:uuid;primaryKey"`
	AccessLevel AccessLevel `json:"accessLevel" gorm:"type:varchar(20);not null"`
	InvitedBy   *uuid.UUID  `json:"invitedBy,omitempty" gorm:"type:uuid"`
	CreatedAt   time.Time   `json:"createdAt" gorm:"autoCreateTime"`
}

type AccessGrant struct {
	UserID      uuid.UUID   `json:"userId"`
	AccessLevel AccessLevel `json:"accessLevel"`
}
