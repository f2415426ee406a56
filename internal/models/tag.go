package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RGB is a tag color. It is stored in the database as "r,g,b".
type RGB [3]int

func (c RGB) Value() (driver.Value, error) {
	return fmt.Sprintf("%d,%d,%d", c[0], c[1], c[2]), nil
}

func (c *RGB) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*c = RGB{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into RGB", src)
	}
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &c[0], &c[1], &c[2]); err != nil {
		return fmt.Errorf("malformed RGB value %q: %w", s, err)
	}
	return nil
}

// Tag labels notes within a workspace.
type Tag struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Color       RGB       `json:"color" gorm:"type:varchar(50);not null"`
	WorkspaceID uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null;index"`
	CreatedBy   uuid.UUID `json:"createdBy" gorm:"type:uuid;not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

type TagCreate struct {
	Name  string `json:"name"`
	Color RGB    `json:"color"`
}

type TagUpdate struct {
	Name  *string `json:"name,omitempty"`
	Color *RGB    `json:"color,omitempty"`
}
