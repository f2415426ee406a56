package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteKind distinguishes what a note's value holds.
type NoteKind string

const (
	NoteText NoteKind = "txt"
	NoteURL  NoteKind = "url"
	NoteFile NoteKind = "file"
)

func (k NoteKind) Valid() bool {
	switch k {
	case NoteText, NoteURL, NoteFile:
		return true
	}
	return false
}

// FileInfo describes an uploaded attachment referenced by a file note.
// The blob itself lives wherever ContentURL points; this service only
// stores the reference.
type FileInfo struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;column:file_id"`
	Filename    string    `json:"filename" gorm:"type:varchar(300);column:file_filename"`
	ContentType string    `json:"contentType" gorm:"type:varchar(100);column:file_content_type"`
	ContentURL  string    `json:"contentUrl" gorm:"type:varchar(1000);column:file_content_url"`
}

// Note is a single item on a workspace canvas.
type Note struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Kind        NoteKind  `json:"kind" gorm:"type:varchar(50);not null"`
	Value       *string   `json:"value,omitempty"`
	File        *FileInfo `json:"file,omitempty" gorm:"embedded"`
	WorkspaceID uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null;index"`
	CreatedBy   uuid.UUID `json:"createdBy" gorm:"type:uuid;not null"`
	PositionX   float64   `json:"positionX"`
	PositionY   float64   `json:"positionY"`
	Tags        []Tag     `json:"tags" gorm:"many2many:note_tags"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type NoteCreate struct {
	Name      string    `json:"name"`
	Kind      NoteKind  `json:"kind"`
	Value     *string   `json:"value,omitempty"`
	File      *FileInfo `json:"file,omitempty"`
	PositionX float64   `json:"positionX"`
	PositionY float64   `json:"positionY"`
	Tags      []uuid.UUID `json:"tags,omitempty"`
}

type NoteUpdate struct {
	Name      *string   `json:"name,omitempty"`
	Kind      *NoteKind `json:"kind,omitempty"`
	Value     *string   `json:"value,omitempty"`
	File      *FileInfo `json:"file,omitempty"`
	PositionX *float64  `json:"positionX,omitempty"`
	PositionY *float64  `json:"positionY,omitempty"`
}

// NoteRelation is a named edge between two notes in the same workspace.
type NoteRelation struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID uuid.UUID `json:"workspaceId" gorm:"type:uuid;not null;index"`
	Note1ID     uuid.UUID `json:"note1Id" gorm:"type:uuid;not null;index"`
	Note2ID     uuid.UUID `json:"note2Id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (r *NoteRelation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type NoteRelationCreate struct {
	OtherID uuid.UUID `json:"otherId"`
	Name    string    `json:"name"`
}

type NoteRelationUpdate struct {
	Name *string `json:"name,omitempty"`
}
