package repository

import (
	"context"
	"errors"
	"fmt"

	"graphlet/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteRepositoryImpl handles notes, their tag assignments and relations.
type NoteRepositoryImpl struct {
	db     *gorm.DB
	access *AccessRepositoryImpl
}

func NewNoteRepository(db *gorm.DB, access *AccessRepositoryImpl) *NoteRepositoryImpl {
	return &NoteRepositoryImpl{db: db, access: access}
}

func (r *NoteRepositoryImpl) requireAccess(ctx context.Context, userID, workspaceID uuid.UUID) error {
	ok, err := r.access.HasWorkspaceAccess(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, userID, workspaceID uuid.UUID, req *models.NoteCreate) (*models.Note, error) {
	if err := r.requireAccess(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	note := &models.Note{
		Name:        req.Name,
		Kind:        req.Kind,
		Value:       req.Value,
		File:        req.File,
		WorkspaceID: workspaceID,
		CreatedBy:   userID,
		PositionX:   req.PositionX,
		PositionY:   req.PositionY,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags").Create(note).Error; err != nil {
			return err
		}
		if len(req.Tags) == 0 {
			return nil
		}
		var tags []models.Tag
		if err := tx.Where("id IN ? AND workspace_id = ?", req.Tags, workspaceID).Find(&tags).Error; err != nil {
			return err
		}
		if len(tags) != len(req.Tags) {
			return fmt.Errorf("unknown tag in request")
		}
		return tx.Model(note).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return note, nil
}

func (r *NoteRepositoryImpl) Get(ctx context.Context, userID, workspaceID, noteID uuid.UUID) (*models.Note, error) {
	if err := r.requireAccess(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	var note models.Note
	err := r.db.WithContext(ctx).
		Preload("Tags").
		First(&note, "id = ? AND workspace_id = ?", noteID, workspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &note, nil
}

func (r *NoteRepositoryImpl) List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*models.Note, error) {
	if err := r.requireAccess(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	var notes []*models.Note
	err := r.db.WithContext(ctx).
		Preload("Tags").
		Where("workspace_id = ?", workspaceID).
		Order("created_at").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, userID, workspaceID, noteID uuid.UUID, req *models.NoteUpdate) (*models.Note, error) {
	note, err := r.Get(ctx, userID, workspaceID, noteID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Kind != nil {
		updates["kind"] = *req.Kind
	}
	if req.Value != nil {
		updates["value"] = *req.Value
	}
	if req.PositionX != nil {
		updates["position_x"] = *req.PositionX
	}
	if req.PositionY != nil {
		updates["position_y"] = *req.PositionY
	}
	if req.File != nil {
		updates["file_id"] = req.File.ID
		updates["file_filename"] = req.File.Filename
		updates["file_content_type"] = req.File.ContentType
		updates["file_content_url"] = req.File.ContentURL
	}
	if len(updates) == 0 {
		return note, nil
	}

	if err := r.db.WithContext(ctx).Model(note).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, userID, workspaceID, noteID uuid.UUID) error {
	note, err := r.Get(ctx, userID, workspaceID, noteID)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(note).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("note1_id = ? OR note2_id = ?", noteID, noteID).Delete(&models.NoteRelation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Note{}, "id = ?", noteID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// AttachTag adds the tag to the note. Attaching an already-attached tag is a
// no-op.
func (r *NoteRepositoryImpl) AttachTag(ctx context.Context, userID, workspaceID, noteID, tagID uuid.UUID) (*models.Note, error) {
	note, err := r.Get(ctx, userID, workspaceID, noteID)
	if err != nil {
		return nil, err
	}

	var tag models.Tag
	err = r.db.WithContext(ctx).First(&tag, "id = ? AND workspace_id = ?", tagID, workspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	if err := r.db.WithContext(ctx).Model(note).Association("Tags").Append(&tag); err != nil {
		return nil, fmt.Errorf("failed to attach tag: %w", err)
	}
	return r.Get(ctx, userID, workspaceID, noteID)
}

func (r *NoteRepositoryImpl) DetachTag(ctx context.Context, userID, workspaceID, noteID, tagID uuid.UUID) error {
	note, err := r.Get(ctx, userID, workspaceID, noteID)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Model(note).Association("Tags").Delete(&models.Tag{ID: tagID}); err != nil {
		return fmt.Errorf("failed to detach tag: %w", err)
	}
	return nil
}

// CreateRelation links noteID to req.OtherID. Both notes must live in the
// workspace.
func (r *NoteRepositoryImpl) CreateRelation(ctx context.Context, userID, workspaceID, noteID uuid.UUID, req *models.NoteRelationCreate) (*models.NoteRelation, error) {
	if _, err := r.Get(ctx, userID, workspaceID, noteID); err != nil {
		return nil, err
	}
	if _, err := r.Get(ctx, userID, workspaceID, req.OtherID); err != nil {
		return nil, err
	}

	relation := &models.NoteRelation{
		WorkspaceID: workspaceID,
		Note1ID:     noteID,
		Note2ID:     req.OtherID,
		Name:        req.Name,
	}
	if err := r.db.WithContext(ctx).Create(relation).Error; err != nil {
		return nil, fmt.Errorf("failed to create relation: %w", err)
	}
	return relation, nil
}

func (r *NoteRepositoryImpl) GetRelation(ctx context.Context, userID, workspaceID, noteID, relationID uuid.UUID) (*models.NoteRelation, error) {
	if err := r.requireAccess(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	var relation models.NoteRelation
	err := r.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ? AND (note1_id = ? OR note2_id = ?)", relationID, workspaceID, noteID, noteID).
		First(&relation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get relation: %w", err)
	}
	return &relation, nil
}

func (r *NoteRepositoryImpl) UpdateRelation(ctx context.Context, userID, workspaceID, noteID, relationID uuid.UUID, req *models.NoteRelationUpdate) (*models.NoteRelation, error) {
	relation, err := r.GetRelation(ctx, userID, workspaceID, noteID, relationID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := r.db.WithContext(ctx).Model(relation).Update("name", *req.Name).Error; err != nil {
			return nil, fmt.Errorf("failed to update relation: %w", err)
		}
	}
	return relation, nil
}

func (r *NoteRepositoryImpl) DeleteRelation(ctx context.Context, userID, workspaceID, noteID, relationID uuid.UUID) error {
	if _, err := r.GetRelation(ctx, userID, workspaceID, noteID, relationID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.NoteRelation{}, "id = ?", relationID).Error; err != nil {
		return fmt.Errorf("failed to delete relation: %w", err)
	}
	return nil
}
