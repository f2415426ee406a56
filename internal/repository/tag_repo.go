package repository

import (
	"context"
	"errors"
	"fmt"

	"graphlet/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TagRepositoryImpl handles tags scoped to a workspace.
type TagRepositoryImpl struct {
	db     *gorm.DB
	access *AccessRepositoryImpl
}

func NewTagRepository(db *gorm.DB, access *AccessRepositoryImpl) *TagRepositoryImpl {
	return &TagRepositoryImpl{db: db, access: access}
}

func (r *TagRepositoryImpl) requireAccess(ctx context.Context, userID, workspaceID uuid.UUID) error {
	ok, err := r.access.HasWorkspaceAccess(ctx, userID, workspaceID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *TagRepositoryImpl) Create(ctx context.Context, userID, workspaceID uuid.UUID, req *models.TagCreate) (*models.Tag, error) {
	if err := r.requireAccess(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	tag := &models.Tag{
		Name:        req.Name,
		Color:       req.Color,
		WorkspaceID: workspaceID,
		CreatedBy:   userID,
	}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (r *TagRepositoryImpl) Get(ctx context.Context, userID, workspaceID, tagID uuid.UUID) (*models.Tag, error) {
	if err := r.requireAccess(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	var tag models.Tag
	err := r.db.WithContext(ctx).
		First(&tag, "id = ? AND workspace_id = ?", tagID, workspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepositoryImpl) List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*models.Tag, error) {
	if err := r.requireAccess(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	var tags []*models.Tag
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (r *TagRepositoryImpl) Update(ctx context.Context, userID, workspaceID, tagID uuid.UUID, req *models.TagUpdate) (*models.Tag, error) {
	tag, err := r.Get(ctx, userID, workspaceID, tagID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if len(updates) == 0 {
		return tag, nil
	}

	if err := r.db.WithContext(ctx).Model(tag).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	return tag, nil
}

func (r *TagRepositoryImpl) Delete(ctx context.Context, userID, workspaceID, tagID uuid.UUID) error {
	if _, err := r.Get(ctx, userID, workspaceID, tagID); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM note_tags WHERE tag_id = ?", tagID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, "id = ?", tagID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}
