package repository

import (
	"context"
	"errors"
	"fmt"

	"graphlet/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when an entity does not exist or the caller has no
// access to it. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found or access denied")

// WorkspaceRepositoryImpl handles workspace rows and their access grants.
type WorkspaceRepositoryImpl struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepositoryImpl {
	return &WorkspaceRepositoryImpl{db: db}
}

// Create stores a new workspace and grants the creator Owner access in the
// same transaction.
func (r *WorkspaceRepositoryImpl) Create(ctx context.Context, ownerID uuid.UUID, req *models.WorkspaceCreate) (*models.Workspace, error) {
	workspace := &models.Workspace{
		Name:    req.Name,
		OwnerID: ownerID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return err
		}
		access := &models.WorkspaceAccess{
			UserID:      ownerID,
			WorkspaceID: workspace.ID,
			AccessLevel: models.AccessOwner,
		}
		return tx.Create(access).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return workspace, nil
}

// Get returns the workspace if the user has any access level to it.
func (r *WorkspaceRepositoryImpl) Get(ctx context.Context, userID, workspaceID uuid.UUID) (*models.Workspace, error) {
	var workspace models.Workspace
	err := r.db.WithContext(ctx).
		Joins("JOIN workspace_accesses ON workspace_accesses.workspace_id = workspaces.id").
		Where("workspaces.id = ? AND workspace_accesses.user_id = ?", workspaceID, userID).
		First(&workspace).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &workspace, nil
}

// List returns every workspace the user can access.
func (r *WorkspaceRepositoryImpl) List(ctx context.Context, userID uuid.UUID) ([]*models.Workspace, error) {
	var workspaces []*models.Workspace
	err := r.db.WithContext(ctx).
		Joins("JOIN workspace_accesses ON workspace_accesses.workspace_id = workspaces.id").
		Where("workspace_accesses.user_id = ?", userID).
		Order("workspaces.created_at").
		Find(&workspaces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// Update renames the workspace. Requires Admin access.
func (r *WorkspaceRepositoryImpl) Update(ctx context.Context, userID, workspaceID uuid.UUID, req *models.WorkspaceUpdate) (*models.Workspace, error) {
	ok, err := r.hasMinimumAccess(ctx, userID, workspaceID, models.AccessAdmin)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	workspace, err := r.Get(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := r.db.WithContext(ctx).Model(workspace).Update("name", *req.Name).Error; err != nil {
			return nil, fmt.Errorf("failed to update workspace: %w", err)
		}
	}
	return workspace, nil
}

// Delete removes the workspace and everything hanging off it. Owner only.
func (r *WorkspaceRepositoryImpl) Delete(ctx context.Context, userID, workspaceID uuid.UUID) error {
	ok, err := r.hasMinimumAccess(ctx, userID, workspaceID, models.AccessOwner)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM note_tags WHERE note_id IN (SELECT id FROM notes WHERE workspace_id = ?)", workspaceID).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.NoteRelation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.Tag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.WorkspaceAccess{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workspace{}, "id = ?", workspaceID).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepositoryImpl) hasMinimumAccess(ctx context.Context, userID, workspaceID uuid.UUID, min models.AccessLevel) (bool, error) {
	var access models.WorkspaceAccess
	err := r.db.WithContext(ctx).
		First(&access, "user_id = ? AND workspace_id = ?", userID, workspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check workspace access: %w", err)
	}
	return access.AccessLevel.MeetsMinimum(min), nil
}
