package repository

import (
	"context"
	"errors"
	"fmt"

	"graphlet/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessRepositoryImpl handles workspace access grants. It also implements
// the access check consumed by the live session handshake.
type AccessRepositoryImpl struct {
	db *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepositoryImpl {
	return &AccessRepositoryImpl{db: db}
}

// Get returns the caller's own access row for the workspace.
func (r *AccessRepositoryImpl) Get(ctx context.Context, userID, workspaceID uuid.UUID) (*models.WorkspaceAccess, error) {
	var access models.WorkspaceAccess
	err := r.db.WithContext(ctx).
		First(&access, "user_id = ? AND workspace_id = ?", userID, workspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get access: %w", err)
	}
	return &access, nil
}

// List returns every access grant on the workspace. Requires the caller to
// have access themselves.
func (r *AccessRepositoryImpl) List(ctx context.Context, userID, workspaceID uuid.UUID) ([]*models.WorkspaceAccess, error) {
	if _, err := r.Get(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	var grants []*models.WorkspaceAccess
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at").
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list access: %w", err)
	}
	return grants, nil
}

// Grant gives targetUserID the requested level, or updates an existing grant.
// The granter needs Admin access, and Owner can never be granted this way.
func (r *AccessRepositoryImpl) Grant(ctx context.Context, granterID, workspaceID uuid.UUID, grant *models.AccessGrant) (*models.WorkspaceAccess, error) {
	if !grant.AccessLevel.Valid() || grant.AccessLevel == models.AccessOwner {
		return nil, fmt.Errorf("cannot grant access level %q", grant.AccessLevel)
	}

	granter, err := r.Get(ctx, granterID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !granter.AccessLevel.MeetsMinimum(models.AccessAdmin) {
		return nil, ErrNotFound
	}

	access := &models.WorkspaceAccess{
		UserID:      grant.UserID,
		WorkspaceID: workspaceID,
		AccessLevel: grant.AccessLevel,
		InvitedBy:   &granterID,
	}

	existing, err := r.Get(ctx, grant.UserID, workspaceID)
	switch {
	case err == nil:
		if existing.AccessLevel == models.AccessOwner {
			return nil, fmt.Errorf("cannot change the owner's access")
		}
		err = r.db.WithContext(ctx).
			Model(&models.WorkspaceAccess{}).
			Where("user_id = ? AND workspace_id = ?", grant.UserID, workspaceID).
			Updates(map[string]interface{}{"access_level": grant.AccessLevel, "invited_by": granterID}).Error
		if err != nil {
			return nil, fmt.Errorf("failed to update access: %w", err)
		}
	case errors.Is(err, ErrNotFound):
		if err := r.db.WithContext(ctx).Create(access).Error; err != nil {
			return nil, fmt.Errorf("failed to grant access: %w", err)
		}
	default:
		return nil, err
	}

	return access, nil
}

// Revoke removes targetUserID's grant. The revoker needs Admin access; the
// owner's grant cannot be revoked.
func (r *AccessRepositoryImpl) Revoke(ctx context.Context, revokerID, workspaceID, targetUserID uuid.UUID) error {
	revoker, err := r.Get(ctx, revokerID, workspaceID)
	if err != nil {
		return err
	}
	if !revoker.AccessLevel.MeetsMinimum(models.AccessAdmin) {
		return ErrNotFound
	}

	target, err := r.Get(ctx, targetUserID, workspaceID)
	if err != nil {
		return err
	}
	if target.AccessLevel == models.AccessOwner {
		return fmt.Errorf("cannot revoke the owner's access")
	}

	err = r.db.WithContext(ctx).
		Delete(&models.WorkspaceAccess{}, "user_id = ? AND workspace_id = ?", targetUserID, workspaceID).Error
	if err != nil {
		return fmt.Errorf("failed to revoke access: %w", err)
	}
	return nil
}

// HasWorkspaceAccess reports whether the user holds any access level on the
// workspace. Used by the live session handshake.
func (r *AccessRepositoryImpl) HasWorkspaceAccess(ctx context.Context, userID, workspaceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WorkspaceAccess{}).
		Where("user_id = ? AND workspace_id = ?", userID, workspaceID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check workspace access: %w", err)
	}
	return count > 0, nil
}
