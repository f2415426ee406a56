package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"graphlet/internal/models"
	"graphlet/internal/security"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match. Callers must not distinguish the two cases.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenNotFound is returned for unknown or expired session tokens.
	ErrTokenNotFound = errors.New("session token not found")

	// ErrDuplicateUser is returned when a username or email is taken.
	ErrDuplicateUser = errors.New("username or email already exists")
)

// AuthRepositoryImpl handles users and session tokens.
type AuthRepositoryImpl struct {
	db            *gorm.DB
	tokenLifetime time.Duration
}

// NewAuthRepository creates a new auth repository. tokenDays is the lifetime
// of issued session tokens.
func NewAuthRepository(db *gorm.DB, tokenDays int) *AuthRepositoryImpl {
	return &AuthRepositoryImpl{
		db:            db,
		tokenLifetime: time.Duration(tokenDays) * 24 * time.Hour,
	}
}

// CreateUser registers a new user with a hashed password.
func (r *AuthRepositoryImpl) CreateUser(ctx context.Context, req *models.UserCreate) (*models.User, error) {
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		LastSeen:     time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by id.
func (r *AuthRepositoryImpl) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateUser applies a partial profile update.
func (r *AuthRepositoryImpl) UpdateUser(ctx context.Context, id uuid.UUID, update *models.UserUpdate) (*models.User, error) {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.Username != nil {
		updates["username"] = *update.Username
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}
	if update.ProfilePicURL != nil {
		updates["profile_pic_url"] = *update.ProfilePicURL
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := r.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and issues a new session token.
func (r *AuthRepositoryImpl) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !security.VerifyPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	token := &models.SessionToken{
		Token:     ksuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(r.tokenLifetime),
	}
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return "", fmt.Errorf("failed to store session token: %w", err)
	}

	// Best effort; a stale LastSeen is not worth failing the login.
	r.db.WithContext(ctx).Model(&user).Update("last_seen", time.Now().UTC())

	return token.Token, nil
}

// Logout deletes the session token. Deleting an unknown token is a no-op.
func (r *AuthRepositoryImpl) Logout(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Delete(&models.SessionToken{}, "token = ?", token).Error; err != nil {
		return fmt.Errorf("failed to delete session token: %w", err)
	}
	return nil
}

// ResolveToken maps a bearer token to its user id. Expired tokens resolve to
// ErrTokenNotFound.
func (r *AuthRepositoryImpl) ResolveToken(ctx context.Context, token string) (uuid.UUID, error) {
	var st models.SessionToken
	err := r.db.WithContext(ctx).First(&st, "token = ? AND expires_at > ?", token, time.Now().UTC()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	return st.UserID, nil
}
