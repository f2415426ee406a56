package api

import (
	"context"

	"graphlet/internal/models"

	"github.com/google/uuid"
)

// AuthService defines what handlers need from the auth layer. Only the
// methods handlers actually call are declared; the auth repository satisfies
// it.
type AuthService interface {
	CreateUser(ctx context.Context, req *models.UserCreate) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, update *models.UserUpdate) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
}
