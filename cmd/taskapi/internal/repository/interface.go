package repository

import (
	"context"
	"errors"

	"github.com/Sylvio51/TaskAPI/cmd/taskapi/internal/db/models"
)

// ErrNotFound is wrapped by every repository lookup that matches no row.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is wrapped when a unique column would be duplicated.
var ErrAlreadyExists = errors.New("already exists")

// UserRepository exposes persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	SetPasswordHash(ctx context.Context, id string, passwordHash string) error
	Disable(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)

	// FindByUsername returns the enabled user with the given username.
	// It wraps ErrNotFound when no enabled user matches.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// TaskRepository exposes persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Task, error)
}
