package repository

import (
	"context"

	"taskManager/models"
)

// UserStore defines operations on User entities.
// Lookups return (nil, nil) when the user does not exist.
type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

// TaskStore defines operations on Task entities.
// Lookups return (nil, nil) when the task does not exist.
type TaskStore interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, f TaskFilter) ([]models.Task, error)
	Search(ctx context.Context, query string, f TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, t *models.Task) (*models.Task, error)
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

var (
	_ UserStore = (*UserRepository)(nil)
	_ TaskStore = (*TaskRepository)(nil)
)
