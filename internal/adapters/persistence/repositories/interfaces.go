package repositories

import (
	"context"
	"time"

	"simia-portal/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// TaskRepository defines task repository interface.
// UpdateOwned and DeleteOwned scope the statement to the creator so that a
// non-creator caller is indistinguishable from a missing row.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	UpdateOwned(ctx context.Context, id, creatorID string, updates map[string]interface{}) (*models.Task, error)
	DeleteOwned(ctx context.Context, id, creatorID string) error
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*models.Task, error)
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}
