package ports

import (
	"context"

	"github.com/minitask/client/internal/domain/entities"
)

// UserRepository stores reference API accounts.
type UserRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	GetByID(ctx context.Context, id string) (*entities.Account, error)
}

// TaskRepository stores reference API tasks. Every lookup is scoped to the
// owning account.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.StoredTask) error
	GetByID(ctx context.Context, ownerID, id string) (*entities.StoredTask, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.StoredTask, error)
	Update(ctx context.Context, task *entities.StoredTask) error
	Delete(ctx context.Context, ownerID, id string) error
}

// LocationRepository serves the seeded location hierarchy.
type LocationRepository interface {
	Children(ctx context.Context, level entities.LocationLevel, parentID string) ([]*entities.Location, error)
	GetByID(ctx context.Context, id string) (*entities.Location, error)
}

// Repositories groups the stores the reference API is built on.
type Repositories struct {
	Users     UserRepository
	Tasks     TaskRepository
	Locations LocationRepository
}
