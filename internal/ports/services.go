package ports

import (
	"context"
	"io"

	"github.com/minitask/client/internal/domain/entities"
)

// AuthService issues and verifies reference API tokens.
type AuthService interface {
	Signup(ctx context.Context, req Credentials) error
	Login(ctx context.Context, req Credentials) (*LoginResponse, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// TaskService implements task CRUD for an authenticated account.
type TaskService interface {
	CreateTask(ctx context.Context, ownerID string, req TaskInput) (*entities.Task, error)
	ListTasks(ctx context.Context, ownerID string) ([]entities.Task, error)
	UpdateTask(ctx context.Context, ownerID, id string, req TaskInput) (*entities.Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error
}

// LocationService serves one level of the hierarchy at a time.
type LocationService interface {
	States(ctx context.Context) ([]entities.LocationNode, error)
	Districts(ctx context.Context, stateID string) ([]entities.LocationNode, error)
	Cities(ctx context.Context, districtID string) ([]entities.LocationNode, error)
}

// ImageService stores uploaded task images.
type ImageService interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Claims is what the bearer middleware puts into the request context.
type Claims struct {
	UserID string
	Email  string
}
