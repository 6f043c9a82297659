package ports

import (
	"context"

	"github.com/minitask/client/internal/domain/entities"
)

// SessionStore persists the single on-device session record.
type SessionStore interface {
	// Save overwrites any prior record.
	Save(ctx context.Context, session *entities.Session) error
	// Load returns entities.ErrSessionNotFound when nothing is stored and a
	// *entities.ParseError when the stored record is not well-formed.
	Load(ctx context.Context) (*entities.Session, error)
	// Clear is idempotent.
	Clear(ctx context.Context) error
}

// TokenSource yields the bearer token for authenticated calls. ok is false
// when no session is present.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool)
}

// AuthAPI covers the unauthenticated endpoints.
type AuthAPI interface {
	Login(ctx context.Context, creds Credentials) (*LoginResponse, error)
	Signup(ctx context.Context, creds Credentials) (*MessageResponse, error)
}

// LocationAPI fetches one level of the location hierarchy.
type LocationAPI interface {
	States(ctx context.Context) ([]entities.LocationNode, error)
	Districts(ctx context.Context, stateID entities.ID) ([]entities.LocationNode, error)
	Cities(ctx context.Context, districtID entities.ID) ([]entities.LocationNode, error)
}

// TaskAPI covers task CRUD and the image upload that precedes creation.
type TaskAPI interface {
	UploadImage(ctx context.Context, image Image) (string, error)
	CreateTask(ctx context.Context, input TaskInput) (*entities.Task, error)
	ListTasks(ctx context.Context) ([]entities.Task, error)
	UpdateTask(ctx context.Context, id entities.ID, input TaskInput) (*entities.Task, error)
	DeleteTask(ctx context.Context, id entities.ID) error
}

// API is everything the flows need from the remote service.
type API interface {
	AuthAPI
	LocationAPI
	TaskAPI
}

// Image is a captured image waiting to be uploaded.
type Image struct {
	Path        string
	Name        string
	ContentType string
}

// LoginResponse is the body of a successful /login call. Either field may be
// missing; the auth flow treats that as a failed login.
type LoginResponse struct {
	Token string         `json:"token"`
	User  *entities.User `json:"user"`
}

// MessageResponse is the generic {message} body.
type MessageResponse struct {
	Message string `json:"message"`
}

// UploadResponse is the body of /uploadimage.
type UploadResponse struct {
	ImageURL string `json:"imageUrl" validate:"required"`
}
