package ports

import "github.com/minitask/client/internal/domain/entities"

// Credentials is the login form and the /login and /signup request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,min=5,contains=@,contains=."`
	Password string `json:"password" validate:"required,min=4"`
}

// SignupForm adds the confirmation field, which never leaves the device.
type SignupForm struct {
	Email    string `validate:"required,min=5,contains=@,contains=."`
	Password string `validate:"required,min=4"`
	Confirm  string `validate:"eqfield=Password"`
}

// Credentials returns the request body for /signup.
func (f SignupForm) Credentials() Credentials {
	return Credentials{Email: f.Email, Password: f.Password}
}

// TaskInput is the create/edit form and the /createtasks and /updatetasks
// request body.
type TaskInput struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description"`
	State       entities.ID         `json:"state" validate:"required"`
	District    entities.ID         `json:"district" validate:"required"`
	City        entities.ID         `json:"city" validate:"required"`
	ImageURL    string              `json:"imageUrl,omitempty"`
	Status      entities.TaskStatus `json:"taskStatus,omitempty" validate:"omitempty,oneof=pending in-progress completed"`
}
