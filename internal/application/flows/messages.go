package flows

import (
	"errors"
	"fmt"

	"github.com/minitask/client/internal/domain/entities"
)

// Messages for failures that are not form checks.
const (
	MsgAuthRequired      = "Authentication failed. Please log in again."
	MsgSessionExpired    = "Your session has expired. Please log in again."
	MsgLoginFailed       = "Invalid email or password."
	MsgServerUnreachable = "Could not connect to server. Please try again."
	MsgUnexpectedReply   = "Unexpected response from server."
	MsgGeneric           = "Something went wrong. Please try again."
	MsgPending           = "Please wait for the current request to finish."
	MsgNoTasks           = "No tasks found"
	MsgImageUpload       = "Image upload failed"
)

// Error sentinels for screen-level failures.
var (
	ErrImageUploadFailed = errors.New("image upload failed")
	ErrAuthRequired      = errors.New("authentication required")
	ErrUnknownOption     = errors.New("option is not offered at this level")
)

// Message maps any flow error to the text a user sees.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *entities.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}

	switch {
	case errors.Is(err, ErrSubmissionPending):
		return MsgPending
	case errors.Is(err, ErrImageUploadFailed):
		return MsgImageUpload
	case errors.Is(err, ErrAuthRequired), errors.Is(err, entities.ErrSessionNotFound):
		return MsgAuthRequired
	case errors.Is(err, entities.ErrSessionExpired):
		return MsgSessionExpired
	case errors.Is(err, entities.ErrAuthenticationFailed):
		return MsgLoginFailed
	case errors.Is(err, entities.ErrNetworkUnavailable):
		return MsgServerUnreachable
	case errors.Is(err, entities.ErrMalformedResponse):
		return MsgUnexpectedReply
	}

	var failed *entities.RequestFailedError
	if errors.As(err, &failed) {
		if failed.Message != "" {
			return failed.Message
		}
		return fmt.Sprintf("Request failed (status %d)", failed.Status)
	}

	return MsgGeneric
}
