package entities

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrValidation           = errors.New("validation failed")
	ErrNetworkUnavailable   = errors.New("network unavailable")
	ErrRequestFailed        = errors.New("request failed")
	ErrMalformedResponse    = errors.New("malformed response")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrAuthenticationFailed = errors.New("invalid email or password")

	ErrUserExists           = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTaskNotFound         = errors.New("task not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrInconsistentLocation = errors.New("district and city must belong to the selected state and district")
	ErrUnauthorized         = errors.New("unauthorized")
)

// ValidationError is a client-side form check that blocked a submission.
// Message is shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ParseError reports a stored session record that is not well-formed.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse stored record %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NetworkError is a request that never got a response.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network unavailable: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkUnavailable
}

// RequestFailedError is a response with a non-success status. Message is the
// server-supplied `message` field when the body carried one.
type RequestFailedError struct {
	Status  int
	Body    string
	Message string
}

func (e *RequestFailedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// MalformedResponseError is a success response whose body does not match the
// expected shape.
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}
