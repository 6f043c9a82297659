package apiclient

import (
	"context"
	"net/http"

	"github.com/minitask/client/internal/ports"
)

// Login posts the credentials to /login. A missing token or user is left for
// the caller to judge.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (*ports.LoginResponse, error) {
	req, err := c.jsonRequest(http.MethodPost, "/login", creds, false)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var resp ports.LoginResponse
	if err := c.decode("/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup posts the credentials to /signup.
func (c *Client) Signup(ctx context.Context, creds ports.Credentials) (*ports.MessageResponse, error) {
	req, err := c.jsonRequest(http.MethodPost, "/signup", creds, false)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var resp ports.MessageResponse
	if err := c.decode("/signup", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
