// Package apiclient is the HTTP client for the MiniTask task service.
//
// Every call either returns a decoded, schema-checked value or one of three
// errors: *entities.NetworkError when no response arrived,
// *entities.RequestFailedError for a non-2xx status, and
// *entities.MalformedResponseError when the body does not have the expected
// shape. Nothing is retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/infrastructure/logger"
	"github.com/minitask/client/internal/ports"
)

const maxErrorBody = 4 << 10

// Client talks to the task service at a fixed base URL.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   ports.TokenSource
	validate *validator.Validate
	logger   *logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client. A zero timeout keeps the net/http default of none.
// tokens may be nil, in which case no call carries a bearer header.
func New(baseURL string, timeout time.Duration, tokens ports.TokenSource, log *logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		tokens:   tokens,
		validate: validator.New(),
		logger:   log.WithComponent("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ImageURL resolves a task's server-side image path against the base URL.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
}

func (c *Client) jsonRequest(method, path string, payload interface{}, auth bool) (request, error) {
	req := request{method: method, path: path, auth: auth, contentType: "application/json"}
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("encode %s body: %w", path, err)
		}
		req.body = bytes.NewReader(encoded)
	}
	return req, nil
}

// do sends the request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	url := c.baseURL + r.path
	req, err := http.NewRequestWithContext(ctx, r.method, url, r.body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", r.method, r.path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth && c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithRequestID(requestID).Debugw("Request got no response", "method", r.method, "path", r.path, "error", err)
		return nil, &entities.NetworkError{Method: r.method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.logger.LogHTTPRequest(r.method, r.path, requestID, resp.StatusCode, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		return nil, &entities.NetworkError{Method: r.method, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, requestFailed(resp.StatusCode, body)
	}
	return body, nil
}

// decode unmarshals body into out and checks it against its validate tags.
func (c *Client) decode(endpoint string, body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &entities.MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if err := c.validate.Struct(out); err != nil {
		return &entities.MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// decodeList is decode for array bodies; each element is checked.
func decodeList[T any](c *Client, endpoint string, body []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &entities.MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if items == nil {
		return nil, &entities.MalformedResponseError{Endpoint: endpoint, Err: errors.New("expected a JSON array, got null")}
	}
	for i := range items {
		if err := c.validate.Struct(&items[i]); err != nil {
			return nil, &entities.MalformedResponseError{Endpoint: endpoint, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}
	return items, nil
}

func requestFailed(status int, body []byte) *entities.RequestFailedError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	e := &entities.RequestFailedError{Status: status, Body: string(body)}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		if e.Message == "" {
			e.Message = payload.Error
		}
	}
	return e
}
