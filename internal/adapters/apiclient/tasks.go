package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"

	"github.com/minitask/client/internal/domain/entities"
	"github.com/minitask/client/internal/ports"
)

const (
	defaultImageName        = "task_image.jpg"
	defaultImageContentType = "image/jpeg"
)

// UploadImage sends the image as the `image` part of a multipart form and
// returns the server-side path it was stored under.
func (c *Client) UploadImage(ctx context.Context, image ports.Image) (string, error) {
	f, err := os.Open(image.Path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	name := image.Name
	if name == "" {
		name = defaultImageName
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = defaultImageContentType
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(name)))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}

	body, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/uploadimage",
		body:        &buf,
		contentType: form.FormDataContentType(),
		auth:        true,
	})
	if err != nil {
		return "", err
	}
	var resp ports.UploadResponse
	if err := c.decode("/uploadimage", body, &resp); err != nil {
		return "", err
	}
	return resp.ImageURL, nil
}

// CreateTask posts a new task.
func (c *Client) CreateTask(ctx context.Context, input ports.TaskInput) (*entities.Task, error) {
	return c.sendTask(ctx, http.MethodPost, "/createtasks", input)
}

// UpdateTask replaces the editable fields of a task.
func (c *Client) UpdateTask(ctx context.Context, id entities.ID, input ports.TaskInput) (*entities.Task, error) {
	return c.sendTask(ctx, http.MethodPut, "/updatetasks/"+url.PathEscape(id.String()), input)
}

// ListTasks fetches the caller's tasks.
func (c *Client) ListTasks(ctx context.Context) ([]entities.Task, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: "/taskslist", auth: true, contentType: "application/json"})
	if err != nil {
		return nil, err
	}
	return decodeList[entities.Task](c, "/taskslist", body)
}

// DeleteTask deletes a task. Only the status matters; the body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id entities.ID) error {
	_, err := c.do(ctx, request{
		method:      http.MethodDelete,
		path:        "/deletetasks/" + url.PathEscape(id.String()),
		auth:        true,
		contentType: "application/json",
	})
	return err
}

func (c *Client) sendTask(ctx context.Context, method, path string, input ports.TaskInput) (*entities.Task, error) {
	req, err := c.jsonRequest(method, path, input, true)
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	var task entities.Task
	if err := c.decode(path, body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
