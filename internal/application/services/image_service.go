package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/minitask/client/internal/infrastructure/logger"
)

// UploadPrefix is the public path uploaded images are served under
const UploadPrefix = "uploads"

// maxImageSize caps a single upload
const maxImageSize = 10 << 20

// ImageService stores uploaded images on local disk
type ImageService struct {
	dir    string
	logger *logger.Logger
}

// NewImageService creates the upload directory when missing
func NewImageService(dir string, logger *logger.Logger) (*ImageService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &ImageService{dir: dir, logger: logger}, nil
}

// Dir returns the directory images are written to
func (s *ImageService) Dir() string {
	return s.dir
}

// Save writes the image under a fresh name and returns its public path
func (s *ImageService) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxImageSize+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && n > maxImageSize {
		err = fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	s.logger.Infow("Image stored", "name", name, "bytes", n)
	return path.Join(UploadPrefix, name), nil
}
