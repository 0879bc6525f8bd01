package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/localnerve/foodgram/internal/models"
)

// Local stores blobs below a directory that is served under baseURL.
type Local struct {
	root    string
	baseURL string
}

// NewLocal creates the root directory if needed.
func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Local{root: root, baseURL: baseURL}, nil
}

// Root is the directory served as static media.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) Save(_ context.Context, prefix string, blob Blob) (models.ImageRef, error) {
	key := NewKey(prefix, blob.ContentType)
	target := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to create media dir: %w", err)
	}
	if err := os.WriteFile(target, blob.Data, 0o644); err != nil {
		return models.ImageRef{}, fmt.Errorf("failed to write %s: %w", key, err)
	}
	return models.ImageRef{Key: key, ContentType: blob.ContentType, Size: int64(len(blob.Data))}, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (l *Local) URL(key string) string {
	if key == "" {
		return ""
	}
	return l.baseURL + "/" + key
}
