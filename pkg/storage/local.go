package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// localBackend stores objects as plain files under a root directory.
// Keys map to paths with forward slashes translated for the host OS.
type localBackend struct {
	root string
}

// NewLocal constructs a filesystem-backed storage rooted at root.
func NewLocal(root string) (Backend, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage root: %w", err)
	}
	return &localBackend{root: root}, nil
}

func (l *localBackend) resolve(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *localBackend) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return os.Open(l.resolve(key))
}

func (l *localBackend) Save(_ context.Context, key string, reader io.Reader, _ int64, _ map[string]string) error {
	dst := l.resolve(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return f.Close()
}

// Path exposes the backing file directly so fetches can skip the copy.
func (l *localBackend) Path(key string) (string, error) {
	p := l.resolve(key)
	if _, err := os.Stat(p); err != nil {
		return "", ErrNoLocalPath
	}
	return p, nil
}

func (l *localBackend) Close() error {
	return nil
}
