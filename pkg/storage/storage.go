package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNoLocalPath is returned by Path when a backend cannot expose a key as
// a local filesystem path and callers must fall back to streaming via Open.
var ErrNoLocalPath = errors.New("storage: no local path for key")

// Config contains the information required to construct a backend.
type Config struct {
	Provider  string
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	LocalRoot string
}

// Backend is the capability set the pipeline expects from durable storage.
// Source assets are read through Open, derived artifacts written through
// Save; neither call may assume objects fit in memory.
type Backend interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Save(ctx context.Context, key string, reader io.Reader, size int64, metadata map[string]string) error
	// Path returns a local filesystem path for key, or ErrNoLocalPath if
	// the backend has no direct representation on disk.
	Path(key string) (string, error)
	Close() error
}

// New creates a storage backend based on the given configuration.
func New(cfg Config) (Backend, error) {
	switch cfg.Provider {
	case "minio", "s3":
		return newMinioBackend(cfg)
	case "local":
		return NewLocal(cfg.LocalRoot)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}
