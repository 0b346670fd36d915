package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioBackend struct {
	client *minio.Client
	bucket string
}

func newMinioBackend(cfg Config) (Backend, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	return &minioBackend{client: cl, bucket: cfg.Bucket}, nil
}

func (m *minioBackend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; surface missing objects here instead of on first read.
	if _, err := obj.Stat(); err != nil {
		obj.Close() //nolint:errcheck
		return nil, err
	}
	return obj, nil
}

func (m *minioBackend) Save(ctx context.Context, key string, reader io.Reader, size int64, metadata map[string]string) error {
	opts := minio.PutObjectOptions{UserMetadata: metadata}
	_, err := m.client.PutObject(ctx, m.bucket, key, reader, size, opts)
	return err
}

// Path always fails for object storage; callers stream through Open.
func (m *minioBackend) Path(string) (string, error) {
	return "", ErrNoLocalPath
}

func (m *minioBackend) Close() error {
	return nil
}
