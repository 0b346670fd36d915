package pipeline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/your-org/vodforge/pkg/storage"
)

// Materializer moves assets between durable storage and a run's scratch
// workspace.
type Materializer struct {
	store storage.Backend
}

func NewMaterializer(store storage.Backend) *Materializer {
	return &Materializer{store: store}
}

// Fetch makes the object at key available as a local file. Backends that
// expose a direct filesystem path are used as-is without copying; all
// others are stream-copied into scratchDir, never buffered in memory.
func (m *Materializer) Fetch(ctx context.Context, key, scratchDir string) (string, error) {
	if p, err := m.store.Path(key); err == nil {
		return p, nil
	}

	src, err := m.store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open object: %w", err)
	}
	defer src.Close() //nolint:errcheck

	dst := filepath.Join(scratchDir, path.Base(key))
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close() //nolint:errcheck
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

// Publish walks localRoot and writes every regular file to storage at
// base + its slash-normalized relative path. It returns the keys written
// so far even on failure; a partial publish is not rolled back.
func (m *Materializer) Publish(ctx context.Context, localRoot, base string) ([]string, error) {
	base = strings.TrimSuffix(base, "/")
	var published []string

	err := filepath.WalkDir(localRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localRoot, p)
		if err != nil {
			return err
		}
		key := base + "/" + filepath.ToSlash(rel)

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck
		info, err := f.Stat()
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, key, f, info.Size(), nil); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		published = append(published, key)
		return nil
	})
	if err != nil {
		return published, err
	}
	return published, nil
}
