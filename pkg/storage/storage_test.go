package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "ftp"})
	require.Error(t, err)
}

func TestLocalBackendRoundtrip(t *testing.T) {
	ctx := context.Background()
	backend, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, backend.Save(ctx, "videos/a/b.mp4", strings.NewReader("payload"), 7, nil))

	r, err := backend.Open(ctx, "videos/a/b.mp4")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	p, err := backend.Path("videos/a/b.mp4")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p) || strings.Contains(p, string(os.PathSeparator)))
	onDisk, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(onDisk))
}

func TestLocalBackendPathMissingKey(t *testing.T) {
	backend, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = backend.Path("missing.mp4")
	assert.True(t, errors.Is(err, ErrNoLocalPath))
}

func TestMemoryBackendHasNoLocalPath(t *testing.T) {
	m := NewMemory()
	_, err := m.Path("anything")
	assert.True(t, errors.Is(err, ErrNoLocalPath))
}

func TestMemoryBackendOverwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Save(ctx, "k", strings.NewReader("one"), 3, nil))
	require.NoError(t, m.Save(ctx, "k", strings.NewReader("two"), 3, nil))

	data, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "two", string(data))
	assert.Equal(t, []string{"k"}, m.Keys())
}
