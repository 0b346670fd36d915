package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vodforge/pkg/storage"
)

func TestFetchUsesLocalPathFastPath(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewLocal(root)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "videos/in.mp4", strings.NewReader("source"), 6, nil))

	scratch := t.TempDir()
	local, err := NewMaterializer(store).Fetch(context.Background(), "videos/in.mp4", scratch)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "videos", "in.mp4"), local)
	assert.False(t, strings.HasPrefix(local, scratch), "fast path must not copy")
}

func TestFetchStreamCopiesWithoutLocalPath(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Save(context.Background(), "videos/in.mp4", strings.NewReader("source-bytes"), 12, nil))

	scratch := t.TempDir()
	local, err := NewMaterializer(store).Fetch(context.Background(), "videos/in.mp4", scratch)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(scratch, "in.mp4"), local)
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "source-bytes", string(data))
}

func TestFetchMissingKey(t *testing.T) {
	store := storage.NewMemory()
	_, err := NewMaterializer(store).Fetch(context.Background(), "nope.mp4", t.TempDir())
	require.Error(t, err)
}

func TestPublishTree(t *testing.T) {
	localRoot := t.TempDir()
	for _, p := range []string{"master.m3u8", "v360/index.m3u8", "v360/seg_0000.ts", "v720/index.m3u8"} {
		full := filepath.Join(localRoot, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("content of "+p), 0o644))
	}

	store := storage.NewMemory()
	keys, err := NewMaterializer(store).Publish(context.Background(), localRoot, "lecture/hls/")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"lecture/hls/master.m3u8",
		"lecture/hls/v360/index.m3u8",
		"lecture/hls/v360/seg_0000.ts",
		"lecture/hls/v720/index.m3u8",
	}, keys)

	data, ok := store.Get("lecture/hls/v360/seg_0000.ts")
	require.True(t, ok)
	assert.True(t, bytes.Equal([]byte("content of v360/seg_0000.ts"), data))
}

func TestPublishPartialFailureKeepsEarlierFiles(t *testing.T) {
	localRoot := t.TempDir()
	for _, p := range []string{"master.m3u8", "v360/index.m3u8", "v720/index.m3u8"} {
		full := filepath.Join(localRoot, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0o644))
	}

	store := storage.NewMemory()
	store.FailSaves = "v720"

	keys, err := NewMaterializer(store).Publish(context.Background(), localRoot, "lecture/hls")
	require.Error(t, err)

	// Files published before the failure stay in place; no rollback.
	assert.Contains(t, keys, "lecture/hls/master.m3u8")
	assert.Contains(t, keys, "lecture/hls/v360/index.m3u8")
	_, ok := store.Get("lecture/hls/v360/index.m3u8")
	assert.True(t, ok)
	_, ok = store.Get("lecture/hls/v720/index.m3u8")
	assert.False(t, ok)
}
