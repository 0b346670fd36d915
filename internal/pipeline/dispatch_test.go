package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/your-org/vodforge/pkg/storage"
)

type capturePublisher struct {
	err      error
	messages [][]byte
}

func (c *capturePublisher) Publish(_ context.Context, _ []byte, value []byte, _ map[string]string) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, value)
	return nil
}

func TestQueuedDispatchEnqueuesDescriptor(t *testing.T) {
	store := storage.NewMemory()
	records := NewMemoryRecords()
	seedAsset(t, store, records, "a1", "lecture.mp4")

	stub := &toolStub{}
	pub := &capturePublisher{}
	d := &QueuedDispatcher{
		Producer: pub,
		Pipeline: newTestPipeline(store, records, stub, defaultOptions()),
		Logger:   zap.NewNop(),
	}

	require.NoError(t, d.Dispatch(context.Background(), Descriptor{AssetID: "a1"}))
	require.Len(t, pub.messages, 1)

	var desc Descriptor
	require.NoError(t, json.Unmarshal(pub.messages[0], &desc))
	assert.Equal(t, "a1", desc.AssetID)

	// The run itself is deferred to the worker.
	assert.Zero(t, stub.encodeCalls)
}

func TestQueuedDispatchFallsBackInline(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	records := NewMemoryRecords()
	seedAsset(t, store, records, "a1", "lecture.mp4")

	d := &QueuedDispatcher{
		Producer: &capturePublisher{err: errors.New("brokers unreachable")},
		Pipeline: newTestPipeline(store, records, &toolStub{}, defaultOptions()),
		Logger:   zap.NewNop(),
	}

	require.NoError(t, d.Dispatch(ctx, Descriptor{AssetID: "a1"}))

	// Identical outcome to the queued path, just synchronous.
	rec, err := records.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "lecture/hls/master.m3u8", rec.Fields[FieldPlaylist])
}

func TestInlineDispatchRunsSynchronously(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	records := NewMemoryRecords()
	seedAsset(t, store, records, "a1", "lecture.mp4")

	d := &InlineDispatcher{Pipeline: newTestPipeline(store, records, &toolStub{}, defaultOptions())}
	require.NoError(t, d.Dispatch(ctx, Descriptor{AssetID: "a1"}))

	_, ok := store.Get("lecture/hls/master.m3u8")
	assert.True(t, ok)
}
