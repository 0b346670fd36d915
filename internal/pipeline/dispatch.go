package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// Dispatcher submits a processing run for execution. Which variant runs
// is a configuration decision made at startup, never probed at runtime.
type Dispatcher interface {
	Dispatch(ctx context.Context, desc Descriptor) error
}

// InlineDispatcher executes the run synchronously; the caller blocks
// until the run reaches a terminal state.
type InlineDispatcher struct {
	Pipeline *Pipeline
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, desc Descriptor) error {
	_, err := d.Pipeline.Run(ctx, desc)
	return err
}

// Publisher is the queue capability the dispatcher needs; kafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key []byte, value []byte, headers map[string]string) error
}

// QueuedDispatcher hands the run descriptor to a background task runner.
// If enqueueing fails for any reason it falls back to running the
// identical logic inline before returning.
type QueuedDispatcher struct {
	Producer Publisher
	Pipeline *Pipeline
	Logger   *zap.Logger
}

func (d *QueuedDispatcher) Dispatch(ctx context.Context, desc Descriptor) error {
	payload, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("marshal run descriptor: %w", err)
	}

	headers := map[string]string{
		"asset_id":   desc.AssetID,
		"event_type": "processing.requested",
	}
	if err := d.Producer.Publish(ctx, []byte(desc.AssetID), payload, headers); err != nil {
		d.Logger.Warn("enqueue failed, running inline", zap.String("asset_id", desc.AssetID), zap.Error(err))
		_, runErr := d.Pipeline.Run(ctx, desc)
		return runErr
	}
	return nil
}
