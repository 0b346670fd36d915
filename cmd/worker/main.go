package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/vodforge/internal/media"
	"github.com/your-org/vodforge/internal/pipeline"
	"github.com/your-org/vodforge/pkg/config"
	"github.com/your-org/vodforge/pkg/kafka"
	"github.com/your-org/vodforge/pkg/logger"
	"github.com/your-org/vodforge/pkg/storage"
	"github.com/your-org/vodforge/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRatio:    cfg.Tracing.SampleRatio,
		ResourceAttr:   cfg.Tracing.ResourceAttr,
		ServiceName:    cfg.App.Name + "-worker",
		ServiceVersion: cfg.App.Version,
	})
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

	store, err := storage.New(storage.Config{
		Provider:  cfg.Storage.Provider,
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		Bucket:    cfg.Storage.Bucket,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		LocalRoot: cfg.Storage.LocalRoot,
	})
	if err != nil {
		logr.Fatal("init storage backend", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	ladder, err := media.ParseLadder(cfg.Pipeline.Ladder)
	if err != nil {
		logr.Fatal("parse quality ladder", zap.Error(err))
	}

	records := pipeline.NewStorageRecords(store)
	runner := media.ExecRunner{Timeout: cfg.Pipeline.ToolTimeout}
	prober := media.NewProber(runner, cfg.Pipeline.FFprobePath)

	pipe := pipeline.New(pipeline.Params{
		Store:      store,
		Records:    records,
		Prober:     prober,
		Preview:    media.NewPreviewExtractor(runner, cfg.Pipeline.FFmpegPath),
		Transcoder: media.NewTranscoder(runner, cfg.Pipeline.FFmpegPath, prober),
		Logger:     logr,
		Options: pipeline.Options{
			Ladder:           ladder,
			SegmentDuration:  cfg.Pipeline.SegmentDuration,
			PreviewAt:        cfg.Pipeline.PreviewAtSeconds,
			HLSSubdir:        cfg.Pipeline.HLSSubdir,
			ExtractMetadata:  cfg.Pipeline.ExtractMetadata,
			TranscodeEnabled: cfg.Pipeline.TranscodeEnabled,
		},
	})

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.ProcessingTopic,
		GroupID: cfg.Kafka.ConsumerGroup,
	})
	defer consumer.Close() //nolint:errcheck

	logr.Info("vodforge worker starting",
		zap.String("topic", cfg.Kafka.ProcessingTopic),
		zap.String("group", cfg.Kafka.ConsumerGroup))

	for {
		msg, err := consumer.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logr.Info("worker shutting down")
				return
			}
			logr.Error("fetch message failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var desc pipeline.Descriptor
		if err := json.Unmarshal(msg.Value, &desc); err != nil {
			logr.Error("discard malformed run descriptor", zap.Error(err))
			if err := consumer.Commit(ctx, msg); err != nil {
				logr.Error("commit failed", zap.Error(err))
			}
			continue
		}

		// A run is not interruptible mid-rung; it finishes even if
		// shutdown was requested, and the result is then discardable.
		res, err := pipe.Run(context.WithoutCancel(ctx), desc)
		if err != nil {
			logr.Error("processing run failed",
				zap.String("asset_id", desc.AssetID),
				zap.String("state", string(res.State)),
				zap.Error(err))
		}

		if err := consumer.Commit(ctx, msg); err != nil {
			logr.Error("commit failed", zap.Error(err))
		}
	}
}
