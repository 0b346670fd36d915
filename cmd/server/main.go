package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/your-org/vodforge/internal/media"
	"github.com/your-org/vodforge/internal/pipeline"
	"github.com/your-org/vodforge/internal/vod"
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
		ServiceName:    cfg.App.Name,
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

	var dispatcher pipeline.Dispatcher
	switch cfg.Pipeline.DispatchMode {
	case "queued":
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.ProcessingTopic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Compression:  kafka.CompressionFromString(cfg.Kafka.CompressionCodec),
			RequiredAcks: kafkago.RequireAll,
			MaxAttempts:  cfg.Kafka.Retries,
		})
		defer producer.Close(context.Background()) //nolint:errcheck
		dispatcher = &pipeline.QueuedDispatcher{Producer: producer, Pipeline: pipe, Logger: logr}
	default:
		dispatcher = &pipeline.InlineDispatcher{Pipeline: pipe}
	}

	service := vod.NewService(vod.Params{
		Store:      store,
		Records:    records,
		Dispatcher: dispatcher,
		Logger:     logr,
	})

	handler := vod.NewHTTPHandler(service, logr, cfg.Upload.MaxSizeBytes, cfg.Upload.MultipartMemBytes)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("http server shutdown failed", zap.Error(err))
		}
		if err := service.Close(shutdownCtx); err != nil {
			logr.Error("service shutdown failed", zap.Error(err))
		}
	}()

	logr.Info("vodforge server starting",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("dispatch_mode", cfg.Pipeline.DispatchMode))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Fatal("http server failed", zap.Error(err))
	}
}
