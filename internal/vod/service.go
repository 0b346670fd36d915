package vod

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/your-org/vodforge/internal/pipeline"
	"github.com/your-org/vodforge/pkg/storage"
)

// Service wires storage, the record layer and run dispatch for the
// video upload flow.
type Service struct {
	store      storage.Backend
	records    pipeline.Records
	dispatcher pipeline.Dispatcher
	logger     *zap.Logger
}

type Params struct {
	Store      storage.Backend
	Records    pipeline.Records
	Dispatcher pipeline.Dispatcher
	Logger     *zap.Logger
}

// UploadOptions captures metadata about the upload.
type UploadOptions struct {
	Filename    string
	ContentType string
}

type UploadResult struct {
	AssetID    string
	SourceKey  string
	Checksum   string
	Size       int64
	UploadedAt time.Time
}

// NewService constructs a vod Service.
func NewService(p Params) *Service {
	return &Service{
		store:      p.Store,
		records:    p.Records,
		dispatcher: p.Dispatcher,
		logger:     p.Logger,
	}
}

// ProcessUpload streams the file to durable storage, creates the asset
// record and dispatches a processing run. The source object is never
// touched again after this write.
func (s *Service) ProcessUpload(ctx context.Context, reader io.Reader, size int64, opts UploadOptions) (*UploadResult, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid file size: %d", size)
	}

	hasher := sha256.New()
	tee := io.TeeReader(reader, hasher)
	buffered := bufio.NewReaderSize(tee, 64*1024)

	assetID := uuid.NewString()
	sourceKey := fmt.Sprintf("videos/%s/%s", time.Now().UTC().Format("2006/01/02"), assetID)
	if opts.Filename != "" {
		sourceKey = fmt.Sprintf("videos/%s/%s/%s", time.Now().UTC().Format("2006/01/02"), assetID, opts.Filename)
	}

	metadata := map[string]string{
		"original_filename": opts.Filename,
		"content_type":      opts.ContentType,
	}

	if err := s.store.Save(ctx, sourceKey, buffered, size, metadata); err != nil {
		return nil, fmt.Errorf("save source object: %w", err)
	}

	checksum := hex.EncodeToString(hasher.Sum(nil))
	rec := &pipeline.Record{
		ID:          assetID,
		SourceKey:   sourceKey,
		Filename:    opts.Filename,
		ContentType: opts.ContentType,
		SizeBytes:   size,
		Checksum:    checksum,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create asset record: %w", err)
	}

	if err := s.dispatcher.Dispatch(ctx, pipeline.Descriptor{AssetID: assetID}); err != nil {
		s.logger.Error("processing dispatch failed", zap.String("asset_id", assetID), zap.Error(err))
	}

	return &UploadResult{
		AssetID:    assetID,
		SourceKey:  sourceKey,
		Checksum:   checksum,
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Asset returns the record for one asset, derived fields included.
func (s *Service) Asset(ctx context.Context, id string) (*pipeline.Record, error) {
	return s.records.Get(ctx, id)
}

// Reprocess dispatches a new processing run for an existing asset.
// Derived artifact keys are deterministic, so the run overwrites the
// previous run's output in place.
func (s *Service) Reprocess(ctx context.Context, id string) error {
	if _, err := s.records.Get(ctx, id); err != nil {
		return err
	}
	return s.dispatcher.Dispatch(ctx, pipeline.Descriptor{AssetID: id})
}

// Close releases underlying resources.
func (s *Service) Close(ctx context.Context) error {
	return s.store.Close()
}
