package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/vodforge/internal/media"
	"github.com/your-org/vodforge/pkg/storage"
)

// State is the lifecycle position of one processing run.
type State string

const (
	StatePending     State = "pending"
	StateFetching    State = "fetching"
	StateProbing     State = "probing"
	StatePreview     State = "preview"
	StateTranscoding State = "transcoding"
	StatePublishing  State = "publishing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Field mapping defaults: the descriptor may rename any of these to
// match the caller's record schema.
const (
	FieldDuration    = "duration_seconds"
	FieldWidth       = "width"
	FieldHeight      = "height"
	FieldPreview     = "preview_key"
	FieldPlaylist    = "hls_master_key"
	FieldProcessedAt = "processed_at"
)

// Descriptor identifies a processing run. It deliberately carries no
// live object references so it can be serialized onto a queue and
// re-entered from a different process.
type Descriptor struct {
	AssetID string `json:"asset_id"`
	// Fields optionally remaps logical field names (the Field*
	// constants) to record field names.
	Fields map[string]string `json:"fields,omitempty"`
}

func (d Descriptor) fieldName(logical string) string {
	if name, ok := d.Fields[logical]; ok {
		return name
	}
	return logical
}

// Result is the outcome of one run. Fields holds the derived values that
// were handed to the record layer, keyed by mapped field name.
type Result struct {
	RunID         string
	AssetID       string
	State         State
	Fields        map[string]any
	PublishedKeys []string
}

// Options are the pipeline's processing knobs, bound once at startup.
type Options struct {
	Ladder           media.Ladder
	SegmentDuration  int
	PreviewAt        float64
	HLSSubdir        string
	ExtractMetadata  bool
	TranscodeEnabled bool
}

// Pipeline orchestrates probe, preview, transcode and publish for one
// asset at a time. Runs are independent; each owns an exclusive scratch
// workspace that is removed on every exit path.
type Pipeline struct {
	store      storage.Backend
	records    Records
	mat        *Materializer
	prober     *media.Prober
	preview    *media.PreviewExtractor
	transcoder *media.Transcoder
	logger     *zap.Logger
	tracer     trace.Tracer
	opts       Options
}

type Params struct {
	Store      storage.Backend
	Records    Records
	Prober     *media.Prober
	Preview    *media.PreviewExtractor
	Transcoder *media.Transcoder
	Logger     *zap.Logger
	Options    Options
}

func New(p Params) *Pipeline {
	return &Pipeline{
		store:      p.Store,
		records:    p.Records,
		mat:        NewMaterializer(p.Store),
		prober:     p.Prober,
		preview:    p.Preview,
		transcoder: p.Transcoder,
		logger:     p.Logger,
		tracer:     otel.Tracer("vodforge/pipeline"),
		opts:       p.Options,
	}
}

// Run executes the full processing pipeline for one asset. It is safe to
// invoke inline or from a queue worker; outcomes are identical. The
// returned Result is valid even when err is non-nil.
func (p *Pipeline) Run(ctx context.Context, desc Descriptor) (res *Result, err error) {
	res = &Result{
		RunID:   uuid.NewString(),
		AssetID: desc.AssetID,
		State:   StatePending,
		Fields:  map[string]any{},
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("asset.id", desc.AssetID)))
	defer span.End()

	logr := p.logger.With(zap.String("asset_id", desc.AssetID), zap.String("run_id", res.RunID))

	fail := func(e error) (*Result, error) {
		failedFrom := res.State
		res.State = StateFailed
		logr.Error("processing run failed", zap.String("failed_from", string(failedFrom)), zap.Error(e))
		return res, e
	}

	rec, err := p.records.Get(ctx, desc.AssetID)
	if err != nil {
		return fail(err)
	}

	scratch, err := os.MkdirTemp("", "vodforge_*")
	if err != nil {
		return fail(err)
	}
	defer os.RemoveAll(scratch) //nolint:errcheck

	res.State = StateFetching
	local, err := p.mat.Fetch(ctx, rec.SourceKey, scratch)
	if err != nil {
		return fail(&FetchError{Key: rec.SourceKey, Err: err})
	}

	// Probe failures are soft: metadata fields stay absent and the run
	// continues. A genuinely unreadable source still hard-fails below,
	// because the transcoder probes its input itself.
	if p.opts.ExtractMetadata {
		res.State = StateProbing
		info, err := p.prober.Probe(ctx, local)
		if err != nil {
			logr.Warn("probe failed, metadata omitted", zap.Error(err))
		} else {
			res.Fields[desc.fieldName(FieldDuration)] = info.DurationSeconds
			if info.Video != nil {
				res.Fields[desc.fieldName(FieldWidth)] = info.Video.Width
				res.Fields[desc.fieldName(FieldHeight)] = info.Video.Height
			}
		}
	}

	// Preview extraction is best-effort; it degrades the run but never
	// aborts it. The error branch is inspected and discarded on purpose.
	localPreview := ""
	if p.opts.ExtractMetadata && p.opts.PreviewAt >= 0 {
		res.State = StatePreview
		out := filepath.Join(scratch, "preview.jpg")
		if err := p.preview.Extract(ctx, local, out, p.opts.PreviewAt); err != nil {
			logr.Warn("preview extraction failed, preview omitted", zap.Error(err))
		} else {
			localPreview = out
		}
	}

	transcoded := false
	if p.opts.TranscodeEnabled && len(p.opts.Ladder) > 0 {
		res.State = StateTranscoding
		outDir := filepath.Join(scratch, "hls_out")
		if _, err := p.transcoder.Transcode(ctx, local, outDir, p.opts.Ladder, p.opts.SegmentDuration); err != nil {
			return fail(err)
		}
		transcoded = true
	}

	res.State = StatePublishing
	if transcoded {
		base := HLSBaseKey(rec.SourceKey, p.opts.HLSSubdir)
		keys, err := p.mat.Publish(ctx, filepath.Join(scratch, "hls_out"), base)
		res.PublishedKeys = append(res.PublishedKeys, keys...)
		if err != nil {
			return fail(&PublishError{Key: base, Err: err})
		}
		res.Fields[desc.fieldName(FieldPlaylist)] = base + media.MasterPlaylistName
	}
	if localPreview != "" {
		key := PreviewKey(rec.SourceKey)
		if err := p.publishFile(ctx, localPreview, key); err != nil {
			// Preview stays soft through publishing, as in extraction.
			logr.Warn("preview publish failed, preview omitted", zap.Error(err))
		} else {
			res.PublishedKeys = append(res.PublishedKeys, key)
			res.Fields[desc.fieldName(FieldPreview)] = key
		}
	}
	res.Fields[desc.fieldName(FieldProcessedAt)] = time.Now().UTC().Format(time.RFC3339)

	if err := p.records.SetFields(ctx, desc.AssetID, res.Fields); err != nil {
		return fail(&RecordWriteError{AssetID: desc.AssetID, Err: err})
	}
	if err := p.records.Persist(ctx, desc.AssetID); err != nil {
		return fail(&RecordWriteError{AssetID: desc.AssetID, Err: err})
	}

	res.State = StateDone
	logr.Info("processing run complete",
		zap.Int("published_keys", len(res.PublishedKeys)),
		zap.Bool("transcoded", transcoded))
	return res, nil
}

func (p *Pipeline) publishFile(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	info, err := f.Stat()
	if err != nil {
		return err
	}
	return p.store.Save(ctx, key, f, info.Size(), nil)
}
