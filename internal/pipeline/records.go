package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/your-org/vodforge/pkg/storage"
)

// Record is one asset's entry in the external record layer. The pipeline
// never mutates SourceKey; derived values land in Fields under the names
// the processing descriptor maps them to.
type Record struct {
	ID          string         `json:"id"`
	SourceKey   string         `json:"source_key"`
	Filename    string         `json:"filename,omitempty"`
	ContentType string         `json:"content_type,omitempty"`
	SizeBytes   int64          `json:"size_bytes,omitempty"`
	Checksum    string         `json:"checksum,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Records is the record-layer collaborator contract. SetFields stages
// values; Persist makes them durable. The split mirrors set-then-save
// record semantics so a run can be re-entered from another process.
type Records interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	SetFields(ctx context.Context, id string, fields map[string]any) error
	Persist(ctx context.Context, id string) error
}

// StorageRecords keeps records as JSON documents in durable storage, so
// the API server and queue workers share state without a database.
type StorageRecords struct {
	store storage.Backend

	mu      sync.Mutex
	pending map[string]map[string]any
}

func NewStorageRecords(store storage.Backend) *StorageRecords {
	return &StorageRecords{store: store, pending: map[string]map[string]any{}}
}

func recordKey(id string) string {
	return "records/" + id + ".json"
}

func (s *StorageRecords) save(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, recordKey(rec.ID), bytes.NewReader(data), int64(len(data)), nil)
}

func (s *StorageRecords) Create(ctx context.Context, rec *Record) error {
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return s.save(ctx, rec)
}

func (s *StorageRecords) Get(ctx context.Context, id string) (*Record, error) {
	r, err := s.store.Open(ctx, recordKey(id))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", id, err)
	}
	defer r.Close() //nolint:errcheck
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	return rec, nil
}

func (s *StorageRecords) SetFields(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged, ok := s.pending[id]
	if !ok {
		staged = map[string]any{}
		s.pending[id] = staged
	}
	for k, v := range fields {
		staged[k] = v
	}
	return nil
}

func (s *StorageRecords) Persist(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	staged := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()

	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	for k, v := range staged {
		rec.Fields[k] = v
	}
	rec.UpdatedAt = time.Now().UTC()
	return s.save(ctx, rec)
}

// MemoryRecords is an in-process record layer for tests.
type MemoryRecords struct {
	mu      sync.Mutex
	records map[string]*Record
	pending map[string]map[string]any

	// FailPersist makes Persist fail; used to exercise RecordWriteError.
	FailPersist bool
}

func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{
		records: map[string]*Record{},
		pending: map[string]map[string]any{},
	}
}

func (m *MemoryRecords) Create(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	m.records[rec.ID] = rec
	return nil
}

func (m *MemoryRecords) Get(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("record %s: not found", id)
	}
	cp := *rec
	cp.Fields = map[string]any{}
	for k, v := range rec.Fields {
		cp.Fields[k] = v
	}
	return &cp, nil
}

func (m *MemoryRecords) SetFields(_ context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged, ok := m.pending[id]
	if !ok {
		staged = map[string]any{}
		m.pending[id] = staged
	}
	for k, v := range fields {
		staged[k] = v
	}
	return nil
}

func (m *MemoryRecords) Persist(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPersist {
		return fmt.Errorf("persist %s: unavailable", id)
	}
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("record %s: not found", id)
	}
	for k, v := range m.pending[id] {
		rec.Fields[k] = v
	}
	delete(m.pending, id)
	rec.UpdatedAt = time.Now().UTC()
	return nil
}
