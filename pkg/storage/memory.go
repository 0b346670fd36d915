package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Memory is an in-process backend used in tests and local development.
// It never exposes filesystem paths, which makes it a faithful stand-in
// for object storage in fetch/publish code paths.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailSaves, when set, makes Save fail for keys containing the value.
	FailSaves string
}

// NewMemory constructs an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{objects: map[string][]byte{}}
}

func (m *Memory) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("memory storage: key not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Save(_ context.Context, key string, reader io.Reader, _ int64, _ map[string]string) error {
	if m.FailSaves != "" && bytes.Contains([]byte(key), []byte(m.FailSaves)) {
		return fmt.Errorf("memory storage: save rejected: %s", key)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *Memory) Path(string) (string, error) {
	return "", ErrNoLocalPath
}

func (m *Memory) Close() error {
	return nil
}

// Keys returns all stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the stored bytes for key, or false if absent.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
