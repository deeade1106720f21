package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/splitscan/splitscan/internal/batch"
)

// Memory is an in-process BatchStore used by tests and by deployments
// that do not need batches to survive a restart.
type Memory struct {
	mu      sync.Mutex
	batches map[string]*batch.Batch
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{batches: make(map[string]*batch.Batch)}
}

func (m *Memory) Create(ctx context.Context, b *batch.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.batches[b.ID]; exists {
		return fmt.Errorf("batch %s already exists", b.ID)
	}
	m.batches[b.ID] = b.Clone()
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*batch.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.batches[id]
	if !ok {
		return nil, batch.ErrNotFound
	}
	return b.Clone(), nil
}

func (m *Memory) List(ctx context.Context) ([]*batch.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*batch.Batch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(*batch.Batch) error) (*batch.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.batches[id]
	if !ok {
		return nil, batch.ErrNotFound
	}

	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	m.batches[id] = updated
	return updated.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.batches[id]; !ok {
		return batch.ErrNotFound
	}
	delete(m.batches, id)
	return nil
}

func (m *Memory) Close() error { return nil }
