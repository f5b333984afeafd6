package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/pkg/metrics"
)

// MemoryStore is an in-process Store. Records keep their first insertion
// position across overwrites.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.Score
	order   []string
	cfg     settings
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.Score),
		cfg:     newSettings(opts),
	}
}

// Find implements Store.
func (m *MemoryStore) Find(_ context.Context, name string) (model.Score, error) {
	defer observe("find", time.Now())
	n, err := checkName(name)
	if err != nil {
		return model.Score{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[n]
	if !ok {
		return model.Score{}, ErrNotFound
	}
	return copyScore(rec), nil
}

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, name string, stats []float64) error {
	defer observe("add", time.Now())
	n, err := checkName(name)
	if err != nil {
		return err
	}
	if err := checkStats(stats, m.cfg.axes); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[n]; !ok {
		m.order = append(m.order, n)
	}
	m.records[n] = &model.Score{Name: n, Stats: roundStats(stats)}
	metrics.UpdateStoreRecords(len(m.order))
	return nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context) ([]model.Score, error) {
	defer observe("list", time.Now())
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Score, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, copyScore(m.records[n]))
	}
	return out, nil
}

// EditFlags implements Store.
func (m *MemoryStore) EditFlags(_ context.Context, name string, flags int64) error {
	defer observe("edit_flags", time.Now())
	if err := checkFlags(flags); err != nil {
		return err
	}
	n, err := checkName(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[n]
	if !ok {
		return ErrNotFound
	}
	rec.Flags = int(flags)
	return nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func copyScore(s *model.Score) model.Score {
	return model.Score{Name: s.Name, Flags: s.Flags, Stats: append([]float64(nil), s.Stats...)}
}
