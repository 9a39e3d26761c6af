package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/epp/pkg/metrics"
)

// DefaultCapacity is the number of reports kept when no capacity is set.
const DefaultCapacity = 256

// MemoryStore is a bounded, in-memory Store. Reports are evicted in
// insertion order once the capacity is reached.
type MemoryStore struct {
	mu       sync.RWMutex
	reports  map[string]Report
	order    []string
	capacity int
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		reports:  make(map[string]Report),
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, r Report) (Report, error) {
	if r.Cohort == nil {
		metrics.RecordPipelineError("store", "invalid_report")
		return Report{}, fmt.Errorf("%w: missing cohort", ErrInvalidReport)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	s.mu.Lock()
	if _, ok := s.reports[r.ID]; !ok {
		s.order = append(s.order, r.ID)
	}
	s.reports[r.ID] = r
	for len(s.order) > s.capacity {
		delete(s.reports, s.order[0])
		s.order[0] = ""
		s.order = s.order[1:]
	}
	n := len(s.reports)
	s.mu.Unlock()

	metrics.UpdateReportsStored(n)
	return r, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Report, error) {
	s.mu.RLock()
	r, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordPipelineError("store", "not_found")
		return Report{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
