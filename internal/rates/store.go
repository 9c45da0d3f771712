package rates

import (
	"sync"
	"time"

	"github.com/mtlprog/assettrack/internal/domain"
)

// Store holds the latest rate table. Readers always see a whole table:
// Set swaps the reference under the lock and never mutates a published table.
type Store struct {
	mu    sync.RWMutex
	table *domain.RateTable
	now   func() time.Time
}

// NewStore creates an empty store. A nil clock defaults to time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// Get returns the current table, or false when none has been set.
func (s *Store) Get() (domain.RateTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return domain.RateTable{}, false
	}
	return *s.table, true
}

// Set replaces the current table.
func (s *Store) Set(table domain.RateTable) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.table = &table
}

// IsStale reports whether the store is empty or its table is older than maxAge.
func (s *Store) IsStale(maxAge time.Duration) bool {
	t, ok := s.Get()
	if !ok {
		return true
	}
	return s.now().Sub(t.UpdatedAt()) > maxAge
}
