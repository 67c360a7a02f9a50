package store

import (
	"context"
	"sort"
	"sync"

	"salesledger/internal/domain"
)

// MemoryStore keeps ledgers in process memory. It backs tests and the
// import CLI's dry-run mode. MaxRows, when positive, caps the ledger size a
// put will accept, so the oversized-payload fallback path can be exercised
// without a real backend.
type MemoryStore struct {
	mu      sync.RWMutex
	ledgers map[string][]domain.SalesRow

	MaxRows int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledgers: make(map[string][]domain.SalesRow)}
}

func (s *MemoryStore) GetLedger(_ context.Context, vendor string) ([]domain.SalesRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := s.ledgers[vendor]
	out := make([]domain.SalesRow, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *MemoryStore) PutLedger(_ context.Context, vendor string, rows []domain.SalesRow) error {
	if s.MaxRows > 0 && len(rows) > s.MaxRows {
		return ErrTooLarge
	}
	stored := make([]domain.SalesRow, len(rows))
	copy(stored, rows)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers[vendor] = stored
	return nil
}

func (s *MemoryStore) DeleteLedger(_ context.Context, vendor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledgers, vendor)
	return nil
}

func (s *MemoryStore) ListVendors(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vendors := make([]string, 0, len(s.ledgers))
	for vendor := range s.ledgers {
		vendors = append(vendors, vendor)
	}
	sort.Strings(vendors)
	return vendors, nil
}
