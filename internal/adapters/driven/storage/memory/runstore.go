// Package memory provides an in-memory run store. It backs tests and
// keeps the runner usable before persistent storage is configured;
// history is lost on exit.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-cli/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is a mutex-guarded in-memory run store.
type RunStore struct {
	mu      sync.Mutex
	reports []domain.RunReport

	lockHolder string
	lockExpiry time.Time
}

// NewRunStore creates an empty in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// AcquireLock implements driven.RunStore.
func (s *RunStore) AcquireLock(_ context.Context, holder string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.lockHolder != "" && now.Before(s.lockExpiry) {
		return domain.ErrRunInProgress
	}
	s.lockHolder = holder
	s.lockExpiry = now.Add(ttl)
	return nil
}

// ReleaseLock implements driven.RunStore.
func (s *RunStore) ReleaseLock(_ context.Context, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lockHolder == holder {
		s.lockHolder = ""
		s.lockExpiry = time.Time{}
	}
	return nil
}

// SaveReport implements driven.RunStore. Newest reports are kept first.
func (s *RunStore) SaveReport(_ context.Context, report *domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append([]domain.RunReport{*report}, s.reports...)
	return nil
}

// ListReports implements driven.RunStore.
func (s *RunStore) ListReports(_ context.Context, limit int) ([]domain.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.reports) {
		limit = len(s.reports)
	}
	out := make([]domain.RunReport, limit)
	copy(out, s.reports[:limit])
	return out, nil
}

// LatestReport implements driven.RunStore.
func (s *RunStore) LatestReport(_ context.Context) (*domain.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reports) == 0 {
		return nil, fmt.Errorf("%w: no runs recorded", domain.ErrNotFound)
	}
	report := s.reports[0]
	return &report, nil
}

// Close implements driven.RunStore.
func (s *RunStore) Close() error {
	return nil
}
