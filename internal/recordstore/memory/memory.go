// Package memory is an in-process record store for tests and one-shot runs.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/abhishektayde15/argo-chatbot-rag/internal/domain"
)

var _ domain.RecordStore = (*Store)(nil)

// Store keeps records in insertion order.
type Store struct {
	mu      sync.RWMutex
	records []domain.ObservationRecord
	closed  bool
}

func NewStore() *Store { return &Store{} }

func (s *Store) Append(ctx context.Context, records []domain.ObservationRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, domain.Wrap("append records", domain.ErrStorageUnavailable, errors.New("store is closed"))
	}
	s.records = append(s.records, records...)
	return len(records), nil
}

func (s *Store) CountAll(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, domain.Wrap("count records", domain.ErrStorageUnavailable, errors.New("store is closed"))
	}
	return len(s.records), nil
}

func (s *Store) Page(ctx context.Context, offset, limit int) ([]domain.ObservationRecord, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid page offset=%d limit=%d", offset, limit)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.Wrap("page records", domain.ErrStorageUnavailable, errors.New("store is closed"))
	}
	if offset >= len(s.records) {
		return nil, nil
	}
	end := min(offset+limit, len(s.records))
	out := make([]domain.ObservationRecord, end-offset)
	copy(out, s.records[offset:end])
	return out, nil
}

func (s *Store) Truncate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func (s *Store) Overview(ctx context.Context) (domain.StoreOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ov := domain.StoreOverview{Rows: len(s.records)}
	floats := map[string]struct{}{}
	profiles := map[string]struct{}{}
	for i, r := range s.records {
		floats[r.FloatID] = struct{}{}
		profiles[fmt.Sprintf("%s:%d", r.FloatID, r.ProfileNumber)] = struct{}{}
		if !r.Time.IsZero() {
			if ov.First.IsZero() || r.Time.Before(ov.First) {
				ov.First = r.Time
			}
			if r.Time.After(ov.Last) {
				ov.Last = r.Time
			}
		}
		if i == 0 || r.Depth < ov.MinDepth {
			ov.MinDepth = r.Depth
		}
		if i == 0 || r.Depth > ov.MaxDepth {
			ov.MaxDepth = r.Depth
		}
	}
	ov.Floats, ov.Profiles = len(floats), len(profiles)
	return ov, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
