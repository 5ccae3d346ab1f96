package state

import (
	"fmt"
	"slices"
	"sync"

	"github.com/crowdfund-org/crowdfund-go-base/types"
)

var _ Store = (*MemStore)(nil)

// MemStore is in-memory Store, safe for concurrent use.
type MemStore struct {
	mu      sync.RWMutex
	records map[types.Address]*types.Record
	events  []*types.Event
	closed  bool
}

func NewMemStore() *MemStore {
	return &MemStore{records: make(map[types.Address]*types.Record)}
}

func (s *MemStore) Get(key types.Address) (*types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	r, ok := s.records[key]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return r.Copy(), nil
}

func (s *MemStore) Records() ([]*types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	res := make([]*types.Record, 0, len(s.records))
	for _, r := range s.records {
		res = append(res, r.Copy())
	}
	slices.SortFunc(res, func(a, b *types.Record) int { return a.Address.Compare(b.Address) })
	return res, nil
}

func (s *MemStore) Commit(records []*types.Record, events []*types.Event) error {
	if err := validateCommit(records, events); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}
	sealed := make([]*types.Event, len(events))
	for i, ev := range events {
		var err error
		if sealed[i], err = ev.Seal(uint64(len(s.events) + i + 1)); err != nil {
			return fmt.Errorf("state: sealing event %d: %w", i, err)
		}
	}
	for _, r := range records {
		if r.IsEmpty() {
			delete(s.records, r.Address)
			continue
		}
		s.records[r.Address] = r.Copy()
	}
	s.events = append(s.events, sealed...)
	publishSealed(events, sealed)
	return nil
}

func (s *MemStore) Events() ([]*types.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	res := make([]*types.Event, len(s.events))
	for i, ev := range s.events {
		cpy := *ev
		res[i] = &cpy
	}
	return res, nil
}

func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
