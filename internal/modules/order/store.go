// README: In-memory package store with optimistic status versioning.
package order

import (
	"context"
	"sync"
	"time"

	"roadie/internal/types"
)

type Store struct {
	mu     sync.RWMutex
	byID   map[types.ID]*Package
	order  []types.ID
	events []Event
}

func NewStore() *Store {
	return &Store{byID: make(map[types.ID]*Package)}
}

func (s *Store) Create(ctx context.Context, p *Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; ok {
		return ErrConflict
	}
	cp := *p
	s.byID[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePackage(p), nil
}

// UpdateStatus applies the transition only if the row is still at (from, version).
// It reports false when another writer got there first.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	if p.Status != from || p.StatusVersion != version {
		return false, nil
	}
	p.Status = to
	p.StatusVersion++
	if driverID != nil && p.DriverID == nil {
		d := *driverID
		p.DriverID = &d
	}
	if to == StatusAccepted {
		now := time.Now()
		p.AcceptedAt = &now
	}
	return true, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = int64(len(s.events) + 1)
	s.events = append(s.events, *e)
	return nil
}

func (s *Store) Events(ctx context.Context, id types.ID) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.PackageID == id {
			out = append(out, e)
		}
	}
	return out
}

// List returns packages matching keep, in creation order.
func (s *Store) List(ctx context.Context, keep func(*Package) bool) []Package {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Package, 0)
	for _, id := range s.order {
		p := s.byID[id]
		if keep(p) {
			out = append(out, *clonePackage(p))
		}
	}
	return out
}

func clonePackage(p *Package) *Package {
	cp := *p
	if p.DriverID != nil {
		d := *p.DriverID
		cp.DriverID = &d
	}
	if p.AcceptedAt != nil {
		t := *p.AcceptedAt
		cp.AcceptedAt = &t
	}
	return &cp
}
