// README: Rate table held in memory, seeded from configuration.
package pricing

import (
	"context"
	"sync"
)

type Store struct {
	mu    sync.RWMutex
	rates map[string]Rate
}

func NewStore(rates ...Rate) *Store {
	s := &Store{rates: make(map[string]Rate, len(rates))}
	for _, r := range rates {
		s.rates[r.Kind] = r
	}
	return s
}

func (s *Store) GetRate(ctx context.Context, kind string) (Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[kind]
	if !ok {
		return Rate{}, ErrUnknownRate
	}
	return r, nil
}

func (s *Store) PutRate(ctx context.Context, r Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[r.Kind] = r
}
