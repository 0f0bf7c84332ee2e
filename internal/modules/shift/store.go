// README: In-memory shift sessions keyed by driver.
package shift

import (
	"context"
	"sync"

	"roadie/internal/types"
)

type Store struct {
	mu       sync.Mutex
	sessions map[types.ID]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[types.ID]*Session)}
}

// Start installs sess in place of any existing session and returns the one
// it replaced, or nil.
func (s *Store) Start(ctx context.Context, sess *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.sessions[sess.DriverID]
	s.sessions[sess.DriverID] = cloneSession(sess)
	return prev
}

func (s *Store) Get(ctx context.Context, driverID types.ID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[driverID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(sess), nil
}

// Update runs fn on the stored session under the store lock, so each
// transition completes before the next one starts. When fn fails the
// session is left unchanged.
func (s *Store) Update(ctx context.Context, driverID types.ID, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[driverID]
	if !ok {
		return nil, ErrNotFound
	}
	work := cloneSession(sess)
	if err := fn(work); err != nil {
		return nil, err
	}
	s.sessions[driverID] = work
	return cloneSession(work), nil
}

// Route is never mutated after it is built, so it is shared between copies.
func cloneSession(sess *Session) *Session {
	cp := *sess
	if sess.Pending != nil {
		p := *sess.Pending
		cp.Pending = &p
	}
	if sess.LastCompleted != nil {
		l := *sess.LastCompleted
		cp.LastCompleted = &l
	}
	return &cp
}
