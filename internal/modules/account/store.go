// README: In-memory user and session store; state is lost on restart.
package account

import (
	"context"
	"sync"

	"roadie/internal/types"
)

type Store struct {
	mu       sync.RWMutex
	users    map[types.ID]User
	sessions map[string]Session
}

func NewStore() *Store {
	return &Store{
		users:    make(map[types.ID]User),
		sessions: make(map[string]Session),
	}
}

// Insert adds u unless the email is taken; the check and write are atomic.
func (s *Store) Insert(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return ErrDuplicate
	}
	s.users[u.Email] = u
	return nil
}

func (s *Store) Get(ctx context.Context, email types.ID) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[email]
	return u, ok
}

func (s *Store) PutSession(ctx context.Context, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
}

func (s *Store) GetSession(ctx context.Context, token string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	return sess, ok
}

func (s *Store) DeleteSession(ctx context.Context, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	delete(s.sessions, token)
	return ok
}
