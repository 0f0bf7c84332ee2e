// README: Account service handles registration, login and token verification.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"roadie/internal/types"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrDuplicate  = errors.New("user already exists")
	// ErrInvalidCredentials does not say which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	store      *Store
	bcryptCost int
}

func NewService(store *Store, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{store: store, bcryptCost: bcryptCost}
}

type RegisterCommand struct {
	Email    string
	Password string
	Role     Role
}

type LoginCommand struct {
	Email    string
	Password string
	Role     Role
}

func normalizeEmail(v string) types.ID {
	return types.ID(strings.ToLower(strings.TrimSpace(v)))
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) error {
	email := normalizeEmail(cmd.Email)
	if email == "" || cmd.Password == "" || !cmd.Role.Valid() {
		return ErrBadRequest
	}
	if _, exists := s.store.Get(ctx, email); exists {
		return ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.Insert(ctx, User{
		Email:        email,
		Role:         cmd.Role,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	})
}

func (s *Service) Login(ctx context.Context, cmd LoginCommand) (Session, error) {
	u, ok := s.store.Get(ctx, normalizeEmail(cmd.Email))
	if !ok {
		return Session{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(cmd.Password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	if u.Role != cmd.Role {
		return Session{}, ErrInvalidCredentials
	}
	sess := Session{
		Token:    types.NewToken(),
		UserID:   u.Email,
		Role:     u.Role,
		IssuedAt: time.Now(),
	}
	s.store.PutSession(ctx, sess)
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if !s.store.DeleteSession(ctx, token) {
		return ErrInvalidCredentials
	}
	return nil
}

// VerifyToken resolves a bearer token to the identity that logged in with it.
func (s *Service) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	sess, ok := s.store.GetSession(ctx, token)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return &Identity{UserID: sess.UserID, Role: sess.Role}, nil
}

func (s *Service) Get(ctx context.Context, email string) (User, bool) {
	return s.store.Get(ctx, normalizeEmail(email))
}
