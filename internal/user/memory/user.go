// Package memory is an in-process user backend seeded with demo accounts.
package memory

import (
	"context"
	"sync"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password"

// SeedUsers returns a fresh copy of the demo accounts.
func SeedUsers() []*user.User {
	return []*user.User{
		{ID: "emp1", Name: "John Doe", Email: "john@example.com", Role: user.RoleEmployee, Department: "Engineering", Position: "Software Engineer"},
		{ID: "sup1", Name: "Sarah Manager", Email: "sarah@example.com", Role: user.RoleSupervisor, Department: "Engineering", Position: "Engineering Manager"},
	}
}

type account struct {
	user *user.User
	hash []byte
}

type mockTokens struct{}

func (mockTokens) IssueToken(_ *user.User) (string, error) {
	return "mock-token-" + uuid.NewString(), nil
}

// UserStore keeps accounts in memory with bcrypt-hashed passwords.
type UserStore struct {
	mu       sync.RWMutex
	accounts []*account
	tokens   user.TokenIssuer
	cost     int
}

// NewUserStore seeds the store; every seeded account gets password.
func NewUserStore(seed []*user.User, password string) (*UserStore, error) {
	s := &UserStore{tokens: mockTokens{}, cost: bcrypt.MinCost}
	for _, u := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return nil, err
		}
		s.accounts = append(s.accounts, &account{user: u.Clone(), hash: hash})
	}
	return s, nil
}

// NewSeededUserStore returns a store holding the demo accounts.
func NewSeededUserStore() (*UserStore, error) {
	return NewUserStore(SeedUsers(), DemoPassword)
}

// WithTokenIssuer replaces the mock token generator.
func (s *UserStore) WithTokenIssuer(tokens user.TokenIssuer) *UserStore {
	s.tokens = tokens
	return s
}

func (s *UserStore) List(_ context.Context) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*user.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.user.Clone())
	}
	return out, nil
}

func (s *UserStore) Register(_ context.Context, dto user.RegisterUserDTO) (*user.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.cost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byEmail(dto.Email) != nil {
		return nil, internal.ErrEmailAlreadyExists
	}
	u := dto.NewUser("user-" + uuid.NewString())
	s.accounts = append(s.accounts, &account{user: u, hash: hash})
	return u.Clone(), nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a.user.Clone(), nil
		}
	}
	return nil, internal.ErrUserNotFound
}

func (s *UserStore) Login(_ context.Context, dto user.LoginDTO) (*user.AuthResult, error) {
	s.mu.RLock()
	a := s.byEmail(dto.Email)
	s.mu.RUnlock()
	if a == nil {
		return nil, internal.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(a.user)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	return &user.AuthResult{User: a.user.Clone(), Token: token}, nil
}

func (s *UserStore) ChangePassword(_ context.Context, id string, dto user.ChangePasswordDTO) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.ID != id {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(a.hash, []byte(dto.CurrentPassword)); err != nil {
			return internal.ErrIncorrectPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.cost)
		if err != nil {
			return internal.NewInternalError("failed to hash password", err)
		}
		a.hash = hash
		return nil
	}
	return internal.ErrUserNotFound
}

// byEmail must be called with the lock held.
func (s *UserStore) byEmail(email string) *account {
	for _, a := range s.accounts {
		if a.user.Email == email {
			return a
		}
	}
	return nil
}
