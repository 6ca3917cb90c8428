// Package session keeps the authenticated identity of the CLI between invocations.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Fixed storage keys for the bearer token and the serialized current user.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store is a string key/value persistence layer for session data.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(keys ...string) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// Manager reads and writes the session through a Store. It satisfies gateway.TokenSource.
type Manager struct {
	store  Store
	logger *slog.Logger
}

func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// Save persists the token and the user after a successful login.
func (m *Manager) Save(token string, user interface{}) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := m.store.Set(KeyToken, token); err != nil {
		return fmt.Errorf("session: store token: %w", err)
	}
	if err := m.store.Set(KeyUser, string(raw)); err != nil {
		return fmt.Errorf("session: store user: %w", err)
	}
	return nil
}

// Token returns the stored bearer token or "" when there is none.
func (m *Manager) Token() string {
	token, ok, err := m.store.Get(KeyToken)
	if err != nil {
		m.logger.Error("failed to read session token", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// LoadUser decodes the stored user into dst. It reports false when no user is stored.
func (m *Manager) LoadUser(dst interface{}) (bool, error) {
	raw, ok, err := m.store.Get(KeyUser)
	if err != nil {
		return false, fmt.Errorf("session: read user: %w", err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("session: decode user: %w", err)
	}
	return true, nil
}

func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

// Clear removes both the token and the user.
func (m *Manager) Clear() error {
	if err := m.store.Delete(KeyToken, KeyUser); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	m.logger.Debug("session cleared")
	return nil
}
