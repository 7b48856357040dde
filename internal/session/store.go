package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("session: not found")

// Store persists sessions keyed by their opaque token, with expiry enforced
// by the backend. Expired or unknown tokens surface as ErrNotFound.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// MemoryStore is an in-process Store for tests and single-node development.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryStore) Save(ctx context.Context, s Session, ttl time.Duration) error {
	if s.Token == "" {
		return errors.New("session: token required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[s.Token] = memoryEntry{session: s, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, token string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, token)
		return Session{}, ErrNotFound
	}
	return e.session, nil
}

func (m *MemoryStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
	return nil
}
