package auth

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Used by tests and single-instance setups.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
}

func (s *MemoryStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return entry.value, true
}

// compareAndDelete removes key when it is live and holds value
func (s *MemoryStore) compareAndDelete(key, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok || entry.value != value || !s.now().Before(entry.expiresAt) {
		return false
	}
	delete(s.entries, key)
	return true
}

func (s *MemoryStore) PutOTAC(_ context.Context, user, hash string, ttl time.Duration) error {
	s.set(otacKey(user), hash, ttl)
	return nil
}

func (s *MemoryStore) GetOTAC(_ context.Context, user string) (string, error) {
	hash, ok := s.get(otacKey(user))
	if !ok {
		return "", ErrNotFound
	}
	return hash, nil
}

func (s *MemoryStore) ConsumeOTAC(_ context.Context, user, hash string) (bool, error) {
	return s.compareAndDelete(otacKey(user), hash), nil
}

func (s *MemoryStore) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.set(revokedKey(sessionID), "1", ttl)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	_, ok := s.get(revokedKey(sessionID))
	return ok, nil
}
