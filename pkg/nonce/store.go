package nonce

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// TTL is how long an issued nonce stays consumable.
const TTL = 5 * time.Minute

// Store issues and consumes one-time login nonces. Consume is destructive:
// the token is removed whether or not it was still fresh.
type Store interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, token string) bool
}

// MemoryStore keeps nonces in a mutex-guarded map. It is safe for concurrent
// use within a single process; multi-process deployments should use the
// Redis-backed store instead.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory nonce store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Issue generates a random 16-byte hex token and records its creation time
func (s *MemoryStore) Issue(_ context.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)

	s.mu.Lock()
	s.entries[token] = s.now()
	s.mu.Unlock()
	return token, nil
}

// Consume removes the token and reports whether it was present and fresh.
// The check and delete happen in one critical section so the background sweep
// can never race a consumption.
func (s *MemoryStore) Consume(_ context.Context, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt, ok := s.entries[token]
	if !ok {
		return false
	}
	delete(s.entries, token)
	return s.now().Sub(createdAt) <= TTL
}

// Sweep purges entries older than the TTL and returns how many were removed.
// Sweep timing has no correctness impact; freshness is re-checked at consume.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, createdAt := range s.entries {
		if now.Sub(createdAt) > TTL {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
