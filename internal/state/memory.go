package state

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// MemoryStore is an in-process core.StateStore with the same observable
// semantics as the Redis one, including TTL-on-first-increment. Used in
// tests and by the demo CLI so neither needs a live Redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

var _ core.StateStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(entry.data))
	copy(out, entry.data)
	return out, true, nil
}

func (s *MemoryStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := make([]byte, len(value))
	copy(data, value)
	s.entries[key] = memoryEntry{data: data, expiresAt: deadline(ttl)}
	return nil
}

func (s *MemoryStore) IncrWithTTL(ctx context.Context, key string, ttlIfNew time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok {
		s.entries[key] = memoryEntry{data: []byte("1"), expiresAt: deadline(ttlIfNew)}
		return 1, nil
	}

	count, err := strconv.ParseInt(string(entry.data), 10, 64)
	if err != nil {
		return 0, err
	}
	count++
	// Expiry is attached on the 0 -> 1 transition only; increments keep it.
	entry.data = []byte(strconv.FormatInt(count, 10))
	s.entries[key] = entry
	return count, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// liveEntry returns the entry at key, lazily evicting it when expired.
// Callers must hold the mutex.
func (s *MemoryStore) liveEntry(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
