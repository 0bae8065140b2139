// Package memory implements the store.Store capability in-memory for
// development and tests, including store-side TTL expiry.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/foglio/clipper/internal/clip"
	"github.com/foglio/clipper/internal/store"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

type setEntry struct {
	members   map[string]struct{}
	expiresAt time.Time
}

// Store keeps values and sets in maps guarded by a mutex. Expiry is lazy:
// expired entries are dropped when touched.
type Store struct {
	mu    sync.Mutex
	data  map[string]entry
	sets  map[string]setEntry
	clock clip.Clock
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// New creates an empty Store on the system clock.
func New() *Store {
	return NewWithClock(systemClock{})
}

// NewWithClock creates an empty Store on the given clock, letting tests
// drive expiry deterministically.
func NewWithClock(clock clip.Clock) *Store {
	return &Store{
		data:  make(map[string]entry),
		sets:  make(map[string]setEntry),
		clock: clock,
	}
}

func (s *Store) expired(deadline time.Time) bool {
	return !deadline.IsZero() && !s.clock.Now().Before(deadline)
}

// Get returns the value for key, or store.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	if s.expired(e.expiresAt) {
		delete(s.data, key)
		return nil, store.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set writes value under key with the given ttl.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.clock.Now().Add(ttl)
	}
	s.data[key] = e
	return nil
}

// Delete removes key from both the value and set namespaces.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	delete(s.sets, key)
	return nil
}

// Exists reports whether key holds a live value or set.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.data[key]; ok {
		if !s.expired(e.expiresAt) {
			return true, nil
		}
		delete(s.data, key)
	}
	if se, ok := s.sets[key]; ok {
		if !s.expired(se.expiresAt) {
			return true, nil
		}
		delete(s.sets, key)
	}
	return false, nil
}

// SAdd adds member to the set at key.
func (s *Store) SAdd(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	se, ok := s.sets[key]
	if !ok || s.expired(se.expiresAt) {
		se = setEntry{members: make(map[string]struct{})}
	}
	se.members[member] = struct{}{}
	s.sets[key] = se
	return nil
}

// SRem removes member from the set at key.
func (s *Store) SRem(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	se, ok := s.sets[key]
	if !ok {
		return nil
	}
	if s.expired(se.expiresAt) {
		delete(s.sets, key)
		return nil
	}
	delete(se.members, member)
	return nil
}

// SMembers returns all members of the set at key.
func (s *Store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	se, ok := s.sets[key]
	if !ok {
		return nil, nil
	}
	if s.expired(se.expiresAt) {
		delete(s.sets, key)
		return nil, nil
	}
	members := make([]string, 0, len(se.members))
	for m := range se.members {
		members = append(members, m)
	}
	return members, nil
}

// Expire (re)arms the ttl on key.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deadline := time.Time{}
	if ttl > 0 {
		deadline = s.clock.Now().Add(ttl)
	}
	if e, ok := s.data[key]; ok {
		e.expiresAt = deadline
		s.data[key] = e
	}
	if se, ok := s.sets[key]; ok {
		se.expiresAt = deadline
		s.sets[key] = se
	}
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
