package auth

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/shazcloud/internal/shared"
)

// VerifierStore keeps PKCE verifiers between the redirect and the callback.
//
// Take must return each verifier at most once and never return an expired one.
type VerifierStore interface {
	Save(ctx context.Context, state, verifier string, expiresAt time.Time) error
	Take(ctx context.Context, state string) (string, error)
	Purge(ctx context.Context, now time.Time) (int, error)
}

type entry struct {
	verifier  string
	expiresAt time.Time
}

// MemoryStore is an in-process [VerifierStore].
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, state, verifier string, expiresAt time.Time) error {
	if state == "" || verifier == "" {
		return shared.ErrMissingArgument
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[state] = entry{verifier: verifier, expiresAt: expiresAt}
	return nil
}

// Take removes and returns the verifier for state, or [shared.ErrVerifierNotFound].
func (s *MemoryStore) Take(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[state]
	if !ok {
		return "", shared.ErrVerifierNotFound
	}
	delete(s.entries, state)

	if !s.now().Before(e.expiresAt) {
		return "", shared.ErrVerifierNotFound
	}
	return e.verifier, nil
}

// Purge drops entries expired at now and reports how many were removed.
func (s *MemoryStore) Purge(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for state, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, state)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored verifiers.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
