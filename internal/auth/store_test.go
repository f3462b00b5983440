package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/shazcloud/internal/shared"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	newStore := func() *MemoryStore {
		s := NewMemoryStore()
		s.now = func() time.Time { return now }
		return s
	}

	t.Run("take is single use", func(t *testing.T) {
		s := newStore()
		if err := s.Save(ctx, "state", "verifier", now.Add(time.Hour)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := s.Take(ctx, "state")
		if err != nil || got != "verifier" {
			t.Fatalf("Take() = %q, %v", got, err)
		}

		if _, err := s.Take(ctx, "state"); !errors.Is(err, shared.ErrVerifierNotFound) {
			t.Errorf("second Take() should fail, got %v", err)
		}
	})

	t.Run("expired entries are not returned", func(t *testing.T) {
		s := newStore()
		s.Save(ctx, "state", "verifier", now)

		if _, err := s.Take(ctx, "state"); !errors.Is(err, shared.ErrVerifierNotFound) {
			t.Errorf("expected ErrVerifierNotFound, got %v", err)
		}
		if s.Len() != 0 {
			t.Error("expired entry should be removed on Take")
		}
	})

	t.Run("unknown state", func(t *testing.T) {
		if _, err := newStore().Take(ctx, "nope"); !errors.Is(err, shared.ErrVerifierNotFound) {
			t.Errorf("expected ErrVerifierNotFound, got %v", err)
		}
	})

	t.Run("purge", func(t *testing.T) {
		s := newStore()
		s.Save(ctx, "old", "v1", now.Add(-time.Minute))
		s.Save(ctx, "fresh", "v2", now.Add(time.Minute))

		n, err := s.Purge(ctx, now)
		if err != nil || n != 1 {
			t.Fatalf("Purge() = %d, %v", n, err)
		}
		if got, _ := s.Take(ctx, "fresh"); got != "v2" {
			t.Errorf("fresh entry should survive purge, got %q", got)
		}
	})

	t.Run("rejects empty values", func(t *testing.T) {
		if err := newStore().Save(ctx, "", "v", now); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
