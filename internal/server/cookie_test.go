package server

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/shazcloud/internal/shared"
)

func TestCookieSigner(t *testing.T) {
	t.Run("requires secret", func(t *testing.T) {
		if _, err := NewCookieSigner("", time.Hour, false); !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		s, _ := NewCookieSigner("secret", 10*time.Minute, false)
		token, exp, err := s.Sign("state-1")
		if err != nil {
			t.Fatalf("Sign() error = %v", err)
		}
		if time.Until(exp) > 10*time.Minute {
			t.Errorf("expiry too far out: %s", exp)
		}

		state, err := s.Verify(token)
		if err != nil || state != "state-1" {
			t.Errorf("Verify() = %q, %v", state, err)
		}
	})

	t.Run("rejects", func(t *testing.T) {
		s, _ := NewCookieSigner("secret", time.Hour, false)
		other, _ := NewCookieSigner("other", time.Hour, false)
		token, _, _ := other.Sign("state")

		expired, _ := NewCookieSigner("secret", time.Minute, false)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		stale, _, _ := expired.Sign("state")

		tests := []struct {
			name  string
			token string
		}{
			{"empty", ""},
			{"garbage", "not-a-jwt"},
			{"wrong secret", token},
			{"expired", stale},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := s.Verify(tt.token); !errors.Is(err, shared.ErrVerifierNotFound) {
					t.Errorf("expected ErrVerifierNotFound, got %v", err)
				}
			})
		}
	})

	t.Run("cookie attributes", func(t *testing.T) {
		s, _ := NewCookieSigner("secret", 5*time.Hour, true)
		c, err := s.Cookie("state")
		if err != nil {
			t.Fatalf("Cookie() error = %v", err)
		}
		if c.Name != VerifierCookie || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
			t.Errorf("unexpected cookie %+v", c)
		}
		if c.MaxAge != 3600 {
			t.Errorf("max age should be capped at one hour, got %d", c.MaxAge)
		}

		if clear := s.Clear(); clear.MaxAge >= 0 || clear.Value != "" {
			t.Errorf("clear cookie should expire immediately, got %+v", clear)
		}
	})
}
