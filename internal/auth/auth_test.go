package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/shazcloud/internal/shared"
)

func newTestAuthenticator(tokenURL string) *Authenticator {
	return New(Options{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:3000/auth/callback",
		AuthURL:      "https://example.com/authorize",
		TokenURL:     tokenURL,
	}, nil)
}

func TestBegin(t *testing.T) {
	a := newTestAuthenticator("https://example.com/token")
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	authz, err := a.Begin()
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	u, err := url.Parse(authz.URL)
	if err != nil {
		t.Fatalf("invalid redirect url: %v", err)
	}
	if u.Host != "example.com" || u.Path != "/authorize" {
		t.Errorf("unexpected endpoint %s", u)
	}

	q := u.Query()
	want := map[string]string{
		"client_id":             "client-id",
		"redirect_uri":          "http://localhost:3000/auth/callback",
		"response_type":         "code",
		"code_challenge":        Challenge(authz.Verifier),
		"code_challenge_method": "S256",
		"state":                 authz.State,
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("query %s = %q, want %q", k, got, v)
		}
	}
	if q.Has("scope") {
		t.Error("scope should be omitted when not configured")
	}

	if len(authz.Verifier) != VerifierLength {
		t.Errorf("expected %d char verifier, got %d", VerifierLength, len(authz.Verifier))
	}
	if !authz.ExpiresAt.Equal(fixed.Add(time.Hour)) {
		t.Errorf("expected expiry %s, got %s", fixed.Add(time.Hour), authz.ExpiresAt)
	}

	t.Run("scope and ttl cap", func(t *testing.T) {
		a := New(Options{ClientID: "c", Scope: "non-expiring", VerifierTTL: 3 * time.Hour}, nil)
		authz, _ := a.Begin()
		u, _ := url.Parse(authz.URL)
		if u.Query().Get("scope") != "non-expiring" {
			t.Errorf("expected scope, got %q", u.Query().Get("scope"))
		}
		if a.TTL() != MaxVerifierTTL {
			t.Errorf("ttl should be capped at %s, got %s", MaxVerifierTTL, a.TTL())
		}
	})
}

func TestExchange(t *testing.T) {
	t.Run("success posts form once", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("unexpected content type %s", ct)
			}
			r.ParseForm()
			want := map[string]string{
				"grant_type":    "authorization_code",
				"code":          "the-code",
				"code_verifier": "the-verifier",
				"redirect_uri":  "http://localhost:3000/auth/callback",
				"client_id":     "client-id",
				"client_secret": "client-secret",
			}
			for k, v := range want {
				if got := r.PostForm.Get(k); got != v {
					t.Errorf("form %s = %q, want %q", k, got, v)
				}
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "access",
				"refresh_token": "refresh",
				"token_type":    "bearer",
				"expires_in":    3600,
			})
		}))
		defer srv.Close()

		session, err := newTestAuthenticator(srv.URL).Exchange(context.Background(), "the-code", "the-verifier")
		if err != nil {
			t.Fatalf("Exchange() error = %v", err)
		}
		if session.AccessToken != "access" || session.RefreshToken != "refresh" {
			t.Errorf("unexpected session %+v", session)
		}
		if !session.IsAuthenticated() {
			t.Error("session should be authenticated")
		}
		if calls.Load() != 1 {
			t.Errorf("expected exactly one token request, got %d", calls.Load())
		}
	})

	tc := []struct {
		name       string
		code       string
		verifier   string
		status     int
		body       map[string]any
		wantKind   ErrorKind
		wantStatus int
		wantCalls  int32
	}{
		{name: "missing code", code: "", verifier: "v", wantKind: MissingCode, wantCalls: 0},
		{name: "missing verifier", code: "c", verifier: "", wantKind: MissingVerifier, wantCalls: 0},
		{name: "non 2xx", code: "c", verifier: "v", status: http.StatusUnauthorized, body: map[string]any{"error": "invalid_grant"}, wantKind: TokenRequestFailed, wantStatus: http.StatusUnauthorized, wantCalls: 1},
		{name: "server error", code: "c", verifier: "v", status: http.StatusBadGateway, body: map[string]any{}, wantKind: TokenRequestFailed, wantStatus: http.StatusBadGateway, wantCalls: 1},
		{name: "missing refresh token", code: "c", verifier: "v", status: http.StatusOK, body: map[string]any{"access_token": "a", "token_type": "bearer"}, wantKind: MissingTokens, wantCalls: 1},
		{name: "missing access token", code: "c", verifier: "v", status: http.StatusOK, body: map[string]any{"refresh_token": "r"}, wantKind: MissingTokens, wantCalls: 1},
		{name: "error body with 200", code: "c", verifier: "v", status: http.StatusOK, body: map[string]any{"error": "invalid_grant"}, wantKind: MissingTokens, wantStatus: http.StatusOK, wantCalls: 1},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			_, err := newTestAuthenticator(srv.URL).Exchange(context.Background(), tt.code, tt.verifier)

			var aerr *AuthError
			if !errors.As(err, &aerr) {
				t.Fatalf("expected *AuthError, got %v", err)
			}
			if aerr.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", aerr.Kind, tt.wantKind)
			}
			if aerr.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", aerr.StatusCode, tt.wantStatus)
			}
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Error("AuthError should match ErrAuthFailed")
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("token requests = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}

	t.Run("transport failure", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := newTestAuthenticator(srv.URL).Exchange(context.Background(), "c", "v")
		var aerr *AuthError
		if !errors.As(err, &aerr) || aerr.Kind != TokenRequestFailed || aerr.StatusCode != 0 {
			t.Errorf("expected TokenRequestFailed without status, got %v", err)
		}
	})
}
