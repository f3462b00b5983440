package auth

import (
	"strings"
	"testing"
)

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier(VerifierLength)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}

	if len(v) != VerifierLength {
		t.Errorf("expected length %d, got %d", VerifierLength, len(v))
	}

	for _, c := range v {
		if !strings.ContainsRune(unreserved, c) {
			t.Errorf("verifier contains invalid character %q", c)
		}
	}

	other, _ := NewVerifier(VerifierLength)
	if v == other {
		t.Error("two verifiers should not be equal")
	}

	t.Run("length bounds", func(t *testing.T) {
		for _, n := range []int{0, 42, 129} {
			if _, err := NewVerifier(n); err == nil {
				t.Errorf("expected error for length %d", n)
			}
		}
	})
}

func TestChallenge(t *testing.T) {
	// RFC 7636 appendix B
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	want := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"

	if got := Challenge(verifier); got != want {
		t.Errorf("Challenge() = %s, want %s", got, want)
	}

	got := Challenge(strings.Repeat("a", 128))
	if strings.ContainsAny(got, "+/=") {
		t.Errorf("challenge must be base64url without padding, got %s", got)
	}
	if got != Challenge(strings.Repeat("a", 128)) {
		t.Error("challenge must be deterministic")
	}
}

func TestNewState(t *testing.T) {
	a, b := NewState(), NewState()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty states, got %q and %q", a, b)
	}
}
