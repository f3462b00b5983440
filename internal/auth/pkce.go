package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

const (
	// VerifierLength is the PKCE code verifier length. RFC 7636 allows 43-128.
	VerifierLength = 128

	// unreserved is the RFC 3986 unreserved character set verifiers are drawn from.
	unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"
)

// NewVerifier returns n characters drawn uniformly from [A-Za-z0-9-._~] using crypto/rand.
func NewVerifier(n int) (string, error) {
	if n < 43 || n > 128 {
		return "", fmt.Errorf("verifier length %d outside 43-128", n)
	}

	// Bytes at or above the largest multiple of len(unreserved) are rejected so every character is equally likely.
	limit := byte(256 - 256%len(unreserved))
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, unreserved[int(b)%len(unreserved)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// Challenge computes the S256 code challenge: base64url(sha256(verifier)) without padding.
func Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// NewState returns an opaque value binding a callback to the authorization that started it.
func NewState() string {
	return uuid.NewString()
}
