package auth

import (
	"fmt"

	"github.com/desertthunder/shazcloud/internal/shared"
)

// ErrorKind identifies an authorization failure.
type ErrorKind int

const (
	MissingCode ErrorKind = iota
	MissingVerifier
	TokenRequestFailed
	MissingTokens
)

func (k ErrorKind) String() string {
	switch k {
	case MissingCode:
		return "missing code"
	case MissingVerifier:
		return "missing verifier"
	case TokenRequestFailed:
		return "token request failed"
	case MissingTokens:
		return "missing tokens"
	default:
		return "unknown"
	}
}

// AuthError is returned by [Authenticator.Exchange]. Every AuthError is terminal for its authorization attempt.
type AuthError struct {
	Kind ErrorKind
	// StatusCode is the token endpoint's HTTP status for TokenRequestFailed, or zero when no response was received.
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case MissingCode:
		return "missing authorization code"
	case MissingVerifier:
		return "missing code verifier"
	case TokenRequestFailed:
		if e.StatusCode == 0 {
			return fmt.Sprintf("failed to obtain access token: %v", e.Err)
		}
		return fmt.Sprintf("failed to obtain access token: status %d", e.StatusCode)
	case MissingTokens:
		return "missing access token or refresh token"
	default:
		return "authorization failed"
	}
}

// Unwrap returns the underlying cause, or [shared.ErrAuthFailed].
func (e *AuthError) Unwrap() []error {
	if e.Err != nil {
		return []error{shared.ErrAuthFailed, e.Err}
	}
	return []error{shared.ErrAuthFailed}
}
