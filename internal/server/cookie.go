package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/shazcloud/internal/auth"
	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// VerifierCookie names the cookie that binds a browser to its pending authorization.
const VerifierCookie = "shazcloud_pkce"

// CookieClaims carries the authorization state. The verifier itself stays in the store.
type CookieClaims struct {
	State string `json:"state"`
	jwt.RegisteredClaims
}

// CookieSigner issues and checks HS256 tokens for [VerifierCookie].
type CookieSigner struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewCookieSigner creates a signer. ttl is capped at [auth.MaxVerifierTTL].
func NewCookieSigner(secret string, ttl time.Duration, secure bool) (*CookieSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: cookie secret", shared.ErrMissingConfig)
	}
	if ttl <= 0 || ttl > auth.MaxVerifierTTL {
		ttl = auth.MaxVerifierTTL
	}
	return &CookieSigner{secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}, nil
}

// Sign returns a token for state and its expiry.
func (c *CookieSigner) Sign(state string) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)

	claims := &CookieClaims{
		State: state,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign cookie: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token and returns the state it carries.
func (c *CookieSigner) Verify(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty cookie", shared.ErrVerifierNotFound)
	}

	claims := &CookieClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("%w: cookie expired", shared.ErrVerifierNotFound)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", fmt.Errorf("%w: invalid cookie signature", shared.ErrVerifierNotFound)
		default:
			return "", fmt.Errorf("%w: %v", shared.ErrVerifierNotFound, err)
		}
	}
	if !parsed.Valid || claims.State == "" {
		return "", fmt.Errorf("%w: invalid cookie", shared.ErrVerifierNotFound)
	}
	return claims.State, nil
}

// Cookie builds the Set-Cookie value for state.
func (c *CookieSigner) Cookie(state string) (*http.Cookie, error) {
	value, expiresAt, err := c.Sign(state)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     VerifierCookie,
		Value:    value,
		Path:     "/auth",
		Expires:  expiresAt,
		MaxAge:   int(c.ttl / time.Second),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear returns a cookie that deletes [VerifierCookie].
func (c *CookieSigner) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     VerifierCookie,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
