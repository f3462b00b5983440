// package auth implements the OAuth 2.0 Authorization Code flow with PKCE against SoundCloud.
//
// [Authenticator.Begin] produces the browser redirect and the verifier that must be kept
// in a [VerifierStore] until the callback; [Authenticator.Exchange] trades the returned
// code for a token pair exactly once.
package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/models"
	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL  = "https://secure.soundcloud.com/authorize"
	DefaultTokenURL = "https://secure.soundcloud.com/oauth/token"

	// MaxVerifierTTL caps how long a verifier stays redeemable.
	MaxVerifierTTL = time.Hour
)

// Options configures an [Authenticator].
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
	AuthURL      string
	TokenURL     string
	VerifierTTL  time.Duration
	HTTPClient   *http.Client
}

// Authorization is the output of [Authenticator.Begin].
type Authorization struct {
	URL       string
	State     string
	Verifier  string
	Challenge string
	ExpiresAt time.Time
}

// Authenticator drives PKCE authorizations for one registered client.
type Authenticator struct {
	conf   *oauth2.Config
	client *http.Client
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

// New creates an [Authenticator]. Empty endpoints default to SoundCloud's.
func New(opts Options, logger *log.Logger) *Authenticator {
	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if opts.VerifierTTL <= 0 || opts.VerifierTTL > MaxVerifierTTL {
		opts.VerifierTTL = MaxVerifierTTL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	conf := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   opts.AuthURL,
			TokenURL:  opts.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if scope := strings.TrimSpace(opts.Scope); scope != "" {
		conf.Scopes = strings.Fields(scope)
	}

	return &Authenticator{
		conf:   conf,
		client: opts.HTTPClient,
		ttl:    opts.VerifierTTL,
		logger: logger,
		now:    time.Now,
	}
}

// TTL returns how long the verifier from [Authenticator.Begin] must be retained.
func (a *Authenticator) TTL() time.Duration { return a.ttl }

// Begin generates a verifier, its challenge, and a state, and builds the authorization redirect.
func (a *Authenticator) Begin() (*Authorization, error) {
	verifier, err := NewVerifier(VerifierLength)
	if err != nil {
		return nil, err
	}
	state := NewState()

	return &Authorization{
		URL:       a.conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		State:     state,
		Verifier:  verifier,
		Challenge: Challenge(verifier),
		ExpiresAt: a.now().Add(a.ttl),
	}, nil
}

// Exchange performs the single token request for code. Failures are not retried.
func (a *Authenticator) Exchange(ctx context.Context, code, verifier string) (*models.AuthSession, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &AuthError{Kind: MissingCode}
	}
	if verifier == "" {
		return nil, &AuthError{Kind: MissingVerifier}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.client)
	tok, err := a.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		aerr := classifyExchangeError(err)
		a.logger.Error("token exchange failed", "kind", aerr.Kind, "status", aerr.StatusCode, "error", err)
		return nil, aerr
	}

	if tok.AccessToken == "" || tok.RefreshToken == "" {
		a.logger.Error("token response missing fields", "access", tok.AccessToken != "", "refresh", tok.RefreshToken != "")
		return nil, &AuthError{Kind: MissingTokens}
	}

	a.logger.Info("authorization complete", "expires", tok.Expiry)
	return &models.AuthSession{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// classifyExchangeError maps a token endpoint failure to an [AuthError]. A 2xx
// response that still fails to yield a token, such as an error body sent with
// 200, counts as missing tokens rather than a failed request. Errors that never
// reached the endpoint arrive as [*url.Error]; anything else came from a
// response that carried no usable token.
func classifyExchangeError(err error) *AuthError {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		status := rerr.Response.StatusCode
		if status >= 200 && status < 300 {
			return &AuthError{Kind: MissingTokens, StatusCode: status, Err: err}
		}
		return &AuthError{Kind: TokenRequestFailed, StatusCode: status, Err: err}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return &AuthError{Kind: TokenRequestFailed, Err: err}
	}
	return &AuthError{Kind: MissingTokens, Err: err}
}
