package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/desertthunder/shazcloud/internal/auth"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/server"
	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/urfave/cli/v3"
)

// authURLOutput is printed by 'auth url --json'.
type authURLOutput struct {
	URL       string    `json:"url"`
	State     string    `json:"state"`
	Challenge string    `json:"challenge"`
	Verifier  string    `json:"verifier"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// authenticator builds the PKCE client from the registered credentials.
func (r *Runner) authenticator() (*auth.Authenticator, error) {
	if err := r.config.RequireCredentials(); err != nil {
		return nil, err
	}

	creds := r.config.Credentials.SoundCloud
	return auth.New(auth.Options{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURI:  creds.RedirectURI,
		Scope:        creds.Scope,
		AuthURL:      r.config.SoundCloud.AuthURL,
		TokenURL:     r.config.SoundCloud.TokenURL,
		VerifierTTL:  r.config.Server.VerifierTTL(),
		HTTPClient:   r.httpClient,
	}, r.logger.WithPrefix("auth")), nil
}

// AuthLogin runs one authorization through a local callback server and prints the token pair.
//
// Tokens are printed once and never written to disk.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	a, err := r.authenticator()
	if err != nil {
		return err
	}

	authz, err := a.Begin()
	if err != nil {
		return fmt.Errorf("failed to start authorization: %w", err)
	}

	handler := server.NewCallbackHandler(a, authz)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger.WithPrefix("callback")), server.Recovery(r.logger))
	router.Handler(handler)

	addr := r.config.Server.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting callback server at %v", addr)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	if cmd.Bool("no-browser") {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authz.URL)
	} else {
		r.writePlain("→ Opening browser for SoundCloud authorization...\n")
		if err := shared.OpenBrowser(authz.URL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			r.writePlain("Please open this URL in your browser:\n%s\n\n", authz.URL)
		}
	}

	wait := cmd.Duration("timeout")
	if wait <= 0 {
		wait = 2 * time.Minute
	}
	r.writePlain("→ Waiting for authorization (%v timeout)...\n", wait)

	timeout := time.NewTimer(wait)
	defer timeout.Stop()

	var result server.CallbackResult
	select {
	case result = <-handler.Result():
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, wait)
	case <-ctx.Done():
		return ctx.Err()
	}

	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}
	if !result.Session.IsAuthenticated() {
		return fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return r.printSession(cmd, result.Session)
}

// AuthURL prints a fresh authorization URL. The verifier is included only in JSON output,
// for use with 'auth exchange'.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	a, err := r.authenticator()
	if err != nil {
		return err
	}

	authz, err := a.Begin()
	if err != nil {
		return fmt.Errorf("failed to start authorization: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(authURLOutput{
			URL:       authz.URL,
			State:     authz.State,
			Challenge: authz.Challenge,
			Verifier:  authz.Verifier,
			ExpiresAt: authz.ExpiresAt,
		}, true)
	}

	r.writePlain("%s\n", authz.URL)
	r.writePlainln("State:     %s", authz.State)
	r.writePlain("Challenge: %s\n", authz.Challenge)
	r.writePlain("Expires:   %s\n", authz.ExpiresAt.Format(time.RFC3339))
	return nil
}

// AuthExchange redeems a code obtained outside 'auth login'.
func (r *Runner) AuthExchange(ctx context.Context, cmd *cli.Command) error {
	a, err := r.authenticator()
	if err != nil {
		return err
	}

	session, err := a.Exchange(ctx, cmd.String("code"), cmd.String("verifier"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return r.printSession(cmd, session)
}

func (r *Runner) printSession(cmd *cli.Command, session *models.AuthSession) error {
	if cmd.Bool("json") {
		return r.writeJSON(session, true)
	}

	r.writePlain("✓ Authorization successful\n")
	r.writePlainln("Access token:  %s", session.AccessToken)
	r.writePlain("Refresh token: %s\n", session.RefreshToken)
	if !session.ExpiresAt.IsZero() {
		r.writePlain("Expires:       %s\n", session.ExpiresAt.Format(time.RFC3339))
	}
	r.writePlainln("Export SOUNDCLOUD_ACCESS_TOKEN to use it with 'match' and 'review'.")
	return nil
}
