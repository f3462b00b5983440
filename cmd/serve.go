package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/shazcloud/internal/auth"
	"github.com/desertthunder/shazcloud/internal/repositories"
	"github.com/desertthunder/shazcloud/internal/server"
	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/desertthunder/shazcloud/internal/web"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const (
	purgeInterval = time.Minute
	clientIdle    = 10 * time.Minute
)

// Serve runs the web app until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Parser:   r.parser(0),
		Driver:   r.driver(0),
		PageSize: r.config.Matching.PageSize,
		Logger:   r.logger.WithPrefix("http"),
	}
	if cfg.RateLimit > 0 {
		opts.Limiter = server.NewClientLimiter(cfg.RateLimit, cfg.Burst)
	}

	index, err := web.NewHandler(web.PageData{PageSize: opts.PageSize})
	if err != nil {
		return err
	}
	opts.Index = index

	var store auth.VerifierStore
	if err := r.config.RequireCredentials(); err != nil {
		r.logger.Warn("sign-in disabled", "error", err)
	} else {
		verifiers, closeStore, err := r.verifierStore()
		if err != nil {
			return err
		}
		defer closeStore()
		store = verifiers

		cookies, err := r.cookieSigner(cfg)
		if err != nil {
			return err
		}
		a, err := r.authenticator()
		if err != nil {
			return err
		}
		opts.Authenticator, opts.Verifiers, opts.Cookies = a, verifiers, cookies
	}

	router := server.New(opts)
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.logger.Info("listening", "addr", httpServer.Addr, "routes", len(router.Routes()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		r.sweep(ctx, store, opts.Limiter)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		r.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// sweep drops expired verifiers and idle rate limit entries until ctx ends.
func (r *Runner) sweep(ctx context.Context, store auth.VerifierStore, limiter *server.ClientLimiter) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if store != nil {
				if n, err := store.Purge(ctx, now); err != nil {
					r.logger.Warn("purge failed", "error", err)
				} else if n > 0 {
					r.logger.Debug("purged verifiers", "count", n)
				}
			}
			if limiter != nil {
				limiter.Sweep(clientIdle)
			}
		}
	}
}

// verifierStore opens the backend named by store.driver.
func (r *Runner) verifierStore() (auth.VerifierStore, func(), error) {
	if r.config.Store.Driver != "sqlite" {
		return auth.NewMemoryStore(), func() {}, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Info("verifier store opened", "path", r.config.Database.Path)
	return repositories.NewVerifierRepository(db), func() { closeDB(r, db) }, nil
}

func closeDB(r *Runner, db *sql.DB) {
	if err := db.Close(); err != nil {
		r.logger.Warn("failed to close database", "error", err)
	}
}

// cookieSigner falls back to a per-process secret, so pending logins do not survive a restart.
func (r *Runner) cookieSigner(cfg shared.ServerConfig) (*server.CookieSigner, error) {
	secret := cfg.CookieSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate cookie secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		r.logger.Warn("server.cookie_secret is empty, using a random secret")
	}

	secure := cfg.Host != "localhost" && cfg.Host != "127.0.0.1"
	return server.NewCookieSigner(secret, cfg.VerifierTTL(), secure)
}
