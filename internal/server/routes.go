package server

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/auth"
	"github.com/desertthunder/shazcloud/internal/parser"
	"github.com/desertthunder/shazcloud/internal/tasks"
)

// Options collects the collaborators of the web service.
type Options struct {
	Authenticator *auth.Authenticator
	Verifiers     auth.VerifierStore
	Cookies       *CookieSigner
	Parser        *parser.Parser
	Driver        *tasks.Driver
	PageSize      int
	Limiter       *ClientLimiter
	// Index serves GET /; nil leaves the root unrouted.
	Index  http.Handler
	Logger *log.Logger
}

// New builds the router for `shazcloud serve`.
//
// The auth routes are only mounted when an authenticator, store and cookie signer are all set.
func New(opts Options) *BasicRouter {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	r := NewBasicRouter()
	r.Use(Logging(logger), Recovery(logger), RateLimit(opts.Limiter))

	r.HandleFunc(http.MethodGet, "/health", Health)
	if opts.Index != nil {
		r.Handle(http.MethodGet, "/{$}", opts.Index)
	}
	if opts.Authenticator != nil && opts.Verifiers != nil && opts.Cookies != nil {
		r.Handler(NewAuthHandler(opts.Authenticator, opts.Verifiers, opts.Cookies, logger.WithPrefix("auth")))
	}
	r.Handler(NewAPIHandler(opts.Parser, opts.Driver, opts.PageSize, logger.WithPrefix("api")))
	return r
}
