package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/auth"
)

// AuthHandler serves the browser side of the PKCE flow.
type AuthHandler struct {
	authenticator *auth.Authenticator
	store         auth.VerifierStore
	cookies       *CookieSigner
	successPath   string
	logger        *log.Logger
}

// NewAuthHandler creates an [AuthHandler] that redirects to "/" on success.
func NewAuthHandler(a *auth.Authenticator, store auth.VerifierStore, cookies *CookieSigner, logger *log.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: a,
		store:         store,
		cookies:       cookies,
		successPath:   "/",
		logger:        logger,
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"/auth/login", "/auth/callback"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	switch r.URL.Path {
	case "/auth/login":
		h.login(w, r)
	case "/auth/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	authz, err := h.authenticator.Begin()
	if err != nil {
		h.logger.Error("failed to begin authorization", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start authorization")
		return
	}

	if err := h.store.Save(r.Context(), authz.State, authz.Verifier, authz.ExpiresAt); err != nil {
		h.logger.Error("failed to store verifier", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start authorization")
		return
	}

	cookie, err := h.cookies.Cookie(authz.State)
	if err != nil {
		h.logger.Error("failed to sign cookie", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start authorization")
		return
	}

	http.SetCookie(w, cookie)
	h.logger.Debug("authorization started", "state", authz.State, "expires", authz.ExpiresAt)
	http.Redirect(w, r, authz.URL, http.StatusFound)
}

func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		h.logger.Error("missing authorization code", "error", query.Get("error"), "description", query.Get("error_description"))
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	verifier, err := h.redeem(r)
	http.SetCookie(w, h.cookies.Clear())
	if err != nil {
		h.logger.Warn("no verifier for callback", "error", err)
		writeError(w, http.StatusBadRequest, "Missing code verifier")
		return
	}

	session, err := h.authenticator.Exchange(r.Context(), code, verifier)
	if err != nil {
		var aerr *auth.AuthError
		if !errors.As(err, &aerr) {
			writeError(w, http.StatusInternalServerError, "Failed to exchange authorization code")
			return
		}
		switch {
		case aerr.Kind == auth.MissingTokens:
			writeError(w, http.StatusInternalServerError, "Missing access token or refresh token")
		case aerr.Kind == auth.TokenRequestFailed && aerr.StatusCode >= http.StatusBadRequest:
			writeError(w, aerr.StatusCode, "Failed to obtain access token")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to exchange authorization code")
		}
		return
	}

	// Tokens travel to the browser in the query string and are not kept here.
	target := url.URL{Path: h.successPath}
	values := url.Values{}
	values.Set("access_token", session.AccessToken)
	values.Set("refresh_token", session.RefreshToken)
	target.RawQuery = values.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

// redeem resolves the cookie to its state, checks it against the query, and takes the verifier.
func (h *AuthHandler) redeem(r *http.Request) (string, error) {
	c, err := r.Cookie(VerifierCookie)
	if err != nil {
		return "", err
	}
	state, err := h.cookies.Verify(c.Value)
	if err != nil {
		return "", err
	}
	if qs := r.URL.Query().Get("state"); qs != "" && qs != state {
		return "", errors.New("state mismatch")
	}
	return h.store.Take(r.Context(), state)
}
