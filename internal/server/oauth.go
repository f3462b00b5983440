package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/shazcloud/internal/auth"
	"github.com/desertthunder/shazcloud/internal/models"
)

// CallbackResult contains the outcome of one CLI authorization.
type CallbackResult struct {
	Session *models.AuthSession
	err     error
}

func (o *CallbackResult) Error() error {
	return o.err
}

// CallbackHandler serves a single OAuth callback for the CLI.
//
// It holds the state and verifier of one [auth.Authorization] in memory and redeems them at most once.
type CallbackHandler struct {
	authenticator *auth.Authenticator
	authz         *auth.Authorization
	resultChan    chan CallbackResult
	once          sync.Once
	callbackHit   bool
	mu            sync.Mutex
}

// NewCallbackHandler creates a handler for authz.
func NewCallbackHandler(a *auth.Authenticator, authz *auth.Authorization) *CallbackHandler {
	return &CallbackHandler{
		authenticator: a,
		authz:         authz,
		resultChan:    make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/auth/callback"}
}

// ServeHTTP validates the state, exchanges the code, and publishes the result.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		writeError(w, http.StatusBadRequest, "Callback already processed")
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if state := query.Get("state"); state != h.authz.State {
		h.Send(CallbackResult{err: fmt.Errorf("invalid state parameter")})
		writeError(w, http.StatusBadRequest, "Invalid state parameter")
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("authorization failed: %s - %s", query.Get("error"), query.Get("error_description"))
		h.Send(CallbackResult{err: err})
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	if h.authz.ExpiresAt.IsZero() || !h.authz.ExpiresAt.After(timeNow()) {
		h.Send(CallbackResult{err: fmt.Errorf("authorization expired")})
		writeError(w, http.StatusBadRequest, "Missing code verifier")
		return
	}

	session, err := h.authenticator.Exchange(context.WithoutCancel(r.Context()), code, h.authz.Verifier)
	if err != nil {
		h.Send(CallbackResult{err: fmt.Errorf("token exchange failed: %w", err)})
		writeError(w, http.StatusBadGateway, "Token exchange failed")
		return
	}

	h.Send(CallbackResult{Session: session})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send publishes the result (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel that receives exactly one result and is then closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #ff5500; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Connected to SoundCloud</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
