// Package server provides HTTP routing, middleware, and the handlers behind `shazcloud serve`
// and the CLI's local OAuth callback.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Authorization
//
// [AuthHandler] serves /auth/login and /auth/callback. Login begins a PKCE authorization, keeps the
// verifier in an [auth.VerifierStore] and binds the browser to it with a short-lived signed cookie
// ([CookieSigner]). The callback redeems the verifier exactly once and redirects to the front page
// with the token pair in the query string. Tokens are never persisted server side.
//
// [CallbackHandler] is the single-shot variant used by `shazcloud auth login`: it serves one
// callback on localhost and hands the result to the CLI through a channel.
//
// # API
//
// [APIHandler] exposes the import pipeline as JSON: parse an uploaded export, search one page of
// tracks, and move a result between the matched and review buckets. Results live in the client;
// every request carries the state it needs.
package server
