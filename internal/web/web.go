// Package web serves the single-page front end of `shazcloud serve`.
//
// The page is an embedded [html/template]. It uploads an export to /api/parse, walks the
// pages through /api/search, and applies manual moves through /api/move. The board lives
// in the browser; the token pair returned by /auth/callback is read from the query string
// into session storage and stripped from the address bar.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/index.html
var templates embed.FS

// PageData is rendered into the index template.
type PageData struct {
	Title     string
	LoginPath string
	PageSize  int
}

// Handler serves the rendered index page.
type Handler struct {
	page []byte
}

// NewHandler renders the index once with data.
func NewHandler(data PageData) (*Handler, error) {
	if data.Title == "" {
		data.Title = "Shazam to SoundCloud"
	}
	if data.LoginPath == "" {
		data.LoginPath = "/auth/login"
	}

	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render index template: %w", err)
	}
	return &Handler{page: buf.Bytes()}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.WriteHeader(http.StatusOK)
	w.Write(h.page)
}
