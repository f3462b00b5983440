package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandler(t *testing.T) {
	h, err := NewHandler(PageData{PageSize: 25})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html, got %q", ct)
	}
	if rec.Header().Get("Referrer-Policy") != "no-referrer" {
		t.Error("tokens in the query string must not leak through the referrer")
	}

	body := rec.Body.String()
	for _, want := range []string{
		"<title>Shazam to SoundCloud</title>",
		`href="/auth/login"`,
		"/api/search",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	// html/template pads JS values with spaces.
	if !strings.Contains(strings.ReplaceAll(body, " ", ""), "constpageSize=25;") {
		t.Error("page size was not rendered into the script")
	}
}
