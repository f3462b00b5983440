// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/shazcloud/internal/models"
)

// SampleExport is a minimal valid Shazam export with a single row.
const SampleExport = "Shazam Library\nIndex,TagTime,Title,Artist,URL,TrackKey\n1,t1,Song,Artist,u,k1\n"

// BuildExport renders tracks as a Shazam export.
func BuildExport(tracks ...models.SourceTrack) string {
	var b strings.Builder
	b.WriteString("Shazam Library\nIndex,TagTime,Title,Artist,URL,TrackKey\n")
	for _, t := range tracks {
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s\n", t.Index, t.TagTime, t.Title, t.Artist, t.SourceURL, t.TrackKey)
	}
	return b.String()
}

// Tracks returns n distinct source tracks keyed k1..kn.
func Tracks(n int) []models.SourceTrack {
	tracks := make([]models.SourceTrack, n)
	for i := range tracks {
		tracks[i] = models.SourceTrack{
			Index:     fmt.Sprint(i + 1),
			TagTime:   fmt.Sprintf("2024-01-%02dT00:00:00Z", i%28+1),
			Title:     fmt.Sprintf("Song %d", i+1),
			Artist:    fmt.Sprintf("Artist %d", i+1),
			SourceURL: fmt.Sprintf("https://www.shazam.com/track/%d", i+1),
			TrackKey:  fmt.Sprintf("k%d", i+1),
		}
	}
	return tracks
}

// ExactCandidate returns a candidate that matches track by the "artist - title" convention.
func ExactCandidate(track models.SourceTrack) models.CandidateTrack {
	return models.CandidateTrack{
		Title:  track.Artist + " - " + track.Title,
		Artist: "uploader",
		URL:    "https://soundcloud.com/uploader/" + track.TrackKey,
	}
}

// MockSearcher is a scripted test double for services.Searcher, keyed by TrackKey.
type MockSearcher struct {
	mu      sync.Mutex
	Results map[string][]models.CandidateTrack
	Errors  map[string]error
	Panics  map[string]bool
	calls   []string
	tokens  []string
}

func NewMockSearcher() *MockSearcher {
	return &MockSearcher{
		Results: make(map[string][]models.CandidateTrack),
		Errors:  make(map[string]error),
		Panics:  make(map[string]bool),
	}
}

func (m *MockSearcher) Search(ctx context.Context, track models.SourceTrack, accessToken string) ([]models.CandidateTrack, error) {
	m.mu.Lock()
	m.calls = append(m.calls, track.TrackKey)
	m.tokens = append(m.tokens, accessToken)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Panics[track.TrackKey] {
		panic("search exploded for " + track.TrackKey)
	}
	if err, ok := m.Errors[track.TrackKey]; ok {
		return nil, err
	}
	return m.Results[track.TrackKey], nil
}

// Calls returns the track keys searched, in order.
func (m *MockSearcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Tokens returns the access tokens passed to Search, in order.
func (m *MockSearcher) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
