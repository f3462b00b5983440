// SoundCloud API implementation of [Searcher]
//
// Response types based on https://developers.soundcloud.com/docs/api/explorer/open-api
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/models"
)

const soundCloudBaseURL = "https://api.soundcloud.com"

// SoundCloudUser is the uploader of a track.
type SoundCloudUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SoundCloudTrack is one entry of a /tracks search response.
type SoundCloudTrack struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	PermalinkURL string         `json:"permalink_url"`
	ArtworkURL   *string        `json:"artwork_url"`
	User         SoundCloudUser `json:"user"`
}

// Candidate maps the API track to a [models.CandidateTrack].
func (t SoundCloudTrack) Candidate() models.CandidateTrack {
	c := models.CandidateTrack{
		Title:  t.Title,
		Artist: t.User.Username,
		URL:    t.PermalinkURL,
	}
	if t.ArtworkURL != nil {
		c.ImageURL = *t.ArtworkURL
	}
	return c
}

// soundCloudCollection is the linked-partitioning envelope some /tracks responses use.
type soundCloudCollection struct {
	Collection []SoundCloudTrack `json:"collection"`
}

// SoundCloudService searches the SoundCloud catalog with a user access token.
type SoundCloudService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSoundCloudService creates a [SoundCloudService]. timeout bounds each request; zero disables it.
func NewSoundCloudService(baseURL string, timeout time.Duration, logger *log.Logger) *SoundCloudService {
	if baseURL == "" {
		baseURL = soundCloudBaseURL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &SoundCloudService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithHTTPClient replaces the underlying client.
func (s *SoundCloudService) WithHTTPClient(c *http.Client) *SoundCloudService {
	s.httpClient = c
	return s
}

func (s *SoundCloudService) Name() string {
	return "SoundCloud"
}

// Query builds the free-text search string for track: artist, a space, then title, with double quotes removed.
func Query(track models.SourceTrack) string {
	return strings.ReplaceAll(track.Artist+" "+track.Title, `"`, "")
}

// Search issues one GET /tracks?q= request. Every failure returns an empty list and a soft [*SearchError].
func (s *SoundCloudService) Search(ctx context.Context, track models.SourceTrack, accessToken string) ([]models.CandidateTrack, error) {
	if accessToken == "" {
		return []models.CandidateTrack{}, &SearchError{Kind: Unauthenticated}
	}

	q := Query(track)
	logger := s.logger.With("track", track.TrackKey, "query", q)

	tracks, err := s.doSearch(ctx, q, accessToken)
	if err != nil {
		serr := &SearchError{Kind: RequestFailed, Query: q}
		var status *statusError
		if errors.As(err, &status) {
			serr.StatusCode = status.code
		} else {
			serr.Err = err
		}
		logger.Warn("search failed", "error", serr)
		return []models.CandidateTrack{}, serr
	}

	candidates := make([]models.CandidateTrack, 0, len(tracks))
	for _, t := range tracks {
		candidates = append(candidates, t.Candidate())
	}
	logger.Debug("search complete", "candidates", len(candidates))
	return candidates, nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("soundcloud API error: status %d", e.code) }

// doRequest performs an authenticated GET and returns the body of a 2xx response.
func (s *SoundCloudService) doRequest(ctx context.Context, endpoint string, params url.Values, accessToken string) ([]byte, error) {
	apiURL := s.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (s *SoundCloudService) doSearch(ctx context.Context, q, accessToken string) ([]SoundCloudTrack, error) {
	body, err := s.doRequest(ctx, "/tracks", url.Values{"q": {q}}, accessToken)
	if err != nil {
		return nil, err
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var page soundCloudCollection
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return page.Collection, nil
	}

	var tracks []SoundCloudTrack
	if err := json.Unmarshal(body, &tracks); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return tracks, nil
}
