// package models defines the data model for the shazam to soundcloud importer
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// MatchStatus classifies a [MatchResult].
type MatchStatus string

const (
	StatusMatched     MatchStatus = "matched"
	StatusNeedsReview MatchStatus = "needs_review"
	StatusNoMatch     MatchStatus = "no_match"
)

// Valid reports whether s is one of the known statuses.
func (s MatchStatus) Valid() bool {
	switch s {
	case StatusMatched, StatusNeedsReview, StatusNoMatch:
		return true
	default:
		return false
	}
}

// SourceTrack is one row of a Shazam export. Immutable once parsed.
type SourceTrack struct {
	Index     string `json:"index"`
	TagTime   string `json:"tagTime"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	SourceURL string `json:"sourceUrl"`
	TrackKey  string `json:"trackKey"`
}

// CandidateTrack is a single SoundCloud search hit.
type CandidateTrack struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Key returns the (title, artist) identity of the candidate, trimmed and lowercased.
func (c CandidateTrack) Key() string {
	return Normalize(c.Title) + "|" + Normalize(c.Artist)
}

// MatchResult wraps a [SourceTrack] with its classification.
//
// MatchedTrack is set only when Status is [StatusMatched]; Candidates only when Status is [StatusNeedsReview].
type MatchResult struct {
	Source       SourceTrack      `json:"sourceTrack"`
	Status       MatchStatus      `json:"status"`
	MatchedTrack *CandidateTrack  `json:"matchedTrack,omitempty"`
	Candidates   []CandidateTrack `json:"reviewCandidates,omitempty"`
}

// Key returns the reconciliation key (the source TrackKey).
func (r MatchResult) Key() string { return r.Source.TrackKey }

// MarshalJSON writes matchedTrack only for matched results and reviewCandidates only
// for needs_review results. Candidates kept on a manually matched result stay on the
// in-memory board but are not serialized.
func (r MatchResult) MarshalJSON() ([]byte, error) {
	type wire MatchResult
	w := wire(r)
	if w.Status != StatusMatched {
		w.MatchedTrack = nil
	}
	if w.Status != StatusNeedsReview {
		w.Candidates = nil
	}
	return json.Marshal(w)
}

// AuthSession holds the transient state of one authorization attempt.
type AuthSession struct {
	CodeVerifier string    `json:"-"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// IsAuthenticated is derived from the presence of an access token.
func (a *AuthSession) IsAuthenticated() bool {
	return a != nil && a.AccessToken != ""
}

// PageCursor addresses a fixed-size page of an ordered track list.
type PageCursor struct {
	PageNumber int `json:"page"`
	PageSize   int `json:"pageSize"`
}

// Bounds returns the half-open slice range for this page, clamped to total.
func (c PageCursor) Bounds(total int) (start, end int) {
	if c.PageNumber < 1 || c.PageSize < 1 {
		return 0, 0
	}
	start = (c.PageNumber - 1) * c.PageSize
	end = c.PageNumber * c.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return start, end
}

// HasMore reports whether tracks remain after this page. A cursor without a
// positive page number and size addresses no page, as in [PageCursor.Bounds].
func (c PageCursor) HasMore(total int) bool {
	if c.PageNumber < 1 || c.PageSize < 1 {
		return false
	}
	return c.PageNumber*c.PageSize < total
}

// Next returns the cursor for the following page.
func (c PageCursor) Next() PageCursor {
	return PageCursor{PageNumber: c.PageNumber + 1, PageSize: c.PageSize}
}

// Normalize trims surrounding whitespace and lowercases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
