// package services defines the catalog search clients used to find SoundCloud candidates for imported tracks
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/shared"
)

// Searcher looks up catalog candidates for a source track.
//
// Implementations return an empty list together with a soft [*SearchError] when the
// lookup could not be performed; callers treat that as "no candidates".
type Searcher interface {
	Search(ctx context.Context, track models.SourceTrack, accessToken string) ([]models.CandidateTrack, error)
}

// SearchFunc adapts a function to [Searcher].
type SearchFunc func(ctx context.Context, track models.SourceTrack, accessToken string) ([]models.CandidateTrack, error)

func (f SearchFunc) Search(ctx context.Context, track models.SourceTrack, accessToken string) ([]models.CandidateTrack, error) {
	return f(ctx, track, accessToken)
}

// SearchErrorKind identifies why a search produced no candidates.
type SearchErrorKind int

const (
	Unauthenticated SearchErrorKind = iota
	RequestFailed
)

func (k SearchErrorKind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case RequestFailed:
		return "request failed"
	default:
		return "unknown"
	}
}

// SearchError describes a search that degraded to an empty candidate list.
type SearchError struct {
	Kind       SearchErrorKind
	StatusCode int
	Query      string
	Err        error
}

func (e *SearchError) Error() string {
	switch {
	case e.Kind == Unauthenticated:
		return "search skipped: no access token"
	case e.StatusCode != 0:
		return fmt.Sprintf("search %q failed: status %d", e.Query, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("search %q failed: %v", e.Query, e.Err)
	default:
		return fmt.Sprintf("search %q failed", e.Query)
	}
}

// Unwrap exposes the cause alongside the matching sentinel from shared.
func (e *SearchError) Unwrap() []error {
	sentinel := shared.ErrAPIRequest
	if e.Kind == Unauthenticated {
		sentinel = shared.ErrNotAuthenticated
	}
	if e.Err != nil {
		return []error{sentinel, e.Err}
	}
	return []error{sentinel}
}

// IsSoft reports whether err must degrade to an empty candidate list instead of failing the caller.
func IsSoft(err error) bool {
	var serr *SearchError
	return errors.As(err, &serr)
}
