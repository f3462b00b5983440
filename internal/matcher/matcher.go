// package matcher classifies source tracks against catalog candidates and tracks manual review decisions
package matcher

import (
	"strings"

	"github.com/desertthunder/shazcloud/internal/models"
)

// DefaultReviewLimit is the number of candidates kept for manual review.
const DefaultReviewLimit = 3

// Policy tunes classification.
type Policy struct {
	ReviewLimit int
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{ReviewLimit: DefaultReviewLimit}
}

// Classifier turns a track and its candidates into a result. [Policy.Classify] is the standard implementation.
type Classifier func(track models.SourceTrack, candidates []models.CandidateTrack) models.MatchResult

// Classify scans candidates in order and returns the first exact match.
//
// A candidate matches when its title equals "{artist} - {title}", or when both its title
// and artist equal the source's, compared with [models.Normalize]. Without a match the
// first ReviewLimit candidates are kept for review; without candidates the result is no_match.
func (p Policy) Classify(track models.SourceTrack, candidates []models.CandidateTrack) models.MatchResult {
	result := models.MatchResult{Source: track, Status: models.StatusNoMatch}
	if len(candidates) == 0 {
		return result
	}

	if match, ok := FindExact(track, candidates); ok {
		result.Status = models.StatusMatched
		result.MatchedTrack = &match
		return result
	}

	limit := p.ReviewLimit
	if limit <= 0 {
		limit = DefaultReviewLimit
	}
	limit = min(limit, len(candidates))

	result.Status = models.StatusNeedsReview
	result.Candidates = append([]models.CandidateTrack(nil), candidates[:limit]...)
	return result
}

// Classify applies [DefaultPolicy].
func Classify(track models.SourceTrack, candidates []models.CandidateTrack) models.MatchResult {
	return DefaultPolicy().Classify(track, candidates)
}

// FindExact returns the first candidate satisfying either exact-match predicate.
func FindExact(track models.SourceTrack, candidates []models.CandidateTrack) (models.CandidateTrack, bool) {
	title := models.Normalize(track.Title)
	artist := models.Normalize(track.Artist)
	// Not re-trimmed: an empty artist leaves a leading space no trimmed title can equal.
	combined := strings.ToLower(strings.TrimSpace(track.Artist) + " - " + strings.TrimSpace(track.Title))

	for _, c := range candidates {
		ct := models.Normalize(c.Title)
		if ct == combined {
			return c, true
		}
		if ct == title && models.Normalize(c.Artist) == artist {
			return c, true
		}
	}
	return models.CandidateTrack{}, false
}
