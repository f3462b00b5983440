package matcher

import (
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/shared"
)

// Bucket names the side of the board a result sits in.
type Bucket int

const (
	MatchedBucket Bucket = iota
	ReviewBucket
)

func (b Bucket) String() string {
	if b == MatchedBucket {
		return "matched"
	}
	return "review"
}

// ParseBucket maps "matched" and "review" (or "needs_review") to a [Bucket].
func ParseBucket(s string) (Bucket, error) {
	switch s {
	case "matched":
		return MatchedBucket, nil
	case "review", "needs_review":
		return ReviewBucket, nil
	default:
		return 0, fmt.Errorf("%w: bucket %q", shared.ErrInvalidArgument, s)
	}
}

// Stats counts results per status.
type Stats struct {
	Total       int `json:"total"`
	Matched     int `json:"matched"`
	NeedsReview int `json:"needsReview"`
	NoMatch     int `json:"noMatch"`
}

// Snapshot is the serializable form of a [Board].
type Snapshot struct {
	Matched []models.MatchResult `json:"matched"`
	Review  []models.MatchResult `json:"review"`
}

// Board accumulates results into ordered matched and review buckets, indexed by TrackKey.
//
// The review bucket holds both needs_review and no_match results. A Board has a single
// owner and is not safe for concurrent use.
type Board struct {
	matched []string
	review  []string
	results map[string]*models.MatchResult
	bucket  map[string]Bucket
}

// NewBoard creates an empty [Board].
func NewBoard() *Board {
	return &Board{
		results: make(map[string]*models.MatchResult),
		bucket:  make(map[string]Bucket),
	}
}

// FromSnapshot rebuilds a board, preserving bucket order.
func FromSnapshot(s Snapshot) (*Board, error) {
	b := NewBoard()
	for _, r := range s.Matched {
		if err := b.insert(r, MatchedBucket); err != nil {
			return nil, err
		}
	}
	for _, r := range s.Review {
		if err := b.insert(r, ReviewBucket); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Add appends result to the bucket its status selects.
func (b *Board) Add(result models.MatchResult) error {
	bucket := ReviewBucket
	if result.Status == models.StatusMatched {
		bucket = MatchedBucket
	}
	return b.insert(result, bucket)
}

// Merge adds a page of results, skipping (and reporting) duplicate keys.
func (b *Board) Merge(matched, unmatched []models.MatchResult) error {
	var errs []error
	for _, r := range slices.Concat(matched, unmatched) {
		if err := b.Add(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Board) insert(result models.MatchResult, bucket Bucket) error {
	key := result.Key()
	if _, ok := b.results[key]; ok {
		return fmt.Errorf("%w: %q", shared.ErrDuplicateTrackKey, key)
	}

	r := result
	b.results[key] = &r
	b.bucket[key] = bucket
	if bucket == MatchedBucket {
		b.matched = append(b.matched, key)
	} else {
		b.review = append(b.review, key)
	}
	return nil
}

// Get returns a copy of the result for key.
func (b *Board) Get(key string) (models.MatchResult, Bucket, bool) {
	r, ok := b.results[key]
	if !ok {
		return models.MatchResult{}, 0, false
	}
	return *r, b.bucket[key], true
}

// MoveToNeedsReview moves a matched result to the end of the review bucket.
//
// The status becomes needs_review and the matched track is cleared. Prior review
// candidates are kept and the cleared match is put in front of them unless already
// present, so a following [Board.MoveToMatched] restores it. Moving a result already in
// the review bucket is a no-op.
func (b *Board) MoveToNeedsReview(key string) (models.MatchResult, error) {
	r, ok := b.results[key]
	if !ok {
		return models.MatchResult{}, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, key)
	}
	if b.bucket[key] == ReviewBucket {
		return *r, nil
	}

	if m := r.MatchedTrack; m != nil {
		present := slices.ContainsFunc(r.Candidates, func(c models.CandidateTrack) bool { return c == *m })
		if !present {
			r.Candidates = slices.Insert(slices.Clone(r.Candidates), 0, *m)
		}
	}
	r.Status = models.StatusNeedsReview
	r.MatchedTrack = nil

	b.matched = slices.DeleteFunc(b.matched, func(k string) bool { return k == key })
	b.review = append(b.review, key)
	b.bucket[key] = ReviewBucket
	return *r, nil
}

// MoveToMatched moves a review result to the end of the matched bucket.
//
// The matched track becomes the first review candidate, or nil when there are none.
// Candidates are kept so the move can be undone. Moving a result already in the matched
// bucket is a no-op.
func (b *Board) MoveToMatched(key string) (models.MatchResult, error) {
	r, ok := b.results[key]
	if !ok {
		return models.MatchResult{}, fmt.Errorf("%w: %q", shared.ErrTrackNotFound, key)
	}
	if b.bucket[key] == MatchedBucket {
		return *r, nil
	}

	r.Status = models.StatusMatched
	r.MatchedTrack = nil
	if len(r.Candidates) > 0 {
		first := r.Candidates[0]
		r.MatchedTrack = &first
	}

	b.review = slices.DeleteFunc(b.review, func(k string) bool { return k == key })
	b.matched = append(b.matched, key)
	b.bucket[key] = MatchedBucket
	return *r, nil
}

// Move dispatches to [Board.MoveToMatched] or [Board.MoveToNeedsReview].
func (b *Board) Move(key string, to Bucket) (models.MatchResult, error) {
	if to == MatchedBucket {
		return b.MoveToMatched(key)
	}
	return b.MoveToNeedsReview(key)
}

// Matched returns the matched bucket in order.
func (b *Board) Matched() []models.MatchResult { return b.collect(b.matched) }

// Review returns the review bucket in order.
func (b *Board) Review() []models.MatchResult { return b.collect(b.review) }

func (b *Board) collect(keys []string) []models.MatchResult {
	out := make([]models.MatchResult, 0, len(keys))
	for _, k := range keys {
		out = append(out, *b.results[k])
	}
	return out
}

// Len returns the number of results on the board.
func (b *Board) Len() int { return len(b.results) }

// Stats counts the board's results by status.
func (b *Board) Stats() Stats {
	s := Stats{Total: len(b.results)}
	for _, r := range b.results {
		switch r.Status {
		case models.StatusMatched:
			s.Matched++
		case models.StatusNeedsReview:
			s.NeedsReview++
		default:
			s.NoMatch++
		}
	}
	return s
}

// Snapshot returns the board's buckets for serialization.
func (b *Board) Snapshot() Snapshot {
	return Snapshot{Matched: b.Matched(), Review: b.Review()}
}
