// package tasks drives the page-by-page search and classification of an import.
//
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/services"
	"golang.org/x/time/rate"
)

// DefaultPageSize is the number of tracks searched per page.
const DefaultPageSize = 20

// TrackFailure records a track whose search or classification failed outright.
type TrackFailure struct {
	TrackKey string `json:"trackKey"`
	Error    string `json:"error"`
}

// PageResult is the outcome of one page.
type PageResult struct {
	Cursor    models.PageCursor    `json:"cursor"`
	Matched   []models.MatchResult `json:"matched"`
	Unmatched []models.MatchResult `json:"unmatched"`
	Failures  []TrackFailure       `json:"failures,omitempty"`
	Total     int                  `json:"total"`
	HasMore   bool                 `json:"hasMore"`
}

// Pages returns the total page count for the import.
func (p *PageResult) Pages() int {
	if p.Cursor.PageSize < 1 {
		return 0
	}
	return (p.Total + p.Cursor.PageSize - 1) / p.Cursor.PageSize
}

// HasMore reports whether tracks remain after the page at cursor.
func HasMore(cursor models.PageCursor, total int) bool {
	return cursor.HasMore(total)
}

// Driver runs pages of tracks through a [services.Searcher] and a [matcher.Classifier].
type Driver struct {
	searcher services.Searcher
	classify matcher.Classifier
	limiter  *rate.Limiter
	logger   *log.Logger
}

// NewDriver creates a [Driver]. A nil classifier uses [matcher.Classify].
func NewDriver(searcher services.Searcher, classify matcher.Classifier, logger *log.Logger) *Driver {
	if classify == nil {
		classify = matcher.Classify
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{searcher: searcher, classify: classify, logger: logger}
}

// WithLimiter paces search requests. Tracks are still searched one at a time.
func (d *Driver) WithLimiter(l *rate.Limiter) *Driver {
	d.limiter = l
	return d
}

// RunPage searches and classifies tracks[(p-1)*size : p*size] in order.
//
// A failing or panicking track becomes no_match in the unmatched batch. The returned
// error is non-nil only when ctx ends, in which case the result holds the tracks
// finished so far.
func (d *Driver) RunPage(ctx context.Context, tracks []models.SourceTrack, cursor models.PageCursor, accessToken string, progress chan<- ProgressUpdate) (*PageResult, error) {
	start, end := cursor.Bounds(len(tracks))
	page := tracks[start:end]

	result := &PageResult{
		Cursor:    cursor,
		Matched:   []models.MatchResult{},
		Unmatched: []models.MatchResult{},
		Total:     len(tracks),
		HasMore:   HasMore(cursor, len(tracks)),
	}

	logger := d.logger.With("page", cursor.PageNumber, "size", cursor.PageSize)
	logger.Debug("running page", "tracks", len(page))

	for i, track := range page {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		sendProgress(progress, searchTrackUpdate(i+1, len(page), track))

		r, err := d.processTrack(ctx, track, accessToken)
		if err != nil {
			logger.Warn("track failed", "track", track.TrackKey, "error", err)
			result.Failures = append(result.Failures, TrackFailure{TrackKey: track.TrackKey, Error: err.Error()})
			r = models.MatchResult{Source: track, Status: models.StatusNoMatch}
		}

		if r.Status == models.StatusMatched {
			result.Matched = append(result.Matched, r)
		} else {
			result.Unmatched = append(result.Unmatched, r)
		}
		sendProgress(progress, classifiedUpdate(i+1, len(page), r))
	}

	return result, nil
}

// processTrack isolates one track so a panic in search or classify cannot abort the page.
func (d *Driver) processTrack(ctx context.Context, track models.SourceTrack, accessToken string) (r models.MatchResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	candidates, err := d.searcher.Search(ctx, track, accessToken)
	if err != nil {
		if !services.IsSoft(err) {
			return models.MatchResult{}, err
		}
		candidates = nil
	}
	return d.classify(track, candidates), nil
}
