package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/shared"
)

// Session owns the state of one import: its tracks, the next page to run, the
// accumulated board, and the access token used for searches.
type Session struct {
	Tracks []models.SourceTrack
	Cursor models.PageCursor
	Board  *matcher.Board
	Auth   *models.AuthSession

	driver *Driver
}

// NewSession starts at page 1 with an empty board.
func NewSession(driver *Driver, tracks []models.SourceTrack, pageSize int, auth *models.AuthSession) *Session {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if auth == nil {
		auth = &models.AuthSession{}
	}
	return &Session{
		Tracks: tracks,
		Cursor: models.PageCursor{PageNumber: 1, PageSize: pageSize},
		Board:  matcher.NewBoard(),
		Auth:   auth,
		driver: driver,
	}
}

// HasMore reports whether any page remains to be run.
func (s *Session) HasMore() bool {
	start, _ := s.Cursor.Bounds(len(s.Tracks))
	return start < len(s.Tracks)
}

// NextPage runs the current page, merges it into the board, and advances the cursor.
//
// Duplicate track keys are logged and left out of the board. When ctx ends mid-page
// the finished tracks are merged and the cursor is not advanced.
func (s *Session) NextPage(ctx context.Context, progress chan<- ProgressUpdate) (*PageResult, error) {
	if !s.HasMore() {
		return nil, fmt.Errorf("%w: no pages remain", shared.ErrInvalidArgument)
	}

	page, runErr := s.driver.RunPage(ctx, s.Tracks, s.Cursor, s.Auth.AccessToken, progress)
	if err := s.Board.Merge(page.Matched, page.Unmatched); err != nil {
		s.driver.logger.Warn("merge skipped results", "page", s.Cursor.PageNumber, "error", err)
	}
	if runErr != nil {
		return page, runErr
	}

	sendProgress(progress, pageMergedUpdate(page))
	s.Cursor = s.Cursor.Next()
	return page, nil
}

// RunAll runs pages until none remain or ctx ends.
func (s *Session) RunAll(ctx context.Context, progress chan<- ProgressUpdate) error {
	for s.HasMore() {
		if _, err := s.NextPage(ctx, progress); err != nil {
			return err
		}
	}
	return nil
}
