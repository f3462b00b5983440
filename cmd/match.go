package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/desertthunder/shazcloud/internal/formatter"
	"github.com/desertthunder/shazcloud/internal/models"
	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/desertthunder/shazcloud/internal/tasks"
	"github.com/urfave/cli/v3"
)

// session parses the export named by the file argument and prepares a search session.
func (r *Runner) session(cmd *cli.Command) (*tasks.Session, string, error) {
	path := cmd.StringArg("file")
	if path == "" {
		return nil, "", fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	result, err := r.parser(cmd.Int("limit")).ParseFile(path)
	if err != nil {
		return nil, "", err
	}
	if len(result.Tracks) == 0 {
		return nil, "", fmt.Errorf("%w: %s has no tracks", shared.ErrInvalidInput, path)
	}

	token := r.accessToken(cmd)
	if token == "" {
		return nil, "", fmt.Errorf("%w: pass --token or set SOUNDCLOUD_ACCESS_TOKEN (see 'shazcloud auth login')", shared.ErrNotAuthenticated)
	}

	pageSize := cmd.Int("page-size")
	if pageSize <= 0 {
		pageSize = r.config.Matching.PageSize
	}

	s := tasks.NewSession(r.driver(cmd.Float("rate")), result.Tracks, pageSize, &models.AuthSession{AccessToken: token})
	return s, filepath.Base(path), nil
}

// Match searches one page (or every remaining page with --all) and prints or exports the board.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	s, source, err := r.session(cmd)
	if err != nil {
		return err
	}

	if page := cmd.Int("page"); page > 1 {
		s.Cursor.PageNumber = page
		if !s.HasMore() {
			return fmt.Errorf("%w: page %d is past the last track", shared.ErrInvalidArgument, page)
		}
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.printProgress(progress)
	}()

	var runErr error
	if cmd.Bool("all") {
		runErr = s.RunAll(ctx, progress)
	} else {
		var page *tasks.PageResult
		page, runErr = s.NextPage(ctx, progress)
		if runErr == nil {
			r.logger.Info("page searched", "page", page.Cursor.PageNumber, "pages", page.Pages(), "hasMore", page.HasMore)
		}
	}
	close(progress)
	wg.Wait()

	if runErr != nil && s.Board.Len() == 0 {
		return runErr
	}
	if runErr != nil {
		r.logger.Warn("search stopped early, writing partial board", "error", runErr)
	}

	if err := r.emitBoard(ctx, cmd, s, source); err != nil {
		return err
	}
	return runErr
}

func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		switch update.Phase {
		case tasks.SearchTracks:
			r.writePlain("  %s\n", update.Message)
		case tasks.MergePage:
			r.writePlain("✓ %s\n", update.Message)
		default:
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step)
		}
	}
}

// emitBoard writes exports when --output or --format is given, otherwise prints the board.
func (r *Runner) emitBoard(ctx context.Context, cmd *cli.Command, s *tasks.Session, source string) error {
	formats := make([]formatter.Format, 0)
	for _, raw := range cmd.StringSlice("format") {
		f, err := formatter.ParseFormat(raw)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	output := cmd.String("output")
	if output == "" && len(formats) == 0 {
		if cmd.Bool("json") {
			return r.writeJSON(formatter.NewBoardExport(source, s.Board), true)
		}
		data, err := formatter.Render(formatter.NewBoardExport(source, s.Board), formatter.Text)
		if err != nil {
			return err
		}
		return r.writePlainln("%s", data)
	}

	result, err := tasks.ExportBoard(ctx, nil, formatter.NewBoardExport(source, s.Board), tasks.ExportOpts{
		Formats:   formats,
		OutputDir: output,
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	for _, f := range result.Files {
		if f.Error != "" {
			r.writePlain("✗ %s: %s\n", f.Format, f.Error)
			continue
		}
		r.writePlain("✓ %s\n", f.Path)
	}
	r.writePlainln("Matched %d, review %d (%d without results) of %d",
		result.Stats.Matched, result.Stats.NeedsReview+result.Stats.NoMatch, result.Stats.NoMatch, result.Stats.Total)
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d formats failed", result.Failed, len(result.Files))
	}
	return nil
}
