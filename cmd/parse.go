package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/urfave/cli/v3"
)

// Parse reads an export and prints its tracks.
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}

	result, err := r.parser(cmd.Int("limit")).ParseFile(path)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s: %d tracks", path, len(result.Tracks)))
	for _, t := range result.Tracks {
		r.writePlain("%4s. %s - %s\n", t.Index, t.Artist, t.Title)
	}
	if result.Skipped > 0 {
		r.writePlainln("⚠ Skipped %d malformed rows", result.Skipped)
	}
	if len(result.Duplicates) > 0 {
		r.writePlainln("⚠ Duplicate track keys: %v", result.Duplicates)
	}
	return nil
}
