package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/shazcloud/internal/services"
	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct authenticated GET request to the SoundCloud API.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	useJSON := cmd.Bool("json")

	api := r.api
	if api == nil {
		token := r.accessToken(cmd)
		if token == "" {
			return fmt.Errorf("%w: pass --token or set SOUNDCLOUD_ACCESS_TOKEN", shared.ErrNotAuthenticated)
		}
		api = services.NewAPIService(r.config.SoundCloud.APIURL, token, r.httpClient)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, !useJSON)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}
