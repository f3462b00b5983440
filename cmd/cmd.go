// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "token",
		Aliases: []string{"t"},
		Usage:   "SoundCloud access token (default: $SOUNDCLOUD_ACCESS_TOKEN)",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml from the bundled template",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the verifier database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles SoundCloud authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize with SoundCloud (OAuth 2.0 + PKCE)",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Run the authorization in a browser and print the token pair",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening it",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the callback",
						Value: 2 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "url",
				Usage: "Print an authorization URL with its state and verifier",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "exchange",
				Usage: "Exchange an authorization code for tokens",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "code",
						Usage:    "Authorization code from the callback",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "verifier",
						Usage:    "Code verifier printed by 'auth url'",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthExchange,
			},
		},
	}
}

// parseCommand validates an export without searching.
func parseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "parse",
		Usage: "Parse a Shazam library export",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Only read the first N rows",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Parse,
	}
}

// matchCommand searches an export page by page.
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "Search SoundCloud for each track of an export",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			tokenFlag(),
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page to search",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Tracks per page (default: matching.page_size)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Search every page from --page on",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Only read the first N rows",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Maximum searches per second (0: unlimited)",
			},
			&cli.StringSliceFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, text (repeatable)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write exports to this directory",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the board as JSON",
			},
		},
		Action: r.Match,
	}
}

// reviewCommand returns the interactive review board.
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "review",
		Aliases: []string{"tui", "ui"},
		Usage:   "Search and review matches interactively",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			tokenFlag(),
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Tracks per page (default: matching.page_size)",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Only read the first N rows",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Maximum searches per second (0: unlimited)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for exports started from the board",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log file while the board is open",
				Value: "./tmp/shazcloud-tui.log",
			},
		},
		Action: r.Review,
	}
}

// serveCommand runs the web service.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web app and its JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}

// apiCommand handles direct SoundCloud API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct SoundCloud API calls",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct authenticated GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
				},
				Action: r.APIGet,
			},
		},
	}
}
