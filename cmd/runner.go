package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shazcloud/internal/matcher"
	"github.com/desertthunder/shazcloud/internal/parser"
	"github.com/desertthunder/shazcloud/internal/services"
	"github.com/desertthunder/shazcloud/internal/shared"
	"github.com/desertthunder/shazcloud/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	configured bool
	searcher   services.Searcher
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// A nil Config is loaded from --config before any command runs; a nil Searcher is built from the config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Searcher   services.Searcher
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	configured := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		configured: configured,
		searcher:   opts.Searcher,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "shazcloud",
		Usage:   "Find your Shazam library on SoundCloud",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, parseCommand, matchCommand, reviewCommand, serveCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the configuration named by --config unless one was injected.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	if r.configured {
		return ctx, nil
	}

	path := cmd.String("config")
	config, err := shared.LoadConfigOrDefault(path)
	if err != nil {
		return ctx, err
	}
	if err := config.Validate(); err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	r.configured = true
	r.logger.Debug("configuration loaded", "path", path)
	return ctx, nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// accessToken resolves the token for SoundCloud requests: the --token flag, then the environment.
func (r *Runner) accessToken(cmd *cli.Command) string {
	if t := cmd.String("token"); t != "" {
		return t
	}
	return r.config.Credentials.SoundCloud.AccessToken
}

// soundCloud returns the injected searcher or one built from the config.
func (r *Runner) soundCloud() services.Searcher {
	if r.searcher != nil {
		return r.searcher
	}
	return services.NewSoundCloudService(r.config.SoundCloud.APIURL, r.config.SoundCloud.Timeout(), r.logger.WithPrefix("soundcloud"))
}

// driver builds the page driver from the matching config. perSecond > 0 paces searches.
func (r *Runner) driver(perSecond float64) *tasks.Driver {
	policy := matcher.Policy{ReviewLimit: r.config.Matching.ReviewLimit}
	d := tasks.NewDriver(r.soundCloud(), policy.Classify, r.logger.WithPrefix("tasks"))
	if perSecond > 0 {
		d.WithLimiter(rate.NewLimiter(rate.Limit(perSecond), 1))
	}
	return d
}

// parser returns a parser honoring the configured row limit, overridden by limit when positive.
func (r *Runner) parser(limit int) *parser.Parser {
	p := parser.New(r.logger.WithPrefix("parser"))
	p.Limit = r.config.Matching.RowLimit
	if limit > 0 {
		p.Limit = limit
	}
	return p
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
