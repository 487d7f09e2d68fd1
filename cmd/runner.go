package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytradio/internal/repositories"
	"github.com/desertthunder/ytradio/internal/server"
	"github.com/desertthunder/ytradio/internal/services"
	"github.com/desertthunder/ytradio/internal/sessions"
	"github.com/desertthunder/ytradio/internal/shared"
	"github.com/desertthunder/ytradio/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	opts       RunnerOpts
	config     *shared.Config
	configPath string
	metadata   services.MetadataProvider
	media      services.MediaResolver
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	registry   *sessions.Registry
	metrics    *server.Metrics
	discovery  *tasks.Discovery
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Metadata, Media and API override the services otherwise built from Config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Metadata   services.MetadataProvider
	Media      services.MediaResolver
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
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

	r := &Runner{
		opts:       opts,
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.wire()
	return r
}

// Load reads the file named by the --config flag, if present, and rebuilds the services from it.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	r.configPath = path

	config, err := shared.LoadConfig(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	case err != nil:
		return ctx, err
	}

	if err := config.Validate(); err != nil {
		return ctx, err
	}

	r.config = config
	r.wire()
	r.logger.Debug("loaded config", "path", path)
	return ctx, nil
}

// wire builds the provider chain, discovery pipeline and session registry from the current config.
func (r *Runner) wire() {
	cfg := r.config

	r.registry = sessions.NewRegistry(sessions.Options{
		Capacity: cfg.Discovery.MaxRelated + 1,
		TTL:      cfg.Server.SessionTTL(),
		Logger:   shared.WithLogger(r.logger, "component", "sessions"),
	})
	r.metrics = server.NewMetrics(r.registry.Len)

	metadata := r.opts.Metadata
	if metadata == nil {
		metadata = services.NewYouTubeService(cfg.Credentials.YouTube.ProxyURL, r.httpClient)
	}
	metadata = tasks.RateLimited(metadata, tasks.NewLimiter(cfg.Discovery))
	r.metadata = r.metrics.InstrumentMetadata(metadata)

	r.media = r.opts.Media
	if r.media == nil {
		r.media = services.NewYTDLPResolver(cfg.YTDLP)
	}

	r.api = r.opts.API
	if r.api == nil {
		r.api = services.NewAPIService("http://"+cfg.Server.Addr(), r.httpClient)
	}

	r.discovery = tasks.NewDiscovery(
		r.metadata,
		r.media,
		tasks.OptionsFromConfig(cfg.Discovery),
		shared.WithLogger(r.logger, "component", "discovery"),
	)
}

// SetLogger replaces the logger and rebuilds the components that hold it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.wire()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, searchCommand, relatedCommand, listenCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openHistory opens the request store. It returns a nil repository when history is disabled.
func (r *Runner) openHistory() (*repositories.RequestRepository, *sql.DB, error) {
	if !r.config.Database.Enabled {
		return nil, nil, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewRequestRepository(db), db, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
