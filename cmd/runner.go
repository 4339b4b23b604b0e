package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/navigation"
	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/session"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
	"github.com/desertthunder/moviex/internal/transport"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	base       http.RoundTripper
	creds      repositories.Store
	cache      *repositories.MovieRepository

	nav       *navigation.Tracker
	api       *services.APIService
	auth      *services.AuthService
	movies    *services.MovieService
	recs      *services.RecommendationService
	favorites *services.FavoritesService
	session   *session.Store

	connectOnce sync.Once
	hydrateOnce sync.Once
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Logger      *log.Logger
	Output      io.Writer
	Transport   http.RoundTripper             // base transport under the request pipeline
	Credentials repositories.Store            // defaults to an in-memory store
	Cache       *repositories.MovieRepository // optional movie cache
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
	if opts.Credentials == nil {
		opts.Credentials = repositories.NewMemoryStore(nil)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		base:       opts.Transport,
		creds:      opts.Credentials,
		cache:      opts.Cache,
		nav:        navigation.NewTracker(navigation.Home),
	}
}

// SetLogger replaces the logger. It only affects clients built after the call.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// connect builds the request pipeline, the services and the session store once.
func (r *Runner) connect() {
	r.connectOnce.Do(func() {
		client := transport.NewClient(transport.Options{
			Base:      r.base,
			Store:     r.creds,
			TokenKey:  r.config.Session.TokenKey,
			Navigator: r.nav,
			OnCredentialClear: func(ctx context.Context) {
				r.session.Invalidate(ctx)
			},
			RequestsPerSecond: r.config.API.RequestsPerSecond,
			Timeout:           r.config.API.Timeout(),
			Logger:            r.logger,
		})

		r.api = services.NewAPIService(r.config.API.BaseURL, client)
		r.auth = services.NewAuthService(r.api)
		r.movies = services.NewMovieService(r.api)
		r.recs = services.NewRecommendationService(r.api)
		r.favorites = services.NewFavoritesService(r.api, r.logger)
		r.session = session.New(r.auth, r.creds, r.nav, r.logger, session.WithTokenKey(r.config.Session.TokenKey))
	})
}

// hydrate restores the stored session once per process.
func (r *Runner) hydrate(ctx context.Context) {
	r.connect()
	r.hydrateOnce.Do(func() {
		r.session.Hydrate(ctx)
	})
}

// requireAuth hydrates and fails with [shared.ErrNotAuthenticated] when no credential is stored.
func (r *Runner) requireAuth(ctx context.Context, target string) error {
	r.hydrate(ctx)
	if !navigation.Guard(ctx, r.session, r.nav, target) {
		return fmt.Errorf("%w: run 'moviex auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

// cacher returns the movie cache as an interface value that is nil when no cache is configured.
func (r *Runner) cacher() tasks.MovieCacher {
	if r.cache == nil {
		return nil
	}
	return r.cache
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, recommendCommand, favoritesCommand,
		exportCommand, apiCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
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
