package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/server"
	"github.com/desertthunder/moviex/internal/shared"
	tu "github.com/desertthunder/moviex/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			creds := repositories.NewMemoryStore(nil)

			runner := NewRunner(RunnerOpts{
				Config:      config,
				Logger:      logger,
				Output:      output,
				Credentials: creds,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.creds != creds {
				t.Error("expected credential store to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil credentials uses memory store", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if _, ok := runner.creds.(*repositories.MemoryStore); !ok {
				t.Errorf("expected in-memory credential store, got %T", runner.creds)
			}
		})

		t.Run("cacher is a nil interface without a cache", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.cacher() != nil {
				t.Error("expected nil cacher")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "movies", "recommend", "favorites", "export", "api", "serve", "tui"} {
			if !names[want] {
				t.Errorf("expected command %q to be registered", want)
			}
		}
	})
}

// cliEnv is a catalog API plus the state that outlives a single CLI invocation.
type cliEnv struct {
	srv    *httptest.Server
	config *shared.Config
	creds  *repositories.MemoryStore
	cache  *repositories.MovieRepository
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	api := server.New(server.NewCatalog(server.SeedMovies()), "test-secret", shared.NewLogger(io.Discard))
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	config := shared.DefaultConfig()
	config.API.BaseURL = srv.URL + server.APIPrefix
	config.API.RequestsPerSecond = 0

	return &cliEnv{
		srv:    srv,
		config: config,
		creds:  repositories.NewMemoryStore(nil),
		cache:  repositories.NewMovieRepository(db),
	}
}

// run executes one CLI invocation with a fresh Runner, as a new process would.
func (e *cliEnv) run(args ...string) (string, error) {
	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:      e.config,
		Logger:      shared.NewLogger(io.Discard),
		Output:      out,
		Credentials: e.creds,
		Cache:       e.cache,
	})
	app := &cli.Command{Name: "moviex", Commands: runner.register()}
	err := app.Run(context.Background(), append([]string{"moviex"}, args...))
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(args...)
	if err != nil {
		t.Fatalf("moviex %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestAccountCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "auth", "register", "--username", "ana", "--password", "secret123", "--email", "ana@example.com")
	if !strings.Contains(out, "Registered ana") {
		t.Errorf("unexpected register output: %s", out)
	}

	_, err := env.run("auth", "register", "--username", "ana", "--password", "secret123")
	if !errors.Is(err, shared.ErrValidationFailure) || !strings.Contains(err.Error(), "Nome de usuário já registrado") {
		t.Errorf("expected duplicate username detail, got %v", err)
	}

	_, err = env.run("auth", "login", "--username", "ana", "--password", "wrong-pass")
	if !errors.Is(err, shared.ErrAuthFailure) {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}

	out = env.mustRun(t, "auth", "login", "--username", "ana", "--password", "secret123")
	if !strings.Contains(out, "Signed in as ana") {
		t.Errorf("unexpected login output: %s", out)
	}
	if token, _ := env.creds.Get(context.Background(), repositories.TokenKey); token == "" {
		t.Fatal("expected the token to be stored")
	}

	out = env.mustRun(t, "auth", "whoami")
	for _, want := range []string{"Username: ana", "Email:    ana@example.com", "Token:    expires"} {
		if !strings.Contains(out, want) {
			t.Errorf("whoami output missing %q:\n%s", want, out)
		}
	}

	out = env.mustRun(t, "auth", "status")
	if !strings.Contains(out, "AUTHENTICATED") || !strings.Contains(out, "valid for subject 1") {
		t.Errorf("unexpected status output:\n%s", out)
	}

	env.mustRun(t, "auth", "logout")
	out = env.mustRun(t, "auth", "whoami")
	if !strings.Contains(out, "Not signed in") {
		t.Errorf("expected signed-out whoami, got %s", out)
	}
}

func TestFavoriteCommands(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("favorites", "list")
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated before login, got %v", err)
	}

	env.mustRun(t, "auth", "register", "--username", "ana", "--password", "secret123")
	env.mustRun(t, "auth", "login", "--username", "ana", "--password", "secret123")

	out := env.mustRun(t, "favorites", "add", "--movie-id", "2571,1")
	if strings.Count(out, "added") != 2 {
		t.Errorf("expected two additions, got:\n%s", out)
	}

	out, err = env.run("favorites", "add", "--movie-id", "2571")
	if err == nil || !strings.Contains(out, "Este filme já está nos favoritos") {
		t.Errorf("expected duplicate favorite detail, got err=%v out=%s", err, out)
	}

	out = env.mustRun(t, "favorites", "list", "--json")
	if !strings.Contains(out, "The Matrix") || !strings.Contains(out, "Toy Story") {
		t.Errorf("expected both favorites, got %s", out)
	}

	out = env.mustRun(t, "favorites", "toggle", "--movie-id", "1")
	if !strings.Contains(out, "removed") {
		t.Errorf("expected toggle to remove, got %s", out)
	}

	dir := t.TempDir()
	out = env.mustRun(t, "favorites", "export", "--format", "markdown", "--output", dir)
	if !strings.Contains(out, "Exported 1 favorite(s)") {
		t.Errorf("unexpected export output: %s", out)
	}
	readme := tu.MustReadFile(t, filepath.Join(dir, "ana_favorites", "README.md"))
	if !strings.Contains(readme, "The Matrix") {
		t.Errorf("expected The Matrix in exported README, got %s", readme)
	}

	out = env.mustRun(t, "recommend", "user", "--json")
	if !strings.Contains(out, "movie_id") {
		t.Errorf("expected recommendations, got %s", out)
	}
}

func TestStaleCredential(t *testing.T) {
	env := newCLIEnv(t)
	ctx := context.Background()
	env.creds.Set(ctx, repositories.TokenKey, "not-a-valid-token")

	_, err := env.run("favorites", "list")
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	if token, _ := env.creds.Get(ctx, repositories.TokenKey); token != "" {
		t.Errorf("expected rejected credential to be cleared, got %q", token)
	}
}

func TestMovieCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "movies", "top", "--limit", "3")
	if !strings.Contains(out, "The Shawshank Redemption") {
		t.Errorf("expected top rated list, got %s", out)
	}

	out = env.mustRun(t, "movies", "search", "matrix")
	if !strings.Contains(out, "The Matrix (1999)") {
		t.Errorf("expected search hit, got %s", out)
	}

	_, err := env.run("movies", "search")
	if !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument for empty search, got %v", err)
	}

	out = env.mustRun(t, "movies", "stats")
	if !strings.Contains(out, "Top genres:") {
		t.Errorf("expected stats, got %s", out)
	}

	out = env.mustRun(t, "recommend", "similar", "2571")
	if !strings.Contains(out, "Similar to movie 2571") {
		t.Errorf("expected similar movies, got %s", out)
	}

	out = env.mustRun(t, "api", "get", "movies/by-id/2571")
	if !strings.Contains(out, `"title": "The Matrix"`) {
		t.Errorf("expected raw JSON, got %s", out)
	}

	out = env.mustRun(t, "movies", "show", "2571")
	if !strings.Contains(out, "https://www.imdb.com/title/tt0133093/") {
		t.Errorf("expected IMDb link, got %s", out)
	}

	_, err = env.run("movies", "show", "999999")
	if !errors.Is(err, shared.ErrNotFoundFailure) {
		t.Errorf("expected ErrNotFoundFailure, got %v", err)
	}

	t.Run("falls back to the cache when offline", func(t *testing.T) {
		env.srv.Close()

		out, err := env.run("movies", "show", "2571")
		if err != nil {
			t.Fatalf("expected cached movie, got %v", err)
		}
		if !strings.Contains(out, "The Matrix (1999)") {
			t.Errorf("expected cached detail, got %s", out)
		}

		_, err = env.run("movies", "show", "424242")
		if !errors.Is(err, shared.ErrNetworkFailure) {
			t.Errorf("expected ErrNetworkFailure for an uncached movie, got %v", err)
		}
	})
}

func TestMoviesShowOfflineWithEmptyCache(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.Close()

	out, err := env.run("movies", "show", "2571")
	if !errors.Is(err, shared.ErrNetworkFailure) {
		t.Errorf("expected ErrNetworkFailure on a cache miss, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no output on a cache miss, got %q", out)
	}
}

func TestExportCommand(t *testing.T) {
	env := newCLIEnv(t)
	dir := t.TempDir()

	out := env.mustRun(t, "export", "--top", "3", "--format", "csv", "--output", dir, "--workers", "2")
	if !strings.Contains(out, "Exported 3/3 movie(s)") {
		t.Errorf("unexpected export output:\n%s", out)
	}
	tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	tu.AssertFileExists(t, filepath.Join(dir, "318_movies.csv"))

	out, err := env.run("export", "--output", t.TempDir(), "1,999999")
	if err != nil {
		t.Fatalf("partial failure should not fail the command: %v", err)
	}
	if !strings.Contains(out, "1 movie(s) failed") {
		t.Errorf("expected failure summary, got:\n%s", out)
	}

	_, err = env.run("export")
	if !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}

func TestSetupDatabase(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	wd := tu.MustGetwd(t)
	tu.MustChdir(t, dir)
	defer tu.MustChdir(t, wd)

	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: &bytes.Buffer{}})
	app := &cli.Command{Name: "moviex", Commands: runner.register()}

	if err := app.Run(context.Background(), []string{"moviex", "setup", "database", "--config", configPath}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, filepath.Join(dir, "moviex.db"))
}
