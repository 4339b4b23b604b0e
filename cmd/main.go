package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/shared"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(defaultConfigPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	opts := RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	}

	db, err := shared.OpenMigrated(config.Database)
	if err != nil {
		logger.Warn("database unavailable, session will not persist", "path", config.Database.Path, "error", err)
	} else {
		defer db.Close()
		opts.Credentials = repositories.NewSQLiteStore(db)
		opts.Cache = repositories.NewMovieRepository(db)
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "moviex",
		Usage:    "Browse the movie catalog, manage favorites and get recommendations",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotAuthenticated):
			logger.Error("sign-in required", "error", err)
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
