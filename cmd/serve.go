package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/server"
)

// Serve runs the in-memory catalog API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog := server.NewCatalog(server.SeedMovies())
	srv := server.New(catalog, cfg.JWTSecret, r.logger)

	r.writePlain("Serving catalog API on http://%s%s\n", cfg.Addr(), server.APIPrefix)
	if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	r.logger.Info("server shut down")
	return nil
}
