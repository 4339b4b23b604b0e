package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
)

// Export writes the details of many movies concurrently, one file set per movie plus a manifest.
//
// Movies come from the "ids" argument, the top rated list (--top) or the favorites (--favorites).
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ids, err := r.exportIDs(ctx, cmd)
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	r.logger.Info("starting export", "movies", len(ids), "format", format, "workers", opts.NumWorkers)

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	exporter := tasks.NewExporter(r.movies, r.cacher())
	result, err := exporter.BulkExport(ctx, progress, ids, opts)
	close(progress)
	wg.Wait()

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainln("✓ Exported %d/%d movie(s) to %s", result.SuccessfulExports, result.TotalMovies, result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		r.writePlain("✗ %d movie(s) failed\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  %d: %s\n", res.MovieID, describeError(res.Error))
			}
		}
	}
	return nil
}

func (r *Runner) exportIDs(ctx context.Context, cmd *cli.Command) ([]int64, error) {
	switch {
	case cmd.Bool("favorites"):
		movies, err := r.loadFavorites(ctx)
		if err != nil {
			return nil, err
		}
		return publicIDs(movies), nil
	case cmd.Int("top") > 0:
		r.hydrate(ctx)
		list, err := r.movies.TopRated(ctx, 0, int(cmd.Int("top")))
		if err != nil {
			return nil, fmt.Errorf("failed to load top rated movies: %w", err)
		}
		return publicIDs(list.Items), nil
	case cmd.StringArg("ids") != "":
		r.hydrate(ctx)
		return shared.ParseIDs(cmd.StringArg("ids"))
	default:
		return nil, fmt.Errorf("%w: pass movie ids, --top or --favorites", shared.ErrMissingArgument)
	}
}

func publicIDs(movies []models.Movie) []int64 {
	ids := make([]int64, len(movies))
	for i, m := range movies {
		ids[i] = m.MovieID
	}
	return ids
}
