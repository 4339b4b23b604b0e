package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
)

// MovieCacher persists fetched movies. Implemented by repositories.MovieRepository.
type MovieCacher interface {
	Upsert(ctx context.Context, m models.Movie) error
}

// BulkExportOpts contains configuration for bulk movie exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: json, csv, markdown, txt
	OutputDir  string           // Base output directory (default: moviex_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 5, max: 10)
	RateLimit  float64          // Detail requests per second (default: 5)
}

// MovieExportResult is the outcome of exporting one movie.
type MovieExportResult struct {
	MovieID int64
	Movie   *models.Movie
	Success bool
	Files   []string
	Error   error

	index int
}

// BulkExportResult summarises a bulk export.
type BulkExportResult struct {
	TotalMovies       int
	SuccessfulExports int
	FailedExports     int
	Results           []MovieExportResult
	OutputDirectory   string
	ManifestPath      string
}

type exportJob struct {
	index int
	movie *models.Movie
}

// Exporter writes movie details to disk.
type Exporter struct {
	movies MovieSource
	cache  MovieCacher
}

// NewExporter creates an [Exporter]. cache may be nil.
func NewExporter(movies MovieSource, cache MovieCacher) *Exporter {
	return &Exporter{movies: movies, cache: cache}
}

// BulkExport exports the movies with the given public ids concurrently with rate limiting and progress tracking.
//
// Detail requests go through a token bucket; a pool of workers writes the files. Per-movie failures are recorded in
// the result and the manifest and do not stop the export. Results are in input order.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []int64,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.movies == nil {
		return nil, fmt.Errorf("exporter has no movie source")
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("moviex_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalMovies:     len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]MovieExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(ids))
	results := make(chan MovieExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	// The producer owns the results channel alongside the workers, so the closer waits for both.
	var producer sync.WaitGroup
	producer.Add(1)
	go func() {
		defer producer.Done()
		defer close(jobs)

		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			sendProgress(prog, fetchingMovieUpdate(i+1, len(ids), id))
			movie, err := e.movies.ByID(ctx, id)
			if err != nil {
				results <- MovieExportResult{
					MovieID: id,
					Error:   fmt.Errorf("failed to fetch movie: %w", err),
					index:   i,
				}
				continue
			}

			if e.cache != nil {
				_ = e.cache.Upsert(ctx, *movie)
			}
			jobs <- exportJob{index: i, movie: movie}
		}
	}()

	go func() {
		producer.Wait()
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Movie, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), resultName(res), res.Error))
		}
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].index < result.Results[j].index })

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(buildManifest(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker is a worker goroutine that exports movies from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- MovieExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- exportSingleMovie(job, opts)
	}
}

// exportSingleMovie writes one movie as a single-entry list named after its title.
func exportSingleMovie(j exportJob, opts BulkExportOpts) MovieExportResult {
	result := MovieExportResult{
		MovieID: j.movie.MovieID,
		Movie:   j.movie,
		index:   j.index,
	}

	export := &models.MovieExport{
		Name:       j.movie.Title,
		ExportedAt: time.Now().UTC(),
		Movies:     []models.Movie{*j.movie},
	}

	files, err := formatter.Write(export, opts.Format, opts.OutputDir, strconv.FormatInt(j.movie.MovieID, 10))
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}
	result.Files = files
	result.Success = true
	return result
}

func buildManifest(r *BulkExportResult, format formatter.Format) formatter.Manifest {
	m := formatter.Manifest{
		Format:            format,
		CreatedAt:         time.Now().UTC(),
		TotalMovies:       r.TotalMovies,
		SuccessfulExports: r.SuccessfulExports,
		FailedExports:     r.FailedExports,
		Entries:           make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		files := make([]string, 0, len(res.Files))
		for _, f := range res.Files {
			if rel, err := filepath.Rel(r.OutputDirectory, f); err == nil {
				f = rel
			}
			files = append(files, f)
		}
		title := ""
		if res.Movie != nil {
			title = res.Movie.Title
		}
		m.Entries = append(m.Entries, formatter.NewManifestEntry(res.MovieID, title, files, res.Error))
	}
	return m
}

func resultName(r MovieExportResult) string {
	if r.Movie != nil {
		return r.Movie.Title
	}
	return fmt.Sprintf("movie %d", r.MovieID)
}
