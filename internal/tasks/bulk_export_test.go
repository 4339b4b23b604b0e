package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

type memoryCache struct {
	mu     sync.Mutex
	movies map[int64]models.Movie
}

func (c *memoryCache) Upsert(_ context.Context, m models.Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.movies == nil {
		c.movies = map[int64]models.Movie{}
	}
	c.movies[m.MovieID] = m
	return nil
}

func TestBulkExport(t *testing.T) {
	tests := []struct {
		name        string
		format      formatter.Format
		ids         []int64
		wantSuccess int
		wantFailed  int
		wantFiles   []string
	}{
		{
			name:        "single movie json export",
			format:      formatter.FormatJSON,
			ids:         []int64{1},
			wantSuccess: 1,
			wantFiles:   []string{"1.json"},
		},
		{
			name:        "multiple movies csv export",
			format:      formatter.FormatCSV,
			ids:         []int64{1, 2, 3},
			wantSuccess: 3,
			wantFiles:   []string{"1_movies.csv", "2_metadata.json", "3_movies.csv"},
		},
		{
			name:        "markdown export",
			format:      formatter.FormatMarkdown,
			ids:         []int64{2},
			wantSuccess: 1,
			wantFiles:   []string{filepath.Join("2", "README.md")},
		},
		{
			name:        "partial failure",
			format:      formatter.FormatText,
			ids:         []int64{1, 404, 3},
			wantSuccess: 2,
			wantFailed:  1,
			wantFiles:   []string{"1_movies.txt", "3_movies.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cache := &memoryCache{}
			e := NewExporter(newMockMovies(3), cache)

			progress := make(chan ProgressUpdate, 100)
			result, err := e.BulkExport(context.Background(), progress, tt.ids, BulkExportOpts{
				Format:     tt.format,
				OutputDir:  dir,
				NumWorkers: 2,
				RateLimit:  1000,
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.SuccessfulExports != tt.wantSuccess || result.FailedExports != tt.wantFailed {
				t.Errorf("expected %d/%d success/failed, got %d/%d", tt.wantSuccess, tt.wantFailed, result.SuccessfulExports, result.FailedExports)
			}
			if len(result.Results) != len(tt.ids) {
				t.Fatalf("expected %d results, got %d", len(tt.ids), len(result.Results))
			}
			for i, res := range result.Results {
				if res.MovieID != tt.ids[i] {
					t.Errorf("result %d is movie %d, want %d (input order)", i, res.MovieID, tt.ids[i])
				}
			}
			for _, f := range tt.wantFiles {
				if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
					t.Errorf("expected file %s: %v", f, err)
				}
			}

			if len(cache.movies) != tt.wantSuccess {
				t.Errorf("expected %d cached movies, got %d", tt.wantSuccess, len(cache.movies))
			}

			if result.ManifestPath != filepath.Join(dir, "export_manifest.json") {
				t.Errorf("unexpected manifest path %s", result.ManifestPath)
			}
			var manifest formatter.Manifest
			data, err := os.ReadFile(result.ManifestPath)
			if err != nil {
				t.Fatalf("failed to read manifest: %v", err)
			}
			if err := json.Unmarshal(data, &manifest); err != nil {
				t.Fatalf("invalid manifest: %v", err)
			}
			if manifest.Format != tt.format || manifest.TotalMovies != len(tt.ids) || len(manifest.Entries) != len(tt.ids) {
				t.Errorf("unexpected manifest %+v", manifest)
			}
			if len(drain(progress)) == 0 {
				t.Error("expected progress updates")
			}
		})
	}
}

func TestBulkExportFailures(t *testing.T) {
	t.Run("fetch error is recorded", func(t *testing.T) {
		movies := newMockMovies(2)
		movies.byIDErr[2] = shared.ErrNetworkFailure
		e := NewExporter(movies, nil)

		result, err := e.BulkExport(context.Background(), nil, []int64{1, 2}, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		failed := result.Results[1]
		if failed.Success || !errors.Is(failed.Error, shared.ErrNetworkFailure) {
			t.Errorf("expected network failure for movie 2, got %+v", failed)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := NewExporter(newMockMovies(3), nil)
		_, err := e.BulkExport(ctx, nil, []int64{1, 2, 3}, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		dir := t.TempDir()
		cwd, _ := os.Getwd()
		if err := os.Chdir(dir); err != nil {
			t.Fatal(err)
		}
		defer os.Chdir(cwd)

		result, err := NewExporter(newMockMovies(1), nil).BulkExport(context.Background(), nil, []int64{1}, BulkExportOpts{NumWorkers: 50})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.OutputDirectory == "" {
			t.Error("expected a default output directory")
		}
		if _, err := os.Stat(filepath.Join(result.OutputDirectory, "1.json")); err != nil {
			t.Errorf("expected default json export: %v", err)
		}
	})

	t.Run("missing source", func(t *testing.T) {
		if _, err := (&Exporter{}).BulkExport(context.Background(), nil, []int64{1}, BulkExportOpts{}); err == nil {
			t.Error("expected error without movie source")
		}
	})
}
