package tasks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/navigation"
)

// MovieSource reads the public catalog.
type MovieSource interface {
	TopRated(ctx context.Context, skip, limit int) (*models.MovieList, error)
	Stats(ctx context.Context) (*models.MovieStats, error)
	ByID(ctx context.Context, movieID int64) (*models.Movie, error)
}

// RecommendationSource reads personalised recommendations.
type RecommendationSource interface {
	ForUser(ctx context.Context, limit int) ([]models.Movie, error)
}

// FavoritesSource lists the signed-in user's favorites.
type FavoritesSource interface {
	List(ctx context.Context) ([]models.Movie, error)
}

// Warning records a secondary section that failed to load.
type Warning struct {
	Phase Phase
	Err   error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s unavailable: %v", sectionName(w.Phase), w.Err)
}

// DashboardData is the loaded home screen. Failed secondary sections are empty.
type DashboardData struct {
	TopRated        []models.Movie
	Stats           *models.MovieStats
	Recommendations []models.Movie
	Favorites       []models.Movie
	Warnings        []Warning
}

// Dashboard loads the home screen.
type Dashboard struct {
	Movies          MovieSource
	Recommendations RecommendationSource
	Favorites       FavoritesSource
	Auth            navigation.Authenticator
	Limit           int
}

// Load fetches every section concurrently. Only a top-rated failure is returned as an error.
func (d *Dashboard) Load(ctx context.Context, progress chan<- ProgressUpdate) (*DashboardData, error) {
	if d.Movies == nil {
		return nil, fmt.Errorf("dashboard has no movie source")
	}
	limit := d.Limit
	if limit <= 0 {
		limit = 10
	}

	signedIn := d.Auth != nil && d.Auth.IsAuthenticated(ctx)
	loadRecs := signedIn && d.Recommendations != nil
	loadFavs := signedIn && d.Favorites != nil
	total := 2
	if loadRecs {
		total++
	}
	if loadFavs {
		total++
	}

	data := &DashboardData{}
	var (
		mu   sync.Mutex
		step int
	)
	done := func(phase Phase, count int, err error) {
		mu.Lock()
		defer mu.Unlock()
		step++
		if err != nil {
			sendProgress(progress, sectionFailedUpdate(phase, step, total, err))
			if phase != LoadTopRated {
				data.Warnings = append(data.Warnings, Warning{Phase: phase, Err: err})
			}
			return
		}
		sendProgress(progress, sectionLoadedUpdate(phase, step, total, count))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := d.Movies.TopRated(gctx, 0, limit)
		done(LoadTopRated, listLen(list), err)
		if err != nil {
			return fmt.Errorf("failed to load top rated movies: %w", err)
		}
		mu.Lock()
		data.TopRated = list.Items
		mu.Unlock()
		return nil
	})

	// Secondary sections run on ctx; a primary failure must not cancel them.
	g.Go(func() error {
		stats, err := d.Movies.Stats(ctx)
		count := 0
		if stats != nil {
			count = stats.TotalMovies
		}
		done(LoadStats, count, err)
		if err == nil {
			mu.Lock()
			data.Stats = stats
			mu.Unlock()
		}
		return nil
	})

	if loadRecs {
		g.Go(func() error {
			movies, err := d.Recommendations.ForUser(ctx, limit)
			done(LoadRecommendations, len(movies), err)
			if err == nil {
				mu.Lock()
				data.Recommendations = movies
				mu.Unlock()
			}
			return nil
		})
	}

	if loadFavs {
		g.Go(func() error {
			movies, err := d.Favorites.List(ctx)
			done(LoadFavorites, len(movies), err)
			if err == nil {
				mu.Lock()
				data.Favorites = movies
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

func listLen(l *models.MovieList) int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}
