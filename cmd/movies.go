package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/navigation"
	"github.com/desertthunder/moviex/internal/shared"
)

// MoviesTop lists the best rated movies and caches them locally.
func (r *Runner) MoviesTop(ctx context.Context, cmd *cli.Command) error {
	r.hydrate(ctx)

	list, err := r.movies.TopRated(ctx, int(cmd.Int("skip")), int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to load top rated movies: %w", err)
	}
	r.cacheMovies(ctx, list.Items)

	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Top rated")
	r.writeMovies(list.Items)
	return nil
}

// MoviesSearch searches the catalog by title, year and genres.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	q := models.SearchQuery{
		Title:  strings.TrimSpace(cmd.StringArg("title")),
		Year:   int(cmd.Int("year")),
		Genres: cmd.StringSlice("genre"),
		Skip:   int(cmd.Int("skip")),
		Limit:  int(cmd.Int("limit")),
	}
	if q.Title == "" && q.Year == 0 && len(q.Genres) == 0 {
		return fmt.Errorf("%w: provide a title, --year or --genre", shared.ErrMissingArgument)
	}

	r.hydrate(ctx)
	r.logger.Info("searching movies", "title", q.Title, "year", q.Year, "genres", q.Genres)

	list, err := r.movies.Search(ctx, q)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%d result(s)", list.Total))
	r.writeMovies(list.Items)
	return nil
}

// MoviesShow prints one movie. When the API is unreachable the cached copy is shown instead.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	movieID, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	r.hydrate(ctx)
	r.nav.Navigate(navigation.MovieView(movieID))

	movie, err := r.movies.ByID(ctx, movieID)
	switch {
	case err == nil:
		r.cacheMovies(ctx, []models.Movie{*movie})
	case errors.Is(err, shared.ErrNetworkFailure) && r.cache != nil:
		cached, cacheErr := r.cache.Get(ctx, movieID)
		if cacheErr != nil || cached == nil {
			return fmt.Errorf("failed to load movie %d: %w", movieID, err)
		}
		r.logger.Warn("API unreachable, showing cached movie", "movie_id", movieID, "cached_at", cached.CachedAt)
		movie = &cached.Movie
	default:
		return fmt.Errorf("failed to load movie %d: %w", movieID, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, cmd.Bool("pretty"))
	}

	r.writeMovieDetail(movie)

	if cmd.Bool("open") {
		url := shared.IMDbURL(movie.IMDBID)
		if url == "" {
			return fmt.Errorf("%w: movie %d has no IMDb id", shared.ErrInvalidArgument, movieID)
		}
		if err := shared.OpenBrowser(url); err != nil {
			return err
		}
	}
	return nil
}

// MoviesStats prints catalog-wide statistics.
func (r *Runner) MoviesStats(ctx context.Context, cmd *cli.Command) error {
	r.hydrate(ctx)

	stats, err := r.movies.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Catalog")
	r.writePlain("Movies:  %d\n", stats.TotalMovies)
	r.writePlain("Ratings: %s\n", shared.FormatRating(stats.AverageRating, stats.TotalRatings))
	if len(stats.TopGenres) > 0 {
		r.writePlainln("Top genres:")
		for _, g := range stats.TopGenres {
			r.writePlain("  %-12s %d\n", g.Name, g.MovieCount)
		}
	}
	return nil
}

// RecommendUser lists recommendations for the signed-in user.
func (r *Runner) RecommendUser(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx, navigation.Recommendations); err != nil {
		return err
	}

	movies, err := r.recs.ForUser(ctx, int(cmd.Int("limit")))
	if err != nil {
		return r.authError("failed to load recommendations", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Recommended for you")
	r.writeMovies(movies)
	return nil
}

// RecommendSimilar lists movies similar to the given one.
func (r *Runner) RecommendSimilar(ctx context.Context, cmd *cli.Command) error {
	movieID, err := movieIDArg(cmd)
	if err != nil {
		return err
	}

	r.hydrate(ctx)

	movies, err := r.recs.Similar(ctx, movieID, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to load similar movies: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Similar to movie %d", movieID))
	r.writeMovies(movies)
	return nil
}

// authError reports a failed authenticated request. A rejected credential sends the
// pipeline to the login view, which is surfaced as [shared.ErrNotAuthenticated].
func (r *Runner) authError(msg string, err error) error {
	if navigation.IsLogin(r.nav.Location()) {
		return fmt.Errorf("%w: %s: %v (run 'moviex auth login')", shared.ErrNotAuthenticated, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (r *Runner) cacheMovies(ctx context.Context, movies []models.Movie) {
	if r.cache == nil || len(movies) == 0 {
		return
	}
	if err := r.cache.CacheMovies(ctx, movies); err != nil {
		r.logger.Warn("failed to cache movies", "count", len(movies), "error", err)
	}
}

func (r *Runner) writeMovies(movies []models.Movie) {
	if len(movies) == 0 {
		r.writePlain("No movies\n")
		return
	}
	for i, m := range movies {
		r.writePlain("%3d. [%d] %s\n", i+1, m.MovieID, formatter.MovieLine(m))
	}
}

func (r *Runner) writeMovieDetail(m *models.Movie) {
	title := m.Title
	if y := m.YearString(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	r.writePlainHeader(title)
	r.writePlain("Movie ID: %d\n", m.MovieID)
	r.writePlain("Rating:   %s\n", shared.FormatRating(m.AverageRating, m.RatingCount))
	if len(m.Genres) > 0 {
		r.writePlain("Genres:   %s\n", strings.Join(m.GenreNames(), ", "))
	}
	if url := shared.IMDbURL(m.IMDBID); url != "" {
		r.writePlain("IMDb:     %s\n", url)
	}
	if m.TMDBID != "" {
		r.writePlain("TMDb:     https://www.themoviedb.org/movie/%s\n", m.TMDBID)
	}
}

// movieIDArg parses the "id" argument as a public movie id.
func movieIDArg(cmd *cli.Command) (int64, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	ids, err := shared.ParseIDs(raw)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, fmt.Errorf("%w: expected a single movie id, got %q", shared.ErrInvalidArgument, raw)
	}
	return ids[0], nil
}
