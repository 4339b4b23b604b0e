package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/moviex/internal/models"
)

// CachedMovie is a movie read back from the cache with the time it was stored.
type CachedMovie struct {
	models.Movie
	CachedAt time.Time
}

// MovieRepository caches movie details keyed by the public movie id.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new [MovieRepository] with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// Upsert stores a movie, replacing any cached copy.
func (r *MovieRepository) Upsert(ctx context.Context, m models.Movie) error {
	if m.MovieID <= 0 {
		return fmt.Errorf("cannot cache movie without movie_id")
	}

	genres, err := json.Marshal(m.Genres)
	if err != nil {
		return fmt.Errorf("failed to encode genres: %w", err)
	}

	var year sql.NullInt64
	if m.Year != nil {
		year = sql.NullInt64{Int64: int64(*m.Year), Valid: true}
	}

	query := `
		INSERT INTO movies (movie_id, id, title, year, imdb_id, tmdb_id, genres, average_rating, rating_count, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(movie_id) DO UPDATE SET
			id = excluded.id,
			title = excluded.title,
			year = excluded.year,
			imdb_id = excluded.imdb_id,
			tmdb_id = excluded.tmdb_id,
			genres = excluded.genres,
			average_rating = excluded.average_rating,
			rating_count = excluded.rating_count,
			cached_at = excluded.cached_at
	`
	_, err = r.db.ExecContext(ctx, query,
		m.MovieID, m.ID, m.Title, year, m.IMDBID, m.TMDBID, string(genres), m.AverageRating, m.RatingCount)
	if err != nil {
		return fmt.Errorf("failed to cache movie %d: %w", m.MovieID, err)
	}
	return nil
}

// CacheMovies stores every movie, stopping at the first failure.
func (r *MovieRepository) CacheMovies(ctx context.Context, movies []models.Movie) error {
	for _, m := range movies {
		if err := r.Upsert(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the cached movie with the given public id, or (nil, nil) when it is not cached.
func (r *MovieRepository) Get(ctx context.Context, movieID int64) (*CachedMovie, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT movie_id, id, title, year, imdb_id, tmdb_id, genres, average_rating, rating_count, cached_at
		FROM movies WHERE movie_id = ?
	`, movieID)

	m, err := scanMovie(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movie %d: %w", movieID, err)
	}
	return m, nil
}

// List returns cached movies ordered by title. A non-positive limit returns all rows.
func (r *MovieRepository) List(ctx context.Context, limit int) ([]CachedMovie, error) {
	query := `
		SELECT movie_id, id, title, year, imdb_id, tmdb_id, genres, average_rating, rating_count, cached_at
		FROM movies ORDER BY title
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []CachedMovie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}
	return movies, nil
}

// Delete removes a cached movie.
func (r *MovieRepository) Delete(ctx context.Context, movieID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE movie_id = ?`, movieID); err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", movieID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (*CachedMovie, error) {
	var (
		m        CachedMovie
		year     sql.NullInt64
		imdbID   sql.NullString
		tmdbID   sql.NullString
		genres   string
		cachedAt time.Time
	)

	if err := s.Scan(&m.MovieID, &m.ID, &m.Title, &year, &imdbID, &tmdbID, &genres,
		&m.AverageRating, &m.RatingCount, &cachedAt); err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int64)
		m.Year = &y
	}
	m.IMDBID = imdbID.String
	m.TMDBID = tmdbID.String
	m.CachedAt = cachedAt

	if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
		return nil, fmt.Errorf("failed to decode genres: %w", err)
	}
	return &m, nil
}
