package services

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moviex/internal/models"
)

// FavoritesService manages the signed-in user's favorites.
//
// Favorites are keyed by the catalog's internal movie id ([models.Movie.ID]). The service keeps the
// last fetched list so [FavoritesService.IsFavorite] answers without a round trip; Add and Remove refresh it.
type FavoritesService struct {
	api    *APIService
	logger *log.Logger

	mu     sync.RWMutex
	movies []models.Movie
	ids    map[int64]struct{}
}

// NewFavoritesService creates a [FavoritesService] on api. A nil logger discards output.
func NewFavoritesService(api *APIService, logger *log.Logger) *FavoritesService {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FavoritesService{api: api, logger: logger, ids: map[int64]struct{}{}}
}

// List fetches the favorites and replaces the local set.
func (s *FavoritesService) List(ctx context.Context) ([]models.Movie, error) {
	var movies []models.Movie
	if err := s.api.GetJSON(ctx, "/favorites/", nil, &movies); err != nil {
		return nil, err
	}
	s.replace(movies)
	return movies, nil
}

// Add marks a movie as favorite and refreshes the local set.
func (s *FavoritesService) Add(ctx context.Context, id int64) error {
	if err := s.api.PostJSON(ctx, "/favorites/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return err
	}
	s.refresh(ctx)
	return nil
}

// Remove unmarks a movie and refreshes the local set.
func (s *FavoritesService) Remove(ctx context.Context, id int64) error {
	if err := s.api.DeleteJSON(ctx, "/favorites/"+strconv.FormatInt(id, 10)); err != nil {
		return err
	}
	s.refresh(ctx)
	return nil
}

// Toggle adds the movie when it is not in the local set and removes it otherwise.
// It reports whether the movie is a favorite afterwards.
func (s *FavoritesService) Toggle(ctx context.Context, id int64) (bool, error) {
	if s.IsFavorite(id) {
		return false, s.Remove(ctx, id)
	}
	return true, s.Add(ctx, id)
}

// IsFavorite reports membership in the last fetched list.
func (s *FavoritesService) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Cached returns a copy of the last fetched list.
func (s *FavoritesService) Cached() []models.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Movie(nil), s.movies...)
}

// Reset empties the local set, e.g. after logout.
func (s *FavoritesService) Reset() {
	s.replace(nil)
}

// refresh reloads the list; a failure keeps the previous set.
func (s *FavoritesService) refresh(ctx context.Context) {
	if _, err := s.List(ctx); err != nil {
		s.logger.Warn("failed to refresh favorites", "error", err)
	}
}

func (s *FavoritesService) replace(movies []models.Movie) {
	ids := make(map[int64]struct{}, len(movies))
	for _, m := range movies {
		ids[m.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = movies
	s.ids = ids
}
