package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/moviex/internal/models"
)

// MovieService reads the public catalog.
type MovieService struct {
	api *APIService
}

// NewMovieService creates a [MovieService] on api.
func NewMovieService(api *APIService) *MovieService {
	return &MovieService{api: api}
}

// TopRated returns the highest rated movies.
//
// The endpoint answers either with a page object or a bare array depending on server version.
func (s *MovieService) TopRated(ctx context.Context, skip, limit int) (*models.MovieList, error) {
	resp, err := s.api.Get(ctx, "/movies/top-rated?"+paging(skip, limit).Encode())
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return decodeMovieList(resp.Body)
}

// Search finds movies matching q.
func (s *MovieService) Search(ctx context.Context, q models.SearchQuery) (*models.MovieList, error) {
	resp, err := s.api.Get(ctx, "/movies/search?"+q.Values().Encode())
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return decodeMovieList(resp.Body)
}

// ByID returns the movie with the given public id.
func (s *MovieService) ByID(ctx context.Context, movieID int64) (*models.Movie, error) {
	var m models.Movie
	if err := s.api.GetJSON(ctx, "/movies/by-id/"+strconv.FormatInt(movieID, 10), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Stats returns catalog aggregates.
func (s *MovieService) Stats(ctx context.Context) (*models.MovieStats, error) {
	var stats models.MovieStats
	if err := s.api.GetJSON(ctx, "/movies/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func paging(skip, limit int) url.Values {
	v := url.Values{}
	if skip > 0 {
		v.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

func decodeMovieList(body []byte) (*models.MovieList, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var items []models.Movie
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &models.MovieList{Items: items, Total: len(items)}, nil
	}

	var list models.MovieList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &list, nil
}

// RecommendationService reads personalised and similar-movie recommendations.
type RecommendationService struct {
	api *APIService
}

// NewRecommendationService creates a [RecommendationService] on api.
func NewRecommendationService(api *APIService) *RecommendationService {
	return &RecommendationService{api: api}
}

// ForUser returns recommendations for the signed-in user.
func (s *RecommendationService) ForUser(ctx context.Context, limit int) ([]models.Movie, error) {
	var movies []models.Movie
	if err := s.api.GetJSON(ctx, "/recommendations/user", paging(0, limit), &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// Similar returns movies similar to the movie with the given public id.
func (s *RecommendationService) Similar(ctx context.Context, movieID int64, limit int) ([]models.Movie, error) {
	var movies []models.Movie
	path := "/recommendations/similar/" + strconv.FormatInt(movieID, 10)
	if err := s.api.GetJSON(ctx, path, paging(0, limit), &movies); err != nil {
		return nil, err
	}
	return movies, nil
}
