package models

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Genre is a named category attached to movies.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie is a catalog title.
//
// ID is the catalog's internal key (used by favorites), MovieID the public id used by detail and similar-movie lookups.
type Movie struct {
	ID            int64   `json:"id"`
	MovieID       int64   `json:"movie_id"`
	Title         string  `json:"title"`
	Year          *int    `json:"year,omitempty"`
	IMDBID        string  `json:"imdb_id,omitempty"`
	TMDBID        string  `json:"tmdb_id,omitempty"`
	Genres        []Genre `json:"genres"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
}

// GenreNames returns the genre names in order.
func (m Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// YearString returns the release year or "" when unknown.
func (m Movie) YearString() string {
	if m.Year == nil {
		return ""
	}
	return strconv.Itoa(*m.Year)
}

// HasGenre reports whether the movie is tagged with name (case-insensitive).
func (m Movie) HasGenre(name string) bool {
	for _, g := range m.Genres {
		if strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

// MovieList is a page of movies with the total number of matches.
type MovieList struct {
	Items []Movie `json:"items"`
	Total int     `json:"total"`
}

// GenreCount is the number of movies tagged with a genre.
type GenreCount struct {
	Name       string `json:"name"`
	MovieCount int    `json:"movie_count"`
}

// MovieStats holds catalog-wide aggregates.
type MovieStats struct {
	TotalMovies   int          `json:"total_movies"`
	TotalRatings  int          `json:"total_ratings"`
	AverageRating float64      `json:"average_rating"`
	TopGenres     []GenreCount `json:"top_genres"`
}

// MovieExport is a named list of movies written to disk by the exporters.
type MovieExport struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
	Movies      []Movie   `json:"movies"`
}

// SearchQuery holds the filters of GET /movies/search.
type SearchQuery struct {
	Title  string
	Year   int
	Genres []string
	Skip   int
	Limit  int
}

// Values encodes the query. Zero-valued filters are omitted.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	if t := strings.TrimSpace(q.Title); t != "" {
		v.Set("title", t)
	}
	if q.Year > 0 {
		v.Set("year", strconv.Itoa(q.Year))
	}

	var genres []string
	for _, g := range q.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	switch len(genres) {
	case 0:
	case 1:
		v.Set("genre", genres[0])
	default:
		for _, g := range genres {
			v.Add("genres", g)
		}
	}

	if q.Skip > 0 {
		v.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// IsEmpty reports whether no filter is set.
func (q SearchQuery) IsEmpty() bool {
	v := q.Values()
	v.Del("skip")
	v.Del("limit")
	return len(v) == 0
}
