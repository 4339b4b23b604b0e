package server

import (
	"strings"

	"github.com/desertthunder/moviex/internal/models"
)

const firstInternalID = 101

type seedMovie struct {
	movieID int64
	title   string
	year    int
	imdb    string
	tmdb    string
	genres  string
	avg     float64
	count   int
}

var seedMovies = []seedMovie{
	{1, "Toy Story", 1995, "0114709", "862", "Adventure|Animation|Children|Comedy|Fantasy", 3.92, 215},
	{2, "Jumanji", 1995, "0113497", "8844", "Adventure|Children|Fantasy", 3.43, 110},
	{6, "Heat", 1995, "0113277", "949", "Action|Crime|Thriller", 3.95, 102},
	{32, "Twelve Monkeys", 1995, "0114746", "63", "Mystery|Sci-Fi|Thriller", 3.98, 177},
	{47, "Se7en", 1995, "0114369", "807", "Mystery|Thriller", 3.98, 203},
	{50, "The Usual Suspects", 1995, "0114814", "629", "Crime|Mystery|Thriller", 4.24, 204},
	{110, "Braveheart", 1995, "0112573", "197", "Action|Drama|War", 4.03, 237},
	{260, "Star Wars: Episode IV - A New Hope", 1977, "0076759", "11", "Action|Adventure|Sci-Fi", 4.23, 251},
	{296, "Pulp Fiction", 1994, "0110912", "680", "Comedy|Crime|Drama|Thriller", 4.20, 307},
	{318, "The Shawshank Redemption", 1994, "0111161", "278", "Crime|Drama", 4.43, 317},
	{356, "Forrest Gump", 1994, "0109830", "13", "Comedy|Drama|Romance|War", 4.16, 329},
	{593, "The Silence of the Lambs", 1991, "0102926", "274", "Crime|Horror|Thriller", 4.16, 279},
	{858, "The Godfather", 1972, "0068646", "238", "Crime|Drama", 4.29, 192},
	{1196, "Star Wars: Episode V - The Empire Strikes Back", 1980, "0080684", "1891", "Action|Adventure|Sci-Fi", 4.22, 211},
	{2571, "The Matrix", 1999, "0133093", "603", "Action|Sci-Fi|Thriller", 4.19, 278},
	{2959, "Fight Club", 1999, "0137523", "550", "Action|Crime|Drama|Thriller", 4.27, 218},
}

// SeedMovies returns a small fixed catalog. Internal ids are assigned in order starting at 101 and differ from the public movie ids.
func SeedMovies() []models.Movie {
	genreIDs := make(map[string]int64)
	movies := make([]models.Movie, 0, len(seedMovies))
	for i, s := range seedMovies {
		year := s.year
		m := models.Movie{
			ID:            int64(firstInternalID + i),
			MovieID:       s.movieID,
			Title:         s.title,
			Year:          &year,
			IMDBID:        s.imdb,
			TMDBID:        s.tmdb,
			AverageRating: s.avg,
			RatingCount:   s.count,
		}
		for _, name := range strings.Split(s.genres, "|") {
			id, ok := genreIDs[name]
			if !ok {
				id = int64(len(genreIDs) + 1)
				genreIDs[name] = id
			}
			m.Genres = append(m.Genres, models.Genre{ID: id, Name: name})
		}
		movies = append(movies, m)
	}
	return movies
}
