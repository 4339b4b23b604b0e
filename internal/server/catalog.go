package server

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/desertthunder/moviex/internal/models"
)

var (
	errUsernameTaken   = errors.New("Nome de usuário já registrado")
	errEmailTaken      = errors.New("Email já registrado")
	errMovieNotFound   = errors.New("Filme não encontrado")
	errAlreadyFavorite = errors.New("Este filme já está nos favoritos")
	errNotFavorite     = errors.New("Filme não encontrado nos favoritos")
	errNoTasteProfile  = errors.New("Adicione pelo menos um favorito para receber recomendações")
)

type account struct {
	user models.User
	hash string
}

// Catalog is an in-memory movie catalog with user accounts and favorites.
type Catalog struct {
	mu        sync.RWMutex
	movies    []models.Movie
	byID      map[int64]int
	byMovieID map[int64]int
	accounts  map[string]*account
	users     map[int64]*account
	nextUser  int64
	favorites map[int64][]int64
}

// NewCatalog creates a [Catalog] holding movies.
func NewCatalog(movies []models.Movie) *Catalog {
	c := &Catalog{
		byID:      make(map[int64]int, len(movies)),
		byMovieID: make(map[int64]int, len(movies)),
		accounts:  make(map[string]*account),
		users:     make(map[int64]*account),
		favorites: make(map[int64][]int64),
	}
	for _, m := range movies {
		c.byID[m.ID] = len(c.movies)
		c.byMovieID[m.MovieID] = len(c.movies)
		c.movies = append(c.movies, m)
	}
	return c
}

// Register creates an account. Usernames and e-mail addresses are unique.
func (c *Catalog) Register(username string, email *string, password string) (models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.accounts[username]; ok {
		return models.User{}, errUsernameTaken
	}
	if email != nil {
		for _, a := range c.accounts {
			if a.user.Email != nil && strings.EqualFold(*a.user.Email, *email) {
				return models.User{}, errEmailTaken
			}
		}
	}

	c.nextUser++
	a := &account{
		user: models.User{ID: c.nextUser, Username: username, Email: email, IsActive: true},
		hash: hash,
	}
	c.accounts[username] = a
	c.users[a.user.ID] = a
	return a.user, nil
}

// Authenticate checks a username and password pair.
func (c *Catalog) Authenticate(username, password string) (models.User, bool) {
	c.mu.RLock()
	a, ok := c.accounts[username]
	c.mu.RUnlock()
	if !ok || !a.user.IsActive || !checkPassword(a.hash, password) {
		return models.User{}, false
	}
	return a.user, true
}

// User returns the account with id.
func (c *Catalog) User(id int64) (models.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.users[id]
	if !ok {
		return models.User{}, false
	}
	return a.user, true
}

// ByMovieID looks a movie up by its public id.
func (c *Catalog) ByMovieID(movieID int64) (models.Movie, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byMovieID[movieID]
	if !ok {
		return models.Movie{}, false
	}
	return c.movies[i], true
}

// TopRated returns movies ordered by average rating, then by vote count.
func (c *Catalog) TopRated(skip, limit int) []models.Movie {
	c.mu.RLock()
	ranked := append([]models.Movie(nil), c.movies...)
	c.mu.RUnlock()

	sortByRating(ranked)
	return page(ranked, skip, limit)
}

// Search filters by title substring, year and genres. A movie matches the genre filter if it carries any of them.
func (c *Catalog) Search(title string, year int, genres []string, skip, limit int) models.MovieList {
	title = strings.ToLower(strings.TrimSpace(title))

	c.mu.RLock()
	var matches []models.Movie
	for _, m := range c.movies {
		if title != "" && !strings.Contains(strings.ToLower(m.Title), title) {
			continue
		}
		if year > 0 && (m.Year == nil || *m.Year != year) {
			continue
		}
		if len(genres) > 0 && !hasAnyGenre(m, genres) {
			continue
		}
		matches = append(matches, m)
	}
	c.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Title < matches[j].Title })
	return models.MovieList{Items: page(matches, skip, limit), Total: len(matches)}
}

// Stats computes catalog-wide aggregates with the five largest genres.
func (c *Catalog) Stats() models.MovieStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var stats models.MovieStats
	var weighted float64
	counts := make(map[string]int)
	for _, m := range c.movies {
		stats.TotalMovies++
		stats.TotalRatings += m.RatingCount
		weighted += m.AverageRating * float64(m.RatingCount)
		for _, g := range m.Genres {
			counts[g.Name]++
		}
	}
	if stats.TotalRatings > 0 {
		stats.AverageRating = weighted / float64(stats.TotalRatings)
	}

	for name, n := range counts {
		stats.TopGenres = append(stats.TopGenres, models.GenreCount{Name: name, MovieCount: n})
	}
	sort.Slice(stats.TopGenres, func(i, j int) bool {
		a, b := stats.TopGenres[i], stats.TopGenres[j]
		if a.MovieCount != b.MovieCount {
			return a.MovieCount > b.MovieCount
		}
		return a.Name < b.Name
	})
	if len(stats.TopGenres) > 5 {
		stats.TopGenres = stats.TopGenres[:5]
	}
	return stats
}

// Similar ranks other movies by the number of genres they share with the movie with movieID.
func (c *Catalog) Similar(movieID int64, limit int) ([]models.Movie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.byMovieID[movieID]
	if !ok {
		return nil, errMovieNotFound
	}
	return c.rankByGenresLocked(c.movies[i].GenreNames(), map[int64]bool{c.movies[i].ID: true}, limit), nil
}

// Recommend suggests movies sharing genres with the user's favorites.
func (c *Catalog) Recommend(userID int64, limit int) ([]models.Movie, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	favs := c.favorites[userID]
	if len(favs) == 0 {
		return nil, errNoTasteProfile
	}

	exclude := make(map[int64]bool, len(favs))
	var genres []string
	for _, id := range favs {
		exclude[id] = true
		genres = append(genres, c.movies[c.byID[id]].GenreNames()...)
	}
	return c.rankByGenresLocked(genres, exclude, limit), nil
}

func (c *Catalog) rankByGenresLocked(genres []string, exclude map[int64]bool, limit int) []models.Movie {
	type scored struct {
		movie  models.Movie
		shared int
	}

	var candidates []scored
	for _, m := range c.movies {
		if exclude[m.ID] {
			continue
		}
		n := 0
		for _, g := range genres {
			if m.HasGenre(g) {
				n++
			}
		}
		if n > 0 {
			candidates = append(candidates, scored{m, n})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].shared != candidates[j].shared {
			return candidates[i].shared > candidates[j].shared
		}
		return candidates[i].movie.AverageRating > candidates[j].movie.AverageRating
	})

	out := make([]models.Movie, 0, len(candidates))
	for _, s := range candidates {
		out = append(out, s.movie)
	}
	return page(out, 0, limit)
}

// Favorites returns the user's favorites in the order they were added.
func (c *Catalog) Favorites(userID int64) []models.Movie {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Movie, 0, len(c.favorites[userID]))
	for _, id := range c.favorites[userID] {
		out = append(out, c.movies[c.byID[id]])
	}
	return out
}

// AddFavorite adds the movie with internal id to the user's favorites.
func (c *Catalog) AddFavorite(userID, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return errMovieNotFound
	}
	for _, fav := range c.favorites[userID] {
		if fav == id {
			return errAlreadyFavorite
		}
	}
	c.favorites[userID] = append(c.favorites[userID], id)
	return nil
}

// RemoveFavorite removes the movie with internal id from the user's favorites.
func (c *Catalog) RemoveFavorite(userID, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	favs := c.favorites[userID]
	for i, fav := range favs {
		if fav == id {
			c.favorites[userID] = append(favs[:i:i], favs[i+1:]...)
			return nil
		}
	}
	return errNotFavorite
}

func sortByRating(movies []models.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		if movies[i].AverageRating != movies[j].AverageRating {
			return movies[i].AverageRating > movies[j].AverageRating
		}
		return movies[i].RatingCount > movies[j].RatingCount
	})
}

func hasAnyGenre(m models.Movie, genres []string) bool {
	for _, g := range genres {
		if m.HasGenre(g) {
			return true
		}
	}
	return false
}

func page(movies []models.Movie, skip, limit int) []models.Movie {
	if skip >= len(movies) {
		return []models.Movie{}
	}
	movies = movies[skip:]
	if limit > 0 && limit < len(movies) {
		movies = movies[:limit]
	}
	return movies
}
