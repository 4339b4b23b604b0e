package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie    models.Movie
	favorite bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	title := i.movie.Title
	if y := i.movie.YearString(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	if i.favorite {
		title = "★ " + title
	}
	return title
}
func (i movieItem) Description() string {
	desc := shared.FormatRating(i.movie.AverageRating, i.movie.RatingCount)
	if len(i.movie.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.movie.GenreNames(), ", "))
	}
	return desc
}

func movieItems(movies []models.Movie, isFavorite func(int64) bool) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, favorite: isFavorite != nil && isFavorite(m.ID)}
	}
	return items
}

func newMovieList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

func selectedMovie(l list.Model) (models.Movie, bool) {
	item, ok := l.SelectedItem().(movieItem)
	if !ok {
		return models.Movie{}, false
	}
	return item.movie, true
}
