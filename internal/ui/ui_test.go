package ui

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/navigation"
	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/session"
	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
)

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, username, password string) (*models.AuthResponse, error) {
	if password != "secret1" {
		return nil, shared.ErrAuthFailure
	}
	return &models.AuthResponse{AccessToken: "tok", TokenType: "bearer"}, nil
}

func (stubAuth) Register(_ context.Context, req models.RegisterRequest) (*models.User, error) {
	return &models.User{ID: 1, Username: req.Username}, nil
}

func (stubAuth) Me(context.Context) (*models.User, error) {
	return &models.User{ID: 1, Username: "ana", IsActive: true}, nil
}

type stubCatalog struct{}

func (stubCatalog) Search(_ context.Context, q models.SearchQuery) (*models.MovieList, error) {
	return &models.MovieList{Items: []models.Movie{{ID: 101, MovieID: 1, Title: "Toy Story"}}, Total: 1}, nil
}

func (stubCatalog) ByID(_ context.Context, id int64) (*models.Movie, error) {
	return &models.Movie{ID: 100 + id, MovieID: id, Title: "Toy Story", IMDBID: "0114709"}, nil
}

func (stubCatalog) Similar(context.Context, int64, int) ([]models.Movie, error) {
	return []models.Movie{{ID: 102, MovieID: 2, Title: "Jumanji"}}, nil
}

type stubFavorites struct{ ids map[int64]bool }

func (f *stubFavorites) List(context.Context) ([]models.Movie, error) { return nil, nil }
func (f *stubFavorites) Toggle(_ context.Context, id int64) (bool, error) {
	f.ids[id] = !f.ids[id]
	return f.ids[id], nil
}
func (f *stubFavorites) IsFavorite(id int64) bool { return f.ids[id] }
func (f *stubFavorites) Reset()                  { f.ids = map[int64]bool{} }

type stubDashboard struct{}

func (stubDashboard) Load(context.Context, chan<- tasks.ProgressUpdate) (*tasks.DashboardData, error) {
	return &tasks.DashboardData{TopRated: []models.Movie{{ID: 101, MovieID: 1, Title: "Toy Story"}}}, nil
}

type harness struct {
	model *Model
	nav   *navigation.Tracker
	store *session.Store
	favs  *stubFavorites
}

func newHarness(t *testing.T, creds map[string]string) *harness {
	t.Helper()
	nav := navigation.NewTracker(navigation.Home)
	store := session.New(stubAuth{}, repositories.NewMemoryStore(creds), nav, log.New(io.Discard))
	favs := &stubFavorites{ids: map[int64]bool{}}

	m := NewModel(context.Background(), Deps{
		Session:   store,
		Router:    nav,
		Catalog:   stubCatalog{},
		Similar:   stubCatalog{},
		Favorites: favs,
		Dashboard: stubDashboard{},
	})
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	t.Cleanup(func() {
		m.Close()
		store.Close()
	})
	return &harness{model: m, nav: nav, store: store, favs: favs}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLocationDrivesView(t *testing.T) {
	h := newHarness(t, nil)

	cases := []struct {
		loc  string
		want ViewState
	}{
		{navigation.Search, SearchView},
		{navigation.MovieView(1), DetailView},
		{navigation.Favorites, FavoritesView},
		{navigation.LoginRedirect(navigation.Favorites), LoginView},
		{navigation.Home, HomeView},
	}
	for _, tc := range cases {
		h.model.Update(locationChangedMsg(tc.loc))
		if got := h.model.ViewState(); got != tc.want {
			t.Errorf("location %s: view = %d, want %d", tc.loc, got, tc.want)
		}
	}
}

func TestLoginView(t *testing.T) {
	h := newHarness(t, nil)

	h.model.Update(locationChangedMsg(navigation.LoginRedirect(navigation.Favorites)))
	out := h.model.View()
	if !strings.Contains(out, "Sign-in required") || !strings.Contains(out, "/favorites") {
		t.Errorf("expected sign-in view with return target, got:\n%s", out)
	}

	h.model.Update(loginDoneMsg{user: &models.User{Username: "ana"}})
	if h.nav.Location() != navigation.Favorites {
		t.Errorf("expected navigation back to /favorites, got %s", h.nav.Location())
	}

	h.model.Update(loginDoneMsg{err: shared.ErrAuthFailure})
	if !strings.Contains(h.model.View(), "Sign-in failed") {
		t.Error("expected sign-in failure status")
	}
}

func TestHeaderFollowsSession(t *testing.T) {
	h := newHarness(t, nil)

	if !strings.Contains(h.model.View(), "not signed in") {
		t.Error("expected anonymous header")
	}

	h.model.Update(userChangedMsg{user: &models.User{Username: "ana"}})
	if !strings.Contains(h.model.View(), "signed in as ana") {
		t.Error("expected header with user")
	}

	h.favs.ids[101] = true
	h.model.Update(userChangedMsg{user: nil})
	if h.favs.IsFavorite(101) {
		t.Error("signing out should reset the favorite set")
	}
}

func TestGuardedFavorites(t *testing.T) {
	t.Run("anonymous is sent to login", func(t *testing.T) {
		h := newHarness(t, nil)
		h.model.Update(runes("v"))
		if want := navigation.LoginRedirect(navigation.Favorites); h.nav.Location() != want {
			t.Errorf("expected %s, got %s", want, h.nav.Location())
		}
	})

	t.Run("signed in opens favorites", func(t *testing.T) {
		h := newHarness(t, map[string]string{repositories.TokenKey: "tok"})
		h.model.Update(runes("v"))
		if h.nav.Location() != navigation.Favorites {
			t.Errorf("expected /favorites, got %s", h.nav.Location())
		}
	})
}

func TestDashboardAndDetail(t *testing.T) {
	h := newHarness(t, map[string]string{repositories.TokenKey: "tok"})

	h.model.Update(dashboardLoadedMsg{data: &tasks.DashboardData{
		TopRated: []models.Movie{{ID: 101, MovieID: 1, Title: "Toy Story"}},
		Warnings: []tasks.Warning{{Phase: tasks.LoadStats, Err: shared.ErrNetworkFailure}},
	}})
	out := h.model.View()
	if !strings.Contains(out, "Toy Story") || !strings.Contains(out, "stats unavailable") {
		t.Errorf("expected top rated and warning, got:\n%s", out)
	}

	h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if h.nav.Location() != navigation.MovieView(1) {
		t.Fatalf("expected detail location, got %s", h.nav.Location())
	}

	h.model.Update(locationChangedMsg(navigation.MovieView(1)))
	movie, _ := stubCatalog{}.ByID(context.Background(), 1)
	h.model.Update(detailLoadedMsg{movieID: 1, movie: movie})
	if !strings.Contains(h.model.View(), "https://www.imdb.com/title/tt0114709/") {
		t.Error("expected IMDb link on detail view")
	}

	h.model.Update(favoriteToggledMsg{movie: *movie, favorite: true})
	if !strings.Contains(h.model.View(), "Added Toy Story to favorites") {
		t.Error("expected favorite status")
	}
}

func TestMovieItem(t *testing.T) {
	year := 1995
	item := movieItem{
		movie:    models.Movie{Title: "Toy Story", Year: &year, Genres: []models.Genre{{Name: "Comedy"}}, AverageRating: 3.92, RatingCount: 215},
		favorite: true,
	}
	if item.Title() != "★ Toy Story (1995)" {
		t.Errorf("Title() = %q", item.Title())
	}
	if item.Description() != "3.92 (215 ratings) • Comedy" {
		t.Errorf("Description() = %q", item.Description())
	}
	if item.FilterValue() != "Toy Story" {
		t.Errorf("FilterValue() = %q", item.FilterValue())
	}
}
