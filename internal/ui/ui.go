package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/navigation"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/session"
	"github.com/desertthunder/moviex/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	SearchView
	DetailView
	FavoritesView
	LoginView
)

// Session is the part of [session.Store] the TUI uses.
type Session interface {
	navigation.Authenticator
	Subscribe() *session.Subscription
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error
}

// Router is the navigation tracker the TUI follows.
type Router interface {
	navigation.Navigator
	Back() bool
	Listen() (<-chan string, func())
}

// Catalog reads movie details and search results.
type Catalog interface {
	Search(ctx context.Context, q models.SearchQuery) (*models.MovieList, error)
	ByID(ctx context.Context, movieID int64) (*models.Movie, error)
}

// Similar reads similar-movie recommendations.
type Similar interface {
	Similar(ctx context.Context, movieID int64, limit int) ([]models.Movie, error)
}

// Favorites manages the signed-in user's favorites.
type Favorites interface {
	List(ctx context.Context) ([]models.Movie, error)
	Toggle(ctx context.Context, id int64) (bool, error)
	IsFavorite(id int64) bool
	Reset()
}

// DashboardLoader loads the home view.
type DashboardLoader interface {
	Load(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.DashboardData, error)
}

// Deps are the collaborators of [Model].
type Deps struct {
	Session   Session
	Router    Router
	Catalog   Catalog
	Similar   Similar
	Favorites Favorites
	Dashboard DashboardLoader
}

// Model represents the TUI application state.
type Model struct {
	ctx  context.Context
	deps Deps

	view     ViewState
	location string
	width    int
	height   int

	home      list.Model
	results   list.Model
	favorites list.Model
	similar   list.Model
	query     textinput.Model
	username  textinput.Model
	password  textinput.Model

	dashboard *tasks.DashboardData
	detail    *models.Movie
	user      *models.User
	status    string
	err       error

	userSub *session.Subscription
	locCh   <-chan string
	stopLoc func()

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	query := textinput.New()
	query.Placeholder = "title"
	query.Prompt = "Search: "

	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &Model{
		ctx:       ctx,
		deps:      deps,
		location:  deps.Router.Location(),
		home:      newMovieList("Top Rated"),
		results:   newMovieList("Results"),
		favorites: newMovieList("Favorites"),
		similar:   newMovieList("Similar"),
		query:     query,
		username:  username,
		password:  password,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init subscribes to the session and the navigation tracker and loads the current location.
func (m *Model) Init() tea.Cmd {
	m.userSub = m.deps.Session.Subscribe()
	m.locCh, m.stopLoc = m.deps.Router.Listen()

	return tea.Batch(
		waitForUser(m.userSub),
		waitForLocation(m.locCh),
		m.applyLocation(m.location),
	)
}

// Close releases the subscriptions made by Init.
func (m *Model) Close() {
	if m.userSub != nil {
		m.userSub.Close()
	}
	if m.stopLoc != nil {
		m.stopLoc()
	}
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState { return m.view }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.home, &m.results, &m.favorites, &m.similar} {
			l.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case userChangedMsg:
		m.user = msg.user
		if msg.user == nil {
			m.deps.Favorites.Reset()
		}
		return m, waitForUser(m.userSub)

	case locationChangedMsg:
		return m, tea.Batch(waitForLocation(m.locCh), m.applyLocation(string(msg)))

	case dashboardLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.dashboard = msg.data
		return m, m.home.SetItems(movieItems(msg.data.TopRated, m.deps.Favorites.IsFavorite))

	case searchDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.results.Title = fmt.Sprintf("Results for %q (%d)", msg.query, msg.list.Total)
		return m, m.results.SetItems(movieItems(msg.list.Items, m.deps.Favorites.IsFavorite))

	case detailLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.detail = msg.movie
		return m, m.similar.SetItems(movieItems(msg.similar, m.deps.Favorites.IsFavorite))

	case favoritesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.favorites.SetItems(movieItems(msg.movies, nil))

	case favoriteToggledMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not update favorites: %s", describe(msg.err))
			return m, nil
		}
		if msg.favorite {
			m.status = fmt.Sprintf("Added %s to favorites", msg.movie.Title)
		} else {
			m.status = fmt.Sprintf("Removed %s from favorites", msg.movie.Title)
		}
		if m.view == FavoritesView {
			return m, m.loadFavorites()
		}
		return m, nil

	case loginDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Sign-in failed: %s", describe(msg.err))
			return m, nil
		}
		m.status = fmt.Sprintf("Signed in as %s", msg.user.Username)
		m.username.SetValue("")
		m.password.SetValue("")
		m.deps.Router.Navigate(navigation.ReturnURL(m.location))
		return m, nil

	case logoutDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Sign-out incomplete: %v", msg.err)
		} else {
			m.status = "Signed out"
		}
		return m, nil
	}

	return m.updateActive(msg)
}

// applyLocation switches to the view for loc and returns the command that loads it.
func (m *Model) applyLocation(loc string) tea.Cmd {
	m.location = loc
	path, _, _ := strings.Cut(loc, "?")

	switch {
	case navigation.IsLogin(loc):
		m.view = LoginView
		m.password.Blur()
		return m.username.Focus()
	case path == navigation.Search:
		m.view = SearchView
		return m.query.Focus()
	case path == navigation.Favorites:
		m.view = FavoritesView
		return m.loadFavorites()
	case strings.HasPrefix(path, "/movies/"):
		id, err := strconv.ParseInt(strings.TrimPrefix(path, "/movies/"), 10, 64)
		if err != nil {
			m.err = fmt.Errorf("invalid movie location %q", loc)
			return nil
		}
		m.view = DetailView
		m.detail = nil
		return m.loadDetail(id)
	default:
		m.view = HomeView
		return m.loadDashboard()
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case LoginView:
		return m.handleLoginKeys(msg)
	case SearchView:
		if m.query.Focused() {
			return m.handleQueryKeys(msg)
		}
	}

	active := m.activeList()
	if active != nil && active.FilterState() == list.Filtering {
		return m.updateActive(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.deps.Router.Back()
		return m, nil
	case key.Matches(msg, m.keys.home):
		m.deps.Router.Navigate(navigation.Home)
		return m, nil
	case key.Matches(msg, m.keys.search):
		m.deps.Router.Navigate(navigation.Search)
		return m, nil
	case key.Matches(msg, m.keys.favorites):
		if navigation.Guard(m.ctx, m.deps.Session, m.deps.Router, navigation.Favorites) {
			m.deps.Router.Navigate(navigation.Favorites)
		}
		return m, nil
	case key.Matches(msg, m.keys.login):
		m.deps.Router.Navigate(navigation.LoginRedirect(m.location))
		return m, nil
	case key.Matches(msg, m.keys.logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.refresh):
		return m, m.applyLocation(m.location)
	case key.Matches(msg, m.keys.toggle):
		if movie, ok := m.selected(); ok {
			if !navigation.Guard(m.ctx, m.deps.Session, m.deps.Router, m.location) {
				return m, nil
			}
			return m, m.toggleFavorite(movie)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if active != nil {
			if movie, ok := selectedMovie(*active); ok {
				m.deps.Router.Navigate(navigation.MovieView(movie.MovieID))
			}
		}
		return m, nil
	}

	return m.updateActive(msg)
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.query.Blur()
		return m, nil
	case tea.KeyEnter:
		q := strings.TrimSpace(m.query.Value())
		if q == "" {
			return m, nil
		}
		m.query.Blur()
		return m, m.search(q)
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.username.Blur()
		m.password.Blur()
		if !m.deps.Router.Back() {
			m.deps.Router.Navigate(navigation.Home)
		}
		return m, nil
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m, m.switchLoginFocus()
	case tea.KeyEnter:
		if m.username.Focused() {
			return m, m.switchLoginFocus()
		}
		return m, m.login(m.username.Value(), m.password.Value())
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) switchLoginFocus() tea.Cmd {
	if m.username.Focused() {
		m.username.Blur()
		return m.password.Focus()
	}
	m.password.Blur()
	return m.username.Focus()
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case HomeView:
		return &m.home
	case SearchView:
		return &m.results
	case FavoritesView:
		return &m.favorites
	case DetailView:
		return &m.similar
	default:
		return nil
	}
}

// selected returns the movie a favorite toggle applies to: the open movie on the detail view, the highlighted item elsewhere.
func (m *Model) selected() (models.Movie, bool) {
	if m.view == DetailView && m.detail != nil {
		return *m.detail, true
	}
	if l := m.activeList(); l != nil {
		return selectedMovie(*l)
	}
	return models.Movie{}, false
}

func (m *Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := m.activeList()
	if l == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

func (m *Model) loadDashboard() tea.Cmd {
	return func() tea.Msg {
		data, err := m.deps.Dashboard.Load(m.ctx, nil)
		return dashboardLoadedMsg{data: data, err: err}
	}
}

func (m *Model) search(q string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.deps.Catalog.Search(m.ctx, models.SearchQuery{Title: q, Limit: 50})
		return searchDoneMsg{query: q, list: res, err: err}
	}
}

func (m *Model) loadDetail(movieID int64) tea.Cmd {
	return func() tea.Msg {
		movie, err := m.deps.Catalog.ByID(m.ctx, movieID)
		if err != nil {
			return detailLoadedMsg{movieID: movieID, err: err}
		}
		// Similar titles are a secondary section.
		similar, _ := m.deps.Similar.Similar(m.ctx, movieID, 10)
		return detailLoadedMsg{movieID: movieID, movie: movie, similar: similar}
	}
}

func (m *Model) loadFavorites() tea.Cmd {
	return func() tea.Msg {
		movies, err := m.deps.Favorites.List(m.ctx)
		return favoritesLoadedMsg{movies: movies, err: err}
	}
}

func (m *Model) toggleFavorite(movie models.Movie) tea.Cmd {
	return func() tea.Msg {
		fav, err := m.deps.Favorites.Toggle(m.ctx, movie.ID)
		return favoriteToggledMsg{movie: movie, favorite: fav, err: err}
	}
}

func (m *Model) login(username, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.deps.Session.Login(m.ctx, username, password)
		return loginDoneMsg{user: user, err: err}
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: m.deps.Session.Logout(m.ctx)}
	}
}

// describe prefers the server's detail message over the wrapped error chain.
func describe(err error) string {
	if d := services.DetailOf(err); d != "" {
		return d
	}
	return err.Error()
}
