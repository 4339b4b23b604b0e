package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/session"
	"github.com/desertthunder/moviex/internal/tasks"
)

type dashboardLoadedMsg struct {
	data *tasks.DashboardData
	err  error
}

type searchDoneMsg struct {
	query string
	list  *models.MovieList
	err   error
}

type detailLoadedMsg struct {
	movieID int64
	movie   *models.Movie
	similar []models.Movie
	err     error
}

type favoritesLoadedMsg struct {
	movies []models.Movie
	err    error
}

type favoriteToggledMsg struct {
	movie    models.Movie
	favorite bool
	err      error
}

type loginDoneMsg struct {
	user *models.User
	err  error
}

type logoutDoneMsg struct {
	err error
}

// userChangedMsg carries a value published by the session; nil means signed out.
type userChangedMsg struct {
	user *models.User
}

// locationChangedMsg carries a new navigation location.
type locationChangedMsg string

// waitForUser blocks on the next session publication. A closed subscription yields no message.
func waitForUser(sub *session.Subscription) tea.Cmd {
	return func() tea.Msg {
		user, ok := <-sub.C()
		if !ok {
			return nil
		}
		return userChangedMsg{user: user}
	}
}

// waitForLocation blocks on the next navigation change. A closed channel yields no message.
func waitForLocation(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		loc, ok := <-ch
		if !ok {
			return nil
		}
		return locationChangedMsg(loc)
	}
}
