package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/desertthunder/moviex/internal/navigation"
	"github.com/desertthunder/moviex/internal/shared"
)

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case HomeView:
		body = m.renderHome()
	case SearchView:
		body = m.renderSearch()
	case DetailView:
		body = m.renderDetail()
	case FavoritesView:
		body = m.renderFavorites()
	case LoginView:
		body = m.renderLogin()
	}

	parts := []string{m.renderHeader(), body}
	if m.err != nil {
		parts = append(parts, styles.err.Render("Error: "+describe(m.err)))
	}
	if m.status != "" {
		parts = append(parts, styles.help.Render(m.status))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderHeader() string {
	who := "not signed in"
	if m.user != nil {
		who = "signed in as " + m.user.Username
	}
	return styles.header.Render(fmt.Sprintf("moviex · %s · %s", m.location, who))
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(m.home.View())

	if d := m.dashboard; d != nil {
		if d.Stats != nil {
			fmt.Fprintf(&b, "\n\n%d movies · %s", d.Stats.TotalMovies, shared.FormatRating(d.Stats.AverageRating, d.Stats.TotalRatings))
			if len(d.Stats.TopGenres) > 0 {
				names := make([]string, 0, len(d.Stats.TopGenres))
				for _, g := range d.Stats.TopGenres {
					names = append(names, fmt.Sprintf("%s (%d)", g.Name, g.MovieCount))
				}
				fmt.Fprintf(&b, "\nTop genres: %s", strings.Join(names, ", "))
			}
		}
		if len(d.Recommendations) > 0 {
			titles := make([]string, 0, len(d.Recommendations))
			for _, r := range d.Recommendations {
				titles = append(titles, r.Title)
			}
			fmt.Fprintf(&b, "\n%s %s", styles.ok.Render("For you:"), strings.Join(titles, ", "))
		}
		for _, w := range d.Warnings {
			fmt.Fprintf(&b, "\n%s", styles.warn.Render(w.String()))
		}
	}

	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.search, m.keys.favorites, m.keys.toggle, m.sessionKey(), m.keys.quit}))
	return b.String()
}

func (m *Model) renderSearch() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.toggle, m.keys.back, m.keys.quit}
	if m.query.Focused() {
		helpKeys = []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "results")),
		}
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", m.query.View(), m.results.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return "Loading…"
	}
	mv := m.detail

	title := mv.Title
	if y := mv.YearString(); y != "" {
		title = fmt.Sprintf("%s (%s)", title, y)
	}
	if m.deps.Favorites.IsFavorite(mv.ID) {
		title = "★ " + title
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	fmt.Fprintf(&b, "\nRating: %s", shared.FormatRating(mv.AverageRating, mv.RatingCount))
	if len(mv.Genres) > 0 {
		fmt.Fprintf(&b, "\nGenres: %s", strings.Join(mv.GenreNames(), ", "))
	}
	if u := shared.IMDbURL(mv.IMDBID); u != "" {
		fmt.Fprintf(&b, "\nIMDb: %s", u)
	}
	fmt.Fprintf(&b, "\n\n%s\n\n%s", m.similar.View(), m.help.ShortHelpView([]key.Binding{m.keys.toggle, m.keys.enter, m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderFavorites() string {
	return fmt.Sprintf("%s\n\n%s", m.favorites.View(), m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.toggle, m.keys.back, m.keys.quit}))
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Sign-in required")
	target := navigation.ReturnURL(m.location)
	info := ""
	if target != navigation.Home {
		info = fmt.Sprintf("\nYou will return to %s after signing in.\n", target)
	}

	helpKeys := []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		m.keys.back,
	}
	return fmt.Sprintf("%s%s\n%s\n%s\n\n%s", title, info, m.username.View(), m.password.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) sessionKey() key.Binding {
	if m.user != nil {
		return m.keys.logout
	}
	return m.keys.login
}
