package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/shared"
	"github.com/desertthunder/moviex/internal/tasks"
	"github.com/desertthunder/moviex/internal/ui"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	r.hydrate(ctx)

	model := ui.NewModel(ctx, ui.Deps{
		Session:   r.session,
		Router:    r.nav,
		Catalog:   r.movies,
		Similar:   r.recs,
		Favorites: r.favorites,
		Dashboard: &tasks.Dashboard{
			Movies:          r.movies,
			Recommendations: r.recs,
			Favorites:       r.favorites,
			Auth:            r.session,
			Limit:           20,
		},
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
