package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/formatter"
	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/navigation"
	"github.com/desertthunder/moviex/internal/shared"
)

// FavoritesList prints the signed-in user's favorites.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.loadFavorites(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(movies)))
	for _, m := range movies {
		r.writePlain("  [%d] %s\n", m.ID, formatter.MovieLine(m))
	}
	return nil
}

// FavoritesAdd adds each given movie to the favorites.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	return r.eachFavorite(ctx, cmd, func(id int64) (string, error) {
		if err := r.favorites.Add(ctx, id); err != nil {
			return "", err
		}
		return "added", nil
	})
}

// FavoritesRemove removes each given movie from the favorites.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	return r.eachFavorite(ctx, cmd, func(id int64) (string, error) {
		if err := r.favorites.Remove(ctx, id); err != nil {
			return "", err
		}
		return "removed", nil
	})
}

// FavoritesToggle flips the favorite state of each given movie.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.loadFavorites(ctx); err != nil {
		return err
	}
	return r.eachFavorite(ctx, cmd, func(id int64) (string, error) {
		fav, err := r.favorites.Toggle(ctx, id)
		if err != nil {
			return "", err
		}
		if fav {
			return "added", nil
		}
		return "removed", nil
	})
}

// FavoritesExport writes the favorites to disk in the chosen format.
func (r *Runner) FavoritesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	movies, err := r.loadFavorites(ctx)
	if err != nil {
		return err
	}

	name := "favorites"
	if user := r.session.CurrentUser(); user != nil {
		name = user.Username + " favorites"
	}
	export := &models.MovieExport{
		Name:        name,
		Description: "Favorite movies exported from moviex",
		ExportedAt:  time.Now().UTC(),
		Movies:      movies,
	}

	files, err := formatter.Write(export, format, cmd.String("output"), "")
	if err != nil {
		return fmt.Errorf("failed to export favorites: %w", err)
	}

	r.logger.Info("favorites exported", "format", format, "movies", len(movies), "files", len(files))
	r.writePlain("✓ Exported %d favorite(s)\n", len(movies))
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

func (r *Runner) loadFavorites(ctx context.Context) ([]models.Movie, error) {
	if err := r.requireAuth(ctx, navigation.Favorites); err != nil {
		return nil, err
	}
	movies, err := r.favorites.List(ctx)
	if err != nil {
		return nil, r.authError("failed to load favorites", err)
	}
	return movies, nil
}

// eachFavorite resolves the "ids" argument and applies fn to each id, reporting per-id outcomes.
//
// With --movie-id the arguments are public movie ids and are resolved to catalog ids first.
func (r *Runner) eachFavorite(ctx context.Context, cmd *cli.Command, fn func(id int64) (string, error)) error {
	ids, err := shared.ParseIDs(cmd.StringArg("ids"))
	if err != nil {
		return err
	}
	if err := r.requireAuth(ctx, navigation.Favorites); err != nil {
		return err
	}

	var failed int
	for _, id := range ids {
		target := id
		if cmd.Bool("movie-id") {
			movie, err := r.movies.ByID(ctx, id)
			if err != nil {
				failed++
				r.writePlain("✗ movie %d: %v\n", id, err)
				continue
			}
			target = movie.ID
		}

		verb, err := fn(target)
		if err != nil {
			if navigation.IsLogin(r.nav.Location()) {
				return r.authError("favorites request rejected", err)
			}
			failed++
			r.writePlain("✗ %d: %s\n", target, describeError(err))
			continue
		}
		r.writePlain("✓ %d %s\n", target, verb)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d favorite update(s) failed", failed, len(ids))
	}
	return nil
}
