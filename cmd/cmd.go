// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// outputFlags are shared by commands that can print raw JSON.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func pagingFlags(limit int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "skip",
			Usage: "Number of results to skip",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of results to return",
			Value: limit,
		},
	}
}

func formatFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format: json, csv, markdown or txt",
			Value:   "json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory",
			Value:   ".",
		},
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	credentials := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Account username",
				Sources: cli.EnvVars("MOVIEX_USERNAME"),
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Account password",
				Sources: cli.EnvVars("MOVIEX_PASSWORD"),
			},
		}
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in and store the access token",
				Flags:  credentials(),
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored access token",
				Action: r.AuthLogout,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: append(credentials(), &cli.StringFlag{
					Name:  "email",
					Usage: "Optional e-mail address",
				}),
				Action: r.AuthRegister,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user and token expiry",
				Flags:  outputFlags(),
				Action: r.AuthWhoAmI,
			},
			{
				Name:   "status",
				Usage:  "Show the session state",
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:   "top",
				Usage:  "List top rated movies",
				Flags:  append(pagingFlags(20), outputFlags()...),
				Action: r.MoviesTop,
			},
			{
				Name:  "search",
				Usage: "Search movies by title, year and genre",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags: append(append([]cli.Flag{
					&cli.IntFlag{
						Name:  "year",
						Usage: "Release year",
					},
					&cli.StringSliceFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Genre name; repeat to match any of several",
					},
				}, pagingFlags(20)...), outputFlags()...),
				Action: r.MoviesSearch,
			},
			{
				Name:  "show",
				Usage: "Show one movie by its public movie id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the IMDb page in the browser",
					},
				}, outputFlags()...),
				Action: r.MoviesShow,
			},
			{
				Name:   "stats",
				Usage:  "Show catalog statistics",
				Flags:  outputFlags(),
				Action: r.MoviesStats,
			},
		},
	}
}

// recommendCommand handles recommendations
func recommendCommand(r *Runner) *cli.Command {
	limit := func() cli.Flag {
		return &cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of recommendations",
			Value: 10,
		}
	}

	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"rec"},
		Usage:   "Movie recommendations",
		Commands: []*cli.Command{
			{
				Name:   "user",
				Usage:  "Recommendations for the signed-in user",
				Flags:  append([]cli.Flag{limit()}, outputFlags()...),
				Action: r.RecommendUser,
			},
			{
				Name:  "similar",
				Usage: "Movies similar to a public movie id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  append([]cli.Flag{limit()}, outputFlags()...),
				Action: r.RecommendSimilar,
			},
		},
	}
}

// favoritesCommand handles the signed-in user's favorites
func favoritesCommand(r *Runner) *cli.Command {
	byMovieID := func() []cli.Flag {
		return []cli.Flag{&cli.BoolFlag{
			Name:  "movie-id",
			Usage: "Treat ids as public movie ids instead of catalog ids",
		}}
	}
	ids := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "ids"}}
	}

	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite movies",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorites",
				Flags:  outputFlags(),
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Add movies to favorites",
				ArgsUsage: "<id[,id...]>",
				Arguments: ids(),
				Flags:     byMovieID(),
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove movies from favorites",
				ArgsUsage: "<id[,id...]>",
				Arguments: ids(),
				Flags:     byMovieID(),
				Action:    r.FavoritesRemove,
			},
			{
				Name:      "toggle",
				Usage:     "Toggle movies in favorites",
				ArgsUsage: "<id[,id...]>",
				Arguments: ids(),
				Flags:     byMovieID(),
				Action:    r.FavoritesToggle,
			},
			{
				Name:   "export",
				Usage:  "Export favorites to a file",
				Flags:  formatFlags(),
				Action: r.FavoritesExport,
			},
		},
	}
}

// exportCommand handles bulk movie exports
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export movie details concurrently with a manifest",
		ArgsUsage: "[movie-id[,movie-id...]]",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "ids"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown or txt",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: moviex_export_<timestamp>)",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Export the N top rated movies",
			},
			&cli.BoolFlag{
				Name:  "favorites",
				Usage: "Export the signed-in user's favorites",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent workers (max 10)",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Detail requests per second",
				Value: 5,
			},
		},
		Action: r.Export,
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls through the authenticated pipeline",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET relative to the API base URL, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
		},
	}
}

// serveCommand runs the local catalog API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run an in-memory catalog API for offline development",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive catalog browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File that receives logs while the TUI runs",
				Value: "./tmp/moviex-tui.log",
			},
		},
		Action: r.TUI,
	}
}
