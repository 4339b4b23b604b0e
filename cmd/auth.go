package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
)

// AuthLogin exchanges username and password for an access token and stores it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	password := cmd.String("password")
	if username == "" || password == "" {
		return fmt.Errorf("%w: --username and --password are required", shared.ErrMissingArgument)
	}

	r.hydrate(ctx)
	r.logger.Info("signing in", "username", username)

	user, err := r.session.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}

	return r.writePlain("✓ Signed in as %s\n", user.Username)
}

// AuthLogout clears the stored credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.hydrate(ctx)
	if err := r.session.Logout(ctx); err != nil {
		return fmt.Errorf("sign-out failed: %w", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthRegister creates an account. It does not sign in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	r.hydrate(ctx)

	user, err := r.session.Register(ctx, cmd.String("username"), cmd.String("email"), cmd.String("password"))
	if err != nil {
		if detail := services.DetailOf(err); detail != "" {
			return fmt.Errorf("registration failed: %s: %w", detail, err)
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	r.writePlain("✓ Registered %s (id %d)\n", user.Username, user.ID)
	return r.writePlain("Run 'moviex auth login --username %s' to sign in\n", user.Username)
}

// AuthWhoAmI prints the restored user and the expiry of the stored token.
func (r *Runner) AuthWhoAmI(ctx context.Context, cmd *cli.Command) error {
	r.hydrate(ctx)

	user := r.session.CurrentUser()
	if user == nil {
		return r.writePlain("Not signed in\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("Username: %s\n", user.Username)
	if email := user.EmailOrEmpty(); email != "" {
		r.writePlain("Email:    %s\n", email)
	}
	r.writePlain("ID:       %d\n", user.ID)
	if exp, ok := services.TokenExpiry(r.session.Token(ctx)); ok {
		r.writePlain("Token:    expires %s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Minute))
	}
	return nil
}

// AuthStatus reports the session state and the API it talks to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.hydrate(ctx)

	r.writePlainHeader("Session")
	r.writePlain("API:      %s\n", r.api.BaseURL())
	r.writePlain("State:    %s\n", r.session.State())

	token := r.session.Token(ctx)
	switch claims, err := services.InspectToken(token); {
	case token == "":
		r.writePlain("Token:    none\n")
	case err != nil:
		r.writePlain("Token:    unreadable (%v)\n", err)
	case claims.Expired(time.Now()):
		r.writePlain("Token:    expired\n")
	default:
		r.writePlain("Token:    valid for subject %s\n", claims.Subject)
	}

	if user := r.session.CurrentUser(); user != nil {
		r.writePlain("User:     %s\n", user.Username)
	}
	return nil
}
