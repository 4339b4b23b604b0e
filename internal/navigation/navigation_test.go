package navigation

import (
	"context"
	"testing"
)

type fakeAuth bool

func (f fakeAuth) IsAuthenticated(context.Context) bool { return bool(f) }

func TestTracker(t *testing.T) {
	t.Run("Defaults To Home", func(t *testing.T) {
		if got := NewTracker("").Location(); got != Home {
			t.Errorf("expected %s, got %s", Home, got)
		}
	})

	t.Run("Navigate And Back", func(t *testing.T) {
		tr := NewTracker(Home)
		tr.Navigate(Search)
		tr.Navigate(MovieView(42))

		if got := tr.Location(); got != "/movies/42" {
			t.Fatalf("expected /movies/42, got %s", got)
		}
		if !tr.Back() || tr.Location() != Search {
			t.Errorf("expected back to %s, got %s", Search, tr.Location())
		}
		if !tr.Back() || tr.Location() != Home {
			t.Errorf("expected back to %s, got %s", Home, tr.Location())
		}
		if tr.Back() {
			t.Error("expected no more history")
		}
	})

	t.Run("Listeners Receive Latest", func(t *testing.T) {
		tr := NewTracker(Home)
		ch, stop := tr.Listen()
		defer stop()

		tr.Navigate(Search)
		tr.Navigate(Favorites)
		tr.Navigate(Favorites)

		if got := <-ch; got != Favorites {
			t.Errorf("expected latest location %s, got %s", Favorites, got)
		}
		select {
		case got := <-ch:
			t.Errorf("unexpected extra notification %s", got)
		default:
		}
	})

	t.Run("Stop Closes Channel", func(t *testing.T) {
		tr := NewTracker(Home)
		ch, stop := tr.Listen()
		stop()
		stop()

		if _, ok := <-ch; ok {
			t.Error("expected closed channel")
		}
		tr.Navigate(Search)
	})
}

func TestLoginLocations(t *testing.T) {
	if !IsLogin("/login?returnUrl=%2Ffavorites") {
		t.Error("expected login with query to be the login view")
	}
	if IsLogin("/login-help") {
		t.Error("did not expect /login-help to be the login view")
	}

	redirect := LoginRedirect(Favorites)
	if redirect != "/login?returnUrl=%2Ffavorites" {
		t.Errorf("unexpected redirect %s", redirect)
	}
	if got := ReturnURL(redirect); got != Favorites {
		t.Errorf("expected return to %s, got %s", Favorites, got)
	}
	if got := ReturnURL(Login); got != Home {
		t.Errorf("expected default return %s, got %s", Home, got)
	}
	if LoginRedirect(Login) != Login {
		t.Error("redirecting to login from login should not nest")
	}
}

func TestGuard(t *testing.T) {
	t.Run("Authenticated", func(t *testing.T) {
		tr := NewTracker(Home)
		if !Guard(context.Background(), fakeAuth(true), tr, Favorites) {
			t.Error("expected guard to allow")
		}
		if tr.Location() != Home {
			t.Errorf("guard should not navigate, got %s", tr.Location())
		}
	})

	t.Run("Anonymous", func(t *testing.T) {
		tr := NewTracker(Home)
		if Guard(context.Background(), fakeAuth(false), tr, Favorites) {
			t.Error("expected guard to deny")
		}
		if got := tr.Location(); got != LoginRedirect(Favorites) {
			t.Errorf("expected redirect to login, got %s", got)
		}
	})
}
