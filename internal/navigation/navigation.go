// Package navigation tracks which view the client is showing and guards views that need a session.
//
// The request pipeline and the session store only see the [Navigator] interface; the TUI subscribes
// to a [Tracker] to follow redirects it did not initiate (such as a 401 sending the user to sign in).
package navigation

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// Well-known views.
const (
	Home            = "/"
	Login           = "/login"
	Register        = "/register"
	Search          = "/search"
	Favorites       = "/favorites"
	Recommendations = "/recommendations"
)

// MovieView returns the detail view location for a movie.
func MovieView(movieID int64) string {
	return "/movies/" + strconv.FormatInt(movieID, 10)
}

// Navigator reads and changes the current view.
type Navigator interface {
	Location() string
	Navigate(view string)
}

// IsLogin reports whether location is the login view, ignoring any query string.
func IsLogin(location string) bool {
	path, _, _ := strings.Cut(location, "?")
	return path == Login
}

// LoginRedirect returns the login view carrying returnUrl when target is not empty.
func LoginRedirect(target string) string {
	if target == "" || IsLogin(target) {
		return Login
	}
	return Login + "?" + url.Values{"returnUrl": {target}}.Encode()
}

// ReturnURL extracts returnUrl from a login location, defaulting to [Home].
func ReturnURL(location string) string {
	_, rawQuery, ok := strings.Cut(location, "?")
	if !ok {
		return Home
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil || q.Get("returnUrl") == "" {
		return Home
	}
	return q.Get("returnUrl")
}

// Tracker is a concurrency-safe [Navigator] that broadcasts every location change.
type Tracker struct {
	mu        sync.Mutex
	location  string
	history   []string
	listeners []chan string
}

// NewTracker creates a [Tracker] positioned at start, or [Home] when start is empty.
func NewTracker(start string) *Tracker {
	if start == "" {
		start = Home
	}
	return &Tracker{location: start}
}

// Location returns the current view.
func (t *Tracker) Location() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.location
}

// Navigate moves to view and notifies listeners. Navigating to the current view is a no-op.
func (t *Tracker) Navigate(view string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if view == t.location {
		return
	}
	t.history = append(t.history, t.location)
	t.moveLocked(view)
}

// Back returns to the previous view, reporting false when there is none.
func (t *Tracker) Back() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.history) == 0 {
		return false
	}
	prev := t.history[len(t.history)-1]
	t.history = t.history[:len(t.history)-1]
	t.moveLocked(prev)
	return true
}

func (t *Tracker) moveLocked(view string) {
	t.location = view
	for _, ch := range t.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- view
	}
}

// Listen returns a channel receiving each new location; only the latest unread location is kept.
// The returned function stops delivery and closes the channel.
func (t *Tracker) Listen() (<-chan string, func()) {
	ch := make(chan string, 1)

	t.mu.Lock()
	t.listeners = append(t.listeners, ch)
	t.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, l := range t.listeners {
				if l == ch {
					t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
	return ch, stop
}

// Authenticator is the synchronous credential check used by [Guard].
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// Guard allows target when a credential is present; otherwise it navigates to the login view
// carrying target as returnUrl and reports false.
func Guard(ctx context.Context, auth Authenticator, nav Navigator, target string) bool {
	if auth.IsAuthenticated(ctx) {
		return true
	}
	nav.Navigate(LoginRedirect(target))
	return false
}
