// Package session owns the client's notion of who is signed in.
//
// A [Store] is an explicit context object built from its collaborators: the account API, a key/value
// [repositories.Store] holding the bearer credential, and a [navigation.Navigator]. It is the only
// writer of the current user and, together with the transport pipeline, the only writer of the credential.
//
// # States
//
//	ANONYMOUS --Login--> AUTHENTICATING --profile ok--> AUTHENTICATED
//	AUTHENTICATING --login or profile failure--> ANONYMOUS
//	AUTHENTICATED --Logout or profile 401--> ANONYMOUS
//
// # Ordering
//
// Login persists the credential before it fetches the profile. Logout and profile invalidation advance a
// counter that in-flight logins and hydrations check before publishing, so a user can never be published
// after a later logout. Likewise a newer login or hydration supersedes an older one still in flight.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/navigation"
	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/shared"
)

// State is the session state.
type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "ANONYMOUS"
	case Authenticating:
		return "AUTHENTICATING"
	case Authenticated:
		return "AUTHENTICATED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// AuthAPI is the account API used by the [Store].
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
}

// Store holds the current user and drives the session state machine.
type Store struct {
	auth     AuthAPI
	creds    repositories.Store
	tokenKey string
	nav      navigation.Navigator
	logger   *log.Logger

	mu      sync.Mutex
	user    *models.User
	state   State
	logouts uint64 // advanced by Logout and Invalidate
	gen     uint64 // advanced by each login commit and hydration
	subs    []*Subscription
	closed  bool
}

// Option configures a [Store].
type Option func(*Store)

// WithTokenKey stores the credential under key instead of [repositories.TokenKey].
func WithTokenKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.tokenKey = key
		}
	}
}

// New creates a [Store] in the ANONYMOUS state. nav may be nil.
func New(auth AuthAPI, creds repositories.Store, nav navigation.Navigator, logger *log.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	s := &Store{
		auth:     auth,
		creds:    creds,
		tokenKey: repositories.TokenKey,
		nav:      nav,
		logger:   shared.WithLogger(logger, "component", "session"),
		state:    Anonymous,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges credentials for a token, persists it, fetches the profile and publishes the user.
//
// Rejected credentials return an error wrapping [shared.ErrAuthFailure] and leave the previous
// session untouched. If the profile fetch fails after the exchange, the credential is cleared,
// absent is published and the profile error is returned.
func (s *Store) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrAuthFailure)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, shared.ErrSessionClosed
	}
	logouts := s.logouts
	s.state = Authenticating
	s.mu.Unlock()

	s.logger.Debug("login", "username", username)

	token, err := s.auth.Login(ctx, username, password)
	if err == nil && token.AccessToken == "" {
		err = fmt.Errorf("%w: empty access token", shared.ErrAuthFailure)
	}
	if err != nil {
		s.mu.Lock()
		s.state = s.derivedStateLocked()
		s.mu.Unlock()
		s.logger.Warn("login rejected", "username", username, "error", err)
		return nil, err
	}

	s.mu.Lock()
	if s.logouts != logouts {
		s.state = s.derivedStateLocked()
		s.mu.Unlock()
		return nil, errSuperseded
	}
	if err := s.creds.Set(ctx, s.tokenKey, token.AccessToken); err != nil {
		s.state = s.derivedStateLocked()
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	user, err := s.auth.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.gen == gen && s.logouts == logouts
	if err != nil {
		if current {
			s.clearLocked(ctx)
		}
		s.logger.Warn("profile fetch after login failed", "error", err)
		return nil, err
	}
	if !current {
		return nil, errSuperseded
	}

	s.state = Authenticated
	s.publishLocked(user)
	s.logger.Info("signed in", "username", user.Username)
	return cloneUser(user), nil
}

// Register creates an account without touching the current session.
//
// Invalid input and server rejections return an error wrapping [shared.ErrValidationFailure];
// the server's detail message is kept when it sent one.
func (s *Store) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	req, err := NewRegistration(username, email, password)
	if err != nil {
		return nil, err
	}

	user, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, registrationError(err)
	}
	s.logger.Info("registered", "username", user.Username)
	return user, nil
}

// Logout deletes the credential, publishes absent and navigates to the login view.
//
// The session is ANONYMOUS afterwards even when the credential could not be deleted; that failure is returned.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.logouts++
	err := s.creds.Delete(ctx, s.tokenKey)
	s.state = Anonymous
	s.publishLocked(nil)
	s.mu.Unlock()

	if s.nav != nil {
		s.nav.Navigate(navigation.Login)
	}
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	s.logger.Info("signed out")
	return nil
}

// Invalidate records that the credential was rejected by the profile endpoint and already removed.
// It publishes absent without touching storage or navigation.
func (s *Store) Invalidate(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logouts++
	s.state = Anonymous
	s.publishLocked(nil)
	s.logger.Info("session invalidated")
}

// Hydrate restores the session from a stored credential. It never fails: any problem leaves the
// session ANONYMOUS. Without a credential no profile fetch is made.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen, logouts := s.gen, s.logouts
	s.mu.Unlock()

	token, err := s.creds.Get(ctx, s.tokenKey)
	if err != nil {
		s.logger.Warn("failed to read credential", "error", err)
	}
	if err != nil || token == "" {
		s.mu.Lock()
		if s.gen == gen && s.logouts == logouts {
			s.state = Anonymous
			s.publishLocked(nil)
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	if s.gen == gen && s.logouts == logouts {
		s.state = Authenticating
	}
	s.mu.Unlock()

	user, err := s.auth.Me(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.logouts != logouts {
		s.logger.Debug("hydration superseded")
		return
	}
	if err != nil {
		s.logger.Info("stored credential rejected", "error", err)
		s.clearLocked(ctx)
		return
	}

	s.state = Authenticated
	s.publishLocked(user)
	s.logger.Debug("session restored", "username", user.Username)
}

// IsAuthenticated reports whether a credential is stored. It makes no network call.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	token, err := s.creds.Get(ctx, s.tokenKey)
	if err != nil {
		s.logger.Warn("failed to read credential", "error", err)
		return false
	}
	return token != ""
}

// Token returns the stored credential, or "".
func (s *Store) Token(ctx context.Context) string {
	token, err := s.creds.Get(ctx, s.tokenKey)
	if err != nil {
		s.logger.Warn("failed to read credential", "error", err)
		return ""
	}
	return token
}

// CurrentUser returns a copy of the published user, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneUser(s.user)
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// clearLocked deletes the credential and publishes absent.
func (s *Store) clearLocked(ctx context.Context) {
	if err := s.creds.Delete(ctx, s.tokenKey); err != nil {
		s.logger.Error("failed to delete credential", "error", err)
	}
	s.state = Anonymous
	s.publishLocked(nil)
}

func (s *Store) derivedStateLocked() State {
	if s.user != nil {
		return Authenticated
	}
	return Anonymous
}

var errSuperseded = fmt.Errorf("%w: superseded by a later sign-out or sign-in", shared.ErrNotAuthenticated)

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Email != nil {
		e := *u.Email
		c.Email = &e
	}
	return &c
}
