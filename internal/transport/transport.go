// Package transport builds the HTTP pipeline every catalog API call passes through.
//
// The pipeline is a chain of [Stage] values wrapped around a base [http.RoundTripper]:
//
//   - [Logging] : debug log line per request with status and latency
//   - [RequestID] : sets X-Request-ID when the caller did not
//   - [RateLimit] : client-side token bucket, disabled when no limiter is given
//   - [Unauthorized] : reacts to 401 responses (see below)
//   - [Bearer] : attaches the stored credential as a bearer Authorization header
//
// # Unauthorized responses
//
// A 401 from the profile endpoint (path ending in /auth/me) deletes the stored credential.
// A 401 from any other endpoint leaves the credential alone and, unless the client is already
// on the login view, navigates there. The response is returned to the caller unchanged in both cases.
package transport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/moviex/internal/navigation"
	"github.com/desertthunder/moviex/internal/repositories"
	"github.com/desertthunder/moviex/internal/shared"
)

const (
	// ProfilePath is the suffix of the profile endpoint whose 401 clears the credential.
	ProfilePath = "/auth/me"

	RequestIDHeader = "X-Request-ID"
)

// RoundTripperFunc adapts a function to [http.RoundTripper].
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Stage wraps a [http.RoundTripper] with additional behavior.
type Stage func(http.RoundTripper) http.RoundTripper

// Chain wraps base with stages; the first stage is the outermost.
func Chain(base http.RoundTripper, stages ...Stage) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := base
	for i := len(stages) - 1; i >= 0; i-- {
		wrapped = stages[i](wrapped)
	}
	return wrapped
}

// Bearer attaches "Authorization: Bearer <credential>" when the store holds a credential under key.
//
// The credential is read on every request. Without one the request is dispatched unmodified.
func Bearer(store repositories.Store, key string, logger *log.Logger) Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			token, err := store.Get(req.Context(), key)
			if err != nil {
				logger.Warn("credential lookup failed, sending request without it", "error", err)
				return next.RoundTrip(req)
			}
			if token == "" {
				return next.RoundTrip(req)
			}

			authed := req.Clone(req.Context())
			authed.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(authed)
		})
	}
}

// IsProfileRequest reports whether req targets the profile endpoint.
func IsProfileRequest(req *http.Request) bool {
	return strings.HasSuffix(strings.TrimRight(req.URL.Path, "/"), ProfilePath)
}

// Unauthorized handles 401 responses.
//
// Profile endpoint: the credential under key is deleted and onCleared, when set, is called.
// Other endpoints: the credential is kept; nav moves to the login view unless already there.
func Unauthorized(store repositories.Store, key string, nav navigation.Navigator, onCleared func(context.Context), logger *log.Logger) Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}

			if IsProfileRequest(req) {
				logger.Info("profile request unauthorized, clearing credential", "path", req.URL.Path)
				if derr := store.Delete(req.Context(), key); derr != nil {
					logger.Error("failed to clear credential", "error", derr)
				}
				if onCleared != nil {
					onCleared(req.Context())
				}
				return resp, nil
			}

			if nav != nil {
				if loc := nav.Location(); !navigation.IsLogin(loc) {
					logger.Info("request unauthorized, redirecting to login", "path", req.URL.Path, "from", loc)
					nav.Navigate(navigation.LoginRedirect(loc))
				}
			}
			return resp, nil
		})
	}
}

// RequestID sets a fresh X-Request-ID unless the request already carries one.
func RequestID() Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			tagged := req.Clone(req.Context())
			tagged.Header.Set(RequestIDHeader, shared.GenerateID())
			return next.RoundTrip(tagged)
		})
	}
}

// RateLimit waits on limiter before each request. A nil limiter disables the stage.
func RateLimit(limiter *rate.Limiter) Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		if limiter == nil {
			return next
		}
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}

// Logging writes a debug line for every request.
func Logging(logger *log.Logger) Stage {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			kv := []any{"method", req.Method, "path", req.URL.Path, "elapsed", time.Since(start)}
			if err != nil {
				logger.Debug("request failed", append(kv, "error", err)...)
				return resp, err
			}
			logger.Debug("request", append(kv, "status", resp.StatusCode)...)
			return resp, nil
		})
	}
}

// Options configures [NewClient].
type Options struct {
	Base              http.RoundTripper
	Store             repositories.Store
	TokenKey          string
	Navigator         navigation.Navigator
	OnCredentialClear func(context.Context)
	RequestsPerSecond float64
	Timeout           time.Duration
	Logger            *log.Logger
}

// NewLimiter returns a token bucket allowing rps requests per second, or nil when rps is not positive.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// NewClient returns an [http.Client] whose transport is the full pipeline.
func NewClient(opts Options) *http.Client {
	if opts.Store == nil {
		opts.Store = repositories.NewMemoryStore(nil)
	}
	if opts.TokenKey == "" {
		opts.TokenKey = repositories.TokenKey
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	logger := shared.WithLogger(opts.Logger, "component", "transport")

	rt := Chain(opts.Base,
		Logging(logger),
		RequestID(),
		RateLimit(NewLimiter(opts.RequestsPerSecond)),
		Unauthorized(opts.Store, opts.TokenKey, opts.Navigator, opts.OnCredentialClear, logger),
		Bearer(opts.Store, opts.TokenKey, logger),
	)

	return &http.Client{Transport: rt, Timeout: opts.Timeout}
}
