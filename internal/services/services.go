package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/moviex/internal/shared"
)

// APIError is a non-2xx response from the catalog API.
type APIError struct {
	StatusCode int
	Detail     string
	Kind       error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%v (status %d)", e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Kind }

// Classify maps an HTTP status to the failure taxonomy.
func Classify(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return shared.ErrValidationFailure
	case http.StatusUnauthorized:
		return shared.ErrUnauthorizedFailure
	case http.StatusNotFound:
		return shared.ErrNotFoundFailure
	default:
		return shared.ErrNetworkFailure
	}
}

// NewAPIError builds an [*APIError] from a status and raw error body.
func NewAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Detail: ParseDetail(body), Kind: Classify(status)}
}

// ParseDetail extracts the "detail" field of an error body.
//
// FastAPI sends either a string or, for request validation errors, a list of objects with a "msg" field.
func ParseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if n := len(it.Loc); n > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[n-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// DetailOf returns the server detail carried by err, or "".
func DetailOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// TokenClaims are the unverified claims of an access token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token expired before now. Tokens without an expiry never expire.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// InspectToken reads the claims of a JWT access token without verifying its signature.
//
// Used for display only; the server remains the authority on validity.
func InspectToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: token is not a JWT: %v", shared.ErrInvalidInput, err)
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// TokenExpiry returns the expiry of a JWT access token, reporting false when it has none or cannot be read.
func TokenExpiry(token string) (time.Time, bool) {
	claims, err := InspectToken(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}

func networkError(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, shared.ErrNetworkFailure, err)
}
