package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Failure taxonomy for catalog API calls.
	//
	// Login and registration failures reach the caller; background panels
	// degrade to empty values. Only a 401 from the profile endpoint touches
	// global session state.
	ErrAuthFailure         = fmt.Errorf("authentication failed")
	ErrValidationFailure   = fmt.Errorf("validation failed")
	ErrNotFoundFailure     = fmt.Errorf("not found")
	ErrNetworkFailure      = fmt.Errorf("network failure")
	ErrUnauthorizedFailure = fmt.Errorf("unauthorized")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionClosed    = fmt.Errorf("session closed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
