// Package server is a local, in-memory stand-in for the movie catalog API.
//
// It serves every endpoint the client consumes under /api/v1 so the CLI, the TUI and the integration
// tests can run without the real backend. Status codes follow the real service: 400 for rejected logins
// and duplicate registrations, 401 for a missing or invalid bearer token, 404 for unknown movies.
//
// # Routing
//
// Routes are registered on a [mux.Router]; [Middleware] values (request logging, panic recovery)
// wrap every route in the order they are added.
//
// # Accounts
//
// Passwords are hashed with bcrypt. Login follows the OAuth2 password grant (form encoded
// username and password) and issues HS256 JWT access tokens whose subject is the user id.
//
// # Catalog
//
// [Catalog] holds movies, users and favorites in memory. [SeedMovies] provides a small fixed catalog.
package server
