// Package services implements typed clients for the movie catalog REST API.
//
// Every client shares one [APIService], whose [http.Client] is expected to be the authenticating
// pipeline from the transport package, so bearer attachment and 401 handling apply uniformly.
//
// # Clients
//
//   - [AuthService] : password-grant login (form encoded, via [oauth2.Config.PasswordCredentialsToken]), registration, profile
//   - [MovieService] : top rated, search, detail and catalog statistics
//   - [RecommendationService] : per-user and similar-movie recommendations
//   - [FavoritesService] : the signed-in user's favorites with a locally held membership set
//
// # Error Handling
//
// Non-2xx responses become an [*APIError] carrying the status and the server's "detail" message.
// APIError unwraps to one of the failure sentinels in the shared package:
//   - 400, 409, 422 : [shared.ErrValidationFailure] ([shared.ErrAuthFailure] for login)
//   - 401 : [shared.ErrUnauthorizedFailure]
//   - 404 : [shared.ErrNotFoundFailure]
//   - anything else, and transport failures : [shared.ErrNetworkFailure]
package services
