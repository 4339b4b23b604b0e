// Package models defines the data transfer objects exchanged with the movie catalog API.
//
// The package contains two groups of types:
//
// 1. Catalog entities decoded from API responses
//   - [Movie] : a catalog title with genres and aggregate rating
//   - [Genre] : a named genre attached to movies
//   - [MovieList] : a page of movies with the total match count
//   - [MovieStats] : catalog-wide aggregates and the most common genres
//
// 2. Account payloads
//   - [User] : the profile returned by the profile endpoint
//   - [LoginRequest], [RegisterRequest] : credential submissions
//   - [AuthResponse] : the bearer credential issued on login
//
// [SearchQuery] encodes search filters into URL query parameters. A single genre
// is sent as "genre" for older servers, several as repeated "genres".
package models
