// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// Views follow the navigation location rather than holding their own routing state:
//  1. [HomeView] (/) : Top rated movies, catalog stats and, when signed in, recommendations
//  2. [SearchView] (/search) : Title search with a result list
//  3. [DetailView] (/movies/{id}) : One movie with similar titles
//  4. [FavoritesView] (/favorites) : The signed-in user's favorites (guarded)
//  5. [LoginView] (/login) : Sign-in form, shown whenever a request is redirected to login
//
// The [Model] subscribes to the session (to show the signed-in user in the header) and to the
// navigation tracker; a location change from anywhere, including the request pipeline, switches the view.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
