package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/moviex/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(NewCatalog(SeedMovies()), "test-secret", log.New(io.Discard))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, method, target, token string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func register(t *testing.T, ts *httptest.Server, username, email, password string) *http.Response {
	t.Helper()
	req := map[string]any{"username": username, "email": nil, "password": password}
	if email != "" {
		req["email"] = email
	}
	payload, _ := json.Marshal(req)
	resp, _ := call(t, http.MethodPost, ts.URL+APIPrefix+"/auth/register", "", bytes.NewReader(payload), "application/json")
	return resp
}

func login(t *testing.T, ts *httptest.Server, username, password string) (*http.Response, models.AuthResponse) {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	resp, body := call(t, http.MethodPost, ts.URL+APIPrefix+"/auth/login", "", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	var tok models.AuthResponse
	_ = json.Unmarshal(body, &tok)
	return resp, tok
}

func detail(t *testing.T, body []byte) string {
	t.Helper()
	var d struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(body, &d))
	return d.Detail
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("register then login", func(t *testing.T) {
		assert.Equal(t, http.StatusCreated, register(t, ts, "ana", "ana@example.com", "secret1").StatusCode)

		resp, tok := login(t, ts, "ana", "secret1")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "bearer", tok.TokenType)
		assert.NotEmpty(t, tok.AccessToken)

		resp, body := call(t, http.MethodGet, ts.URL+APIPrefix+"/auth/me", tok.AccessToken, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var me models.User
		require.NoError(t, json.Unmarshal(body, &me))
		assert.Equal(t, "ana", me.Username)
		assert.Equal(t, "ana@example.com", me.EmailOrEmpty())
	})

	t.Run("duplicate username and email", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, register(t, ts, "ana", "other@example.com", "secret1").StatusCode)
		assert.Equal(t, http.StatusBadRequest, register(t, ts, "bruno", "ANA@example.com", "secret1").StatusCode)
	})

	t.Run("short password is a validation error", func(t *testing.T) {
		assert.Equal(t, http.StatusUnprocessableEntity, register(t, ts, "carla", "", "123").StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := login(t, ts, "ana", "nope")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("me without token", func(t *testing.T) {
		resp, body := call(t, http.MethodGet, ts.URL+APIPrefix+"/auth/me", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		assert.Equal(t, "Not authenticated", detail(t, body))
	})

	t.Run("me with garbage token", func(t *testing.T) {
		resp, _ := call(t, http.MethodGet, ts.URL+APIPrefix+"/auth/me", "not-a-jwt", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestMovieEndpoints(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + APIPrefix

	t.Run("top rated is a bare array ordered by rating", func(t *testing.T) {
		resp, body := call(t, http.MethodGet, base+"/movies/top-rated?limit=3", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var movies []models.Movie
		require.NoError(t, json.Unmarshal(body, &movies))
		require.Len(t, movies, 3)
		assert.Equal(t, "The Shawshank Redemption", movies[0].Title)
		assert.GreaterOrEqual(t, movies[0].AverageRating, movies[1].AverageRating)
	})

	t.Run("limit out of range", func(t *testing.T) {
		resp, _ := call(t, http.MethodGet, base+"/movies/top-rated?limit=0", "", nil, "")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp, _ = call(t, http.MethodGet, base+"/movies/top-rated?limit=101", "", nil, "")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("search", func(t *testing.T) {
		resp, body := call(t, http.MethodGet, base+"/movies/search?title=star+wars", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list models.MovieList
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Equal(t, 2, list.Total)

		_, body = call(t, http.MethodGet, base+"/movies/search?genres=War&genres=Horror", "", nil, "")
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Equal(t, 3, list.Total)

		_, body = call(t, http.MethodGet, base+"/movies/search?genre=Crime&year=1994", "", nil, "")
		require.NoError(t, json.Unmarshal(body, &list))
		assert.Equal(t, 2, list.Total)
	})

	t.Run("by id uses the public id", func(t *testing.T) {
		resp, body := call(t, http.MethodGet, base+"/movies/by-id/2571", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var m models.Movie
		require.NoError(t, json.Unmarshal(body, &m))
		assert.Equal(t, "The Matrix", m.Title)
		assert.NotEqual(t, m.MovieID, m.ID)

		resp, _ = call(t, http.MethodGet, base+"/movies/by-id/999", "", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("stats", func(t *testing.T) {
		_, body := call(t, http.MethodGet, base+"/movies/stats", "", nil, "")
		var stats models.MovieStats
		require.NoError(t, json.Unmarshal(body, &stats))
		assert.Equal(t, len(SeedMovies()), stats.TotalMovies)
		assert.Len(t, stats.TopGenres, 5)
		assert.Equal(t, "Thriller", stats.TopGenres[0].Name)
	})

	t.Run("similar", func(t *testing.T) {
		resp, body := call(t, http.MethodGet, base+"/recommendations/similar/260?limit=1", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var movies []models.Movie
		require.NoError(t, json.Unmarshal(body, &movies))
		require.Len(t, movies, 1)
		assert.Equal(t, int64(1196), movies[0].MovieID)

		resp, _ = call(t, http.MethodGet, base+"/recommendations/similar/999", "", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, _ := call(t, http.MethodGet, base+"/nope", "", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestFavoriteEndpoints(t *testing.T) {
	ts := newTestServer(t)
	base := ts.URL + APIPrefix
	require.Equal(t, http.StatusCreated, register(t, ts, "ana", "", "secret1").StatusCode)
	_, tok := login(t, ts, "ana", "secret1")
	token := tok.AccessToken

	matrix := SeedMovies()[14]
	require.Equal(t, "The Matrix", matrix.Title)
	path := base + "/favorites/" + jsonNumber(matrix.ID)

	t.Run("requires a token", func(t *testing.T) {
		resp, _ := call(t, http.MethodGet, base+"/favorites/", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("recommendations need a favorite", func(t *testing.T) {
		resp, _ := call(t, http.MethodGet, base+"/recommendations/user", token, nil, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("add list duplicate remove", func(t *testing.T) {
		resp, _ := call(t, http.MethodPost, path, token, nil, "")
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, body := call(t, http.MethodPost, path, token, nil, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Este filme já está nos favoritos", detail(t, body))

		for _, p := range []string{"/favorites", "/favorites/"} {
			_, body = call(t, http.MethodGet, base+p, token, nil, "")
			var favs []models.Movie
			require.NoError(t, json.Unmarshal(body, &favs))
			require.Len(t, favs, 1, p)
			assert.Equal(t, matrix.ID, favs[0].ID)
		}

		resp, body = call(t, http.MethodGet, base+"/recommendations/user?limit=5", token, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var recs []models.Movie
		require.NoError(t, json.Unmarshal(body, &recs))
		assert.NotEmpty(t, recs)
		for _, m := range recs {
			assert.NotEqual(t, matrix.ID, m.ID)
		}

		resp, _ = call(t, http.MethodDelete, path, token, nil, "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp, _ = call(t, http.MethodDelete, path, token, nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown movie", func(t *testing.T) {
		resp, _ := call(t, http.MethodPost, base+"/favorites/99999", token, nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("k1", time.Minute)

	token, err := issuer.Issue(42)
	require.NoError(t, err)
	id, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = NewTokenIssuer("k2", time.Minute).Verify(token)
	assert.Error(t, err, "foreign signature must be rejected")

	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	stale, err := issuer.Issue(42)
	require.NoError(t, err)
	issuer.now = time.Now
	_, err = issuer.Verify(stale)
	assert.Error(t, err, "expired token must be rejected")
}

func TestRecover(t *testing.T) {
	h := Recover(log.New(io.Discard))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
