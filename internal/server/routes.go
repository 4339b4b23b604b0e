package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/desertthunder/moviex/internal/models"
)

// routes builds the router. Collection routes answer with and without a trailing slash.
func (s *Server) routes(mw ...Middleware) *mux.Router {
	r := mux.NewRouter()
	for _, m := range mw {
		r.Use(mux.MiddlewareFunc(m))
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})

	api := r.PathPrefix(APIPrefix).Subrouter()

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.Handle("/auth/me", s.requireUser(s.handleMe)).Methods(http.MethodGet)

	api.HandleFunc("/movies/top-rated", s.handleTopRated).Methods(http.MethodGet)
	api.HandleFunc("/movies/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/movies/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/movies/by-id/{movie_id:[0-9]+}", s.handleByID).Methods(http.MethodGet)

	api.Handle("/recommendations/user", s.requireUser(s.handleRecommend)).Methods(http.MethodGet)
	api.HandleFunc("/recommendations/similar/{movie_id:[0-9]+}", s.handleSimilar).Methods(http.MethodGet)

	api.Handle("/favorites", s.requireUser(s.handleFavorites)).Methods(http.MethodGet)
	api.Handle("/favorites/", s.requireUser(s.handleFavorites)).Methods(http.MethodGet)
	api.Handle("/favorites/{id:[0-9]+}", s.requireUser(s.handleAddFavorite)).Methods(http.MethodPost)
	api.Handle("/favorites/{id:[0-9]+}", s.requireUser(s.handleRemoveFavorite)).Methods(http.MethodDelete)

	return r
}

// requireUser resolves the bearer token to an account and answers 401 when it cannot.
func (s *Server) requireUser(next func(http.ResponseWriter, *http.Request, models.User)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "Not authenticated")
			return
		}
		id, err := s.tokens.Verify(token)
		if err != nil {
			unauthorized(w, "Could not validate credentials")
			return
		}
		user, ok := s.catalog.User(id)
		if !ok || !user.IsActive {
			unauthorized(w, "Could not validate credentials")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeValidation(w, "username and password are required", "body", "username")
		return
	}

	user, ok := s.catalog.Authenticate(username, password)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "Nome de usuário ou senha incorretos")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	switch {
	case len(strings.TrimSpace(req.Username)) < 3:
		writeValidation(w, "String should have at least 3 characters", "body", "username")
		return
	case len(req.Password) < 6:
		writeValidation(w, "String should have at least 6 characters", "body", "password")
		return
	case req.Email != nil && !strings.Contains(*req.Email, "@"):
		writeValidation(w, "value is not a valid email address", "body", "email")
		return
	}

	user, err := s.catalog.Register(req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, errUsernameTaken), errors.Is(err, errEmailTaken):
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("failed to register user", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, user models.User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := paging(w, r, 10)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.catalog.TopRated(skip, limit))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := paging(w, r, 20)
	if !ok {
		return
	}
	q := r.URL.Query()

	var year int
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeValidation(w, "Input should be a valid integer", "query", "year")
			return
		}
		year = n
	}

	genres := q["genres"]
	if g := q.Get("genre"); g != "" {
		genres = append(genres, g)
	}
	writeJSON(w, http.StatusOK, s.catalog.Search(q.Get("title"), year, genres, skip, limit))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats())
}

func (s *Server) handleByID(w http.ResponseWriter, r *http.Request) {
	movie, ok := s.catalog.ByMovieID(pathID(r, "movie_id"))
	if !ok {
		writeDetail(w, http.StatusNotFound, errMovieNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	_, limit, ok := paging(w, r, 10)
	if !ok {
		return
	}
	movies, err := s.catalog.Similar(pathID(r, "movie_id"), limit)
	if err != nil {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request, user models.User) {
	_, limit, ok := paging(w, r, 10)
	if !ok {
		return
	}
	movies, err := s.catalog.Recommend(user.ID, limit)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

func (s *Server) handleFavorites(w http.ResponseWriter, _ *http.Request, user models.User) {
	writeJSON(w, http.StatusOK, s.catalog.Favorites(user.ID))
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request, user models.User) {
	switch err := s.catalog.AddFavorite(user.ID, pathID(r, "id")); {
	case errors.Is(err, errMovieNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errAlreadyFavorite):
		writeDetail(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Filme adicionado aos favoritos"})
	}
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request, user models.User) {
	if err := s.catalog.RemoveFavorite(user.ID, pathID(r, "id")); err != nil {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// paging reads skip and limit. Limit must be within 1..100.
func paging(w http.ResponseWriter, r *http.Request, defaultLimit int) (skip, limit int, ok bool) {
	q := r.URL.Query()
	skip, limit = 0, defaultLimit

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeValidation(w, "Input should be greater than or equal to 0", "query", "skip")
			return 0, 0, false
		}
		skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeValidation(w, "Input should be between 1 and 100", "query", "limit")
			return 0, 0, false
		}
		limit = n
	}
	return skip, limit, true
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id
}

type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, msg string, loc ...string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string][]validationIssue{
		"detail": {{Loc: loc, Msg: msg, Type: "value_error"}},
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}
