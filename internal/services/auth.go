package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/shared"
)

const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	ProfilePath  = "/auth/me"
)

// AuthService talks to the account endpoints.
type AuthService struct {
	api    *APIService
	config *oauth2.Config
}

// NewAuthService creates an [AuthService] on api.
//
// Login uses the OAuth2 resource owner password grant against the login endpoint with
// credentials sent as form parameters, which is what the catalog's token endpoint expects.
func NewAuthService(api *APIService) *AuthService {
	return &AuthService{
		api: api,
		config: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  api.BaseURL() + LoginPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// Login exchanges username and password for an access token.
//
// Rejected credentials return an error wrapping [shared.ErrAuthFailure].
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.api.Client())

	tok, err := s.config.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, loginError(err)
	}

	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &models.AuthResponse{AccessToken: tok.AccessToken, TokenType: tokenType}, nil
}

func loginError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) || re.Response == nil {
		return networkError("login request failed", err)
	}

	apiErr := NewAPIError(re.Response.StatusCode, re.Body)
	switch re.Response.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
		apiErr.Kind = shared.ErrAuthFailure
	}
	return apiErr
}

// Register creates an account. The current session is not affected.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := s.api.PostJSON(ctx, RegisterPath, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me fetches the profile of the credential holder.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.api.GetJSON(ctx, ProfilePath, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &user, nil
}
