package session

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/desertthunder/moviex/internal/models"
	"github.com/desertthunder/moviex/internal/services"
	"github.com/desertthunder/moviex/internal/shared"
)

// genericRegistrationError is shown when the server gave no detail.
const genericRegistrationError = "registration failed"

type registration struct {
	Username string
	Email    string
	Password string
}

func (r registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 0)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0)),
	)
}

// NewRegistration validates the registration form and builds the request.
//
// Username needs at least 3 characters and password at least 6; email is optional but must be well formed.
func NewRegistration(username, email, password string) (models.RegisterRequest, error) {
	r := registration{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := r.Validate(); err != nil {
		return models.RegisterRequest{}, fmt.Errorf("%w: %v", shared.ErrValidationFailure, err)
	}

	req := models.RegisterRequest{Username: r.Username, Password: r.Password}
	if r.Email != "" {
		req.Email = &r.Email
	}
	return req, nil
}

// registrationError normalises a failed registration; server rejections always carry a message.
func registrationError(err error) error {
	if !errors.Is(err, shared.ErrValidationFailure) {
		return err
	}
	if services.DetailOf(err) != "" {
		return err
	}
	return fmt.Errorf("%w: %s", shared.ErrValidationFailure, genericRegistrationError)
}
