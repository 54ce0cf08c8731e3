// Package handler contains the HTTP handlers for the API server. Handlers
// return the success body; the router writes it with the route's status.
package handler

import (
	"log/slog"
	"net/http"

	"authsvc/internal/delivery/api/response"
	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/errors"
	"authsvc/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CredentialsRequest is the signup and signin body.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"password"`
}

// AuthHandler holds dependencies for auth-related handlers.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(authUC usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUC: authUC,
		logger: logger,
	}
}

// SignUp registers a user and opens a refresh session (v2).
func (h *AuthHandler) SignUp(c echo.Context) (any, error) {
	input, err := bindCredentials(c)
	if err != nil {
		return nil, err
	}

	pair, err := h.authUC.SignUp(c.Request().Context(), input)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return response.TokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// SignIn authenticates and replaces the refresh session (v2).
func (h *AuthHandler) SignIn(c echo.Context) (any, error) {
	input, err := bindCredentials(c)
	if err != nil {
		return nil, err
	}

	pair, err := h.authUC.SignIn(c.Request().Context(), input)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return response.TokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// SignUpV1 registers a user and returns an access token only.
func (h *AuthHandler) SignUpV1(c echo.Context) (any, error) {
	input, err := bindCredentials(c)
	if err != nil {
		return nil, err
	}

	out, err := h.authUC.SignUpAccessOnly(c.Request().Context(), input)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return response.AccessTokenResponse{AccessToken: out.AccessToken}, nil
}

// SignInV1 authenticates and returns an access token only.
func (h *AuthHandler) SignInV1(c echo.Context) (any, error) {
	input, err := bindCredentials(c)
	if err != nil {
		return nil, err
	}

	out, err := h.authUC.SignInAccessOnly(c.Request().Context(), input)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return response.AccessTokenResponse{AccessToken: out.AccessToken}, nil
}

// Logout clears the caller's refresh session.
func (h *AuthHandler) Logout(c echo.Context) (any, error) {
	identity, err := requireIdentity(c)
	if err != nil {
		return nil, err
	}

	if err := h.authUC.Logout(c.Request().Context(), identity.UserID); err != nil {
		return nil, errors.WithStack(err)
	}

	return response.StatusResponse{StatusCode: http.StatusOK, Message: "Logout successful"}, nil
}

// Refresh rotates the token pair using the bearer refresh token.
func (h *AuthHandler) Refresh(c echo.Context) (any, error) {
	identity, err := requireIdentity(c)
	if err != nil {
		return nil, err
	}

	pair, err := h.authUC.RefreshTokens(c.Request().Context(), usecase.RefreshInput{
		Identity:     identity,
		RefreshToken: deliverycontext.GetBearerToken(c),
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return response.TokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func bindCredentials(c echo.Context) (usecase.CredentialsInput, error) {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return usecase.CredentialsInput{}, domainerrors.ErrValidationFailed.WrapMessage("malformed request body")
	}

	if err := c.Validate(&req); err != nil {
		return usecase.CredentialsInput{}, errors.WithStack(err)
	}

	return usecase.CredentialsInput{Email: req.Email, Password: req.Password}, nil
}

// requireIdentity reads what the guard stored. A missing identity means the
// route was registered without a guard.
func requireIdentity(c echo.Context) (entity.Identity, error) {
	identity, ok := deliverycontext.GetIdentity(c)
	if !ok {
		return identity, domainerrors.ErrTokenInvalid.WrapMessage("no authenticated identity on request")
	}

	return identity, nil
}
