package handler

import (
	"time"

	"authsvc/internal/delivery/api/response"
	"authsvc/internal/errors"
	"authsvc/internal/usecase"

	"github.com/labstack/echo/v4"
)

// UserHandler serves the authenticated user's own profile.
type UserHandler struct {
	authUC usecase.AuthUsecase
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(authUC usecase.AuthUsecase) *UserHandler {
	return &UserHandler{authUC: authUC}
}

// Me returns the caller's id, email and timestamps.
func (h *UserHandler) Me(c echo.Context) (any, error) {
	identity, err := requireIdentity(c)
	if err != nil {
		return nil, err
	}

	user, err := h.authUC.CurrentUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return response.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}
