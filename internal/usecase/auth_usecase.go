// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"authsvc/internal/domain/entity"
)

// --- Input DTOs ---

// CredentialsInput is the email/password pair accepted by signup and signin.
type CredentialsInput struct {
	Email    string
	Password string
}

// RefreshInput carries the identity resolved from a verified refresh token
// together with the raw token, which is checked against the stored hash.
type RefreshInput struct {
	Identity     entity.Identity
	RefreshToken string
}

// --- Output DTOs ---

// AccessTokenOutput is returned by the stateless v1 flows.
type AccessTokenOutput struct {
	AccessToken string
}

// AuthUsecase defines the authentication operations the delivery layer
// depends on.
//
// A user is logged in exactly when a refresh token hash is stored for them.
// SignUp, SignIn and RefreshTokens overwrite that hash; Logout clears it.
type AuthUsecase interface {
	SignUp(ctx context.Context, input CredentialsInput) (*entity.TokenPair, error)
	SignIn(ctx context.Context, input CredentialsInput) (*entity.TokenPair, error)
	Logout(ctx context.Context, userID uint64) error
	RefreshTokens(ctx context.Context, input RefreshInput) (*entity.TokenPair, error)

	// SignUpAccessOnly and SignInAccessOnly never touch the stored refresh hash.
	SignUpAccessOnly(ctx context.Context, input CredentialsInput) (*AccessTokenOutput, error)
	SignInAccessOnly(ctx context.Context, input CredentialsInput) (*AccessTokenOutput, error)

	CurrentUser(ctx context.Context, userID uint64) (*entity.User, error)
}
