package service

import (
	"authsvc/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind selects the secret and lifetime a token is signed with.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims are the JWT claims carried by both token kinds.
// The subject is the decimal user ID.
type Claims struct {
	Email string    `json:"email"`
	Type  TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access and refresh tokens. Each kind is
// bound to its own secret, so one kind can never be verified as the other.
type TokenService interface {
	// Sign mints a token of the given kind for identity.
	Sign(kind TokenKind, identity entity.Identity) (string, error)

	// Verify checks signature, structure, type and expiry, and returns the
	// identity the token was issued to. Failures wrap domainerrors.ErrTokenInvalid.
	Verify(kind TokenKind, token string) (*entity.Identity, error)
}
