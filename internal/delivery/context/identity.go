package context

import (
	"authsvc/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

const (
	// KeyIdentity is the key for the identity resolved from the bearer token.
	KeyIdentity ContextKey = "identity"

	// KeyBearerToken is the key for the raw bearer token the identity came from.
	KeyBearerToken ContextKey = "bearer_token"
)

// SetIdentity stores the authenticated identity and its raw token in echo.Context.
func SetIdentity(c echo.Context, identity entity.Identity, token string) {
	c.Set(string(KeyIdentity), identity)
	c.Set(string(KeyBearerToken), token)
}

// GetIdentity extracts the authenticated identity from echo.Context.
func GetIdentity(c echo.Context) (entity.Identity, bool) {
	identity, ok := c.Get(string(KeyIdentity)).(entity.Identity)

	return identity, ok
}

// GetBearerToken returns the raw token the identity was resolved from.
func GetBearerToken(c echo.Context) string {
	token, _ := c.Get(string(KeyBearerToken)).(string)

	return token
}
