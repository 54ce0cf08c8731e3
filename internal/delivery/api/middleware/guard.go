package middleware

import (
	"strings"

	deliverycontext "authsvc/internal/delivery/context"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"

	"github.com/labstack/echo/v4"
)

// Strategy selects how a route authenticates its caller.
type Strategy int

const (
	// StrategyPublic lets every request through.
	StrategyPublic Strategy = iota
	// StrategyAccess requires a bearer access token.
	StrategyAccess
	// StrategyRefresh requires a bearer refresh token. The raw token is kept
	// on the context for the stored-hash comparison.
	StrategyRefresh
)

func (s Strategy) String() string {
	switch s {
	case StrategyPublic:
		return "public"
	case StrategyAccess:
		return "access"
	case StrategyRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Guard authenticates bearer tokens before the handler runs.
type Guard struct {
	tokens service.TokenService
}

// NewGuard is the constructor for Guard.
func NewGuard(tokens service.TokenService) *Guard {
	return &Guard{tokens: tokens}
}

// Require returns middleware enforcing strategy. Failures surface as
// ErrTokenInvalid (401) and never reach the handler.
func (g *Guard) Require(strategy Strategy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		var kind service.TokenKind
		switch strategy {
		case StrategyPublic:
			return next
		case StrategyAccess:
			kind = service.TokenKindAccess
		case StrategyRefresh:
			kind = service.TokenKindRefresh
		default:
			panic("unknown guard strategy: " + strategy.String())
		}

		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			identity, err := g.tokens.Verify(kind, token)
			if err != nil {
				return errors.WithStack(err)
			}

			deliverycontext.SetIdentity(c, *identity, token)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", domainerrors.ErrTokenInvalid.WrapMessage("authorization header is missing")
	}

	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", domainerrors.ErrTokenInvalid.WrapMessage("authorization header must be a bearer token")
	}

	return token, nil
}
