package auth

import (
	"strconv"
	"time"

	"authsvc/config"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// issuedAtSkew is how far in the future a token's iat may be. Tokens are
// minted by every instance, so a peer with a slightly fast clock must not
// produce tokens this instance rejects. Expiry is not relaxed.
const issuedAtSkew = 5 * time.Second

type signingKey struct {
	secret []byte
	ttl    time.Duration
}

// jwtService implements service.TokenService with HS256 JWTs. Access and
// refresh tokens use independent secrets.
type jwtService struct {
	keys map[service.TokenKind]signingKey
	now  func() time.Time
}

// NewJWTService builds the token service from the configured secrets and TTLs.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}
	if cfg.SecretKey.Access == cfg.SecretKey.Refresh {
		return nil, errors.New("access and refresh secrets must differ")
	}

	accessTTL, refreshTTL := 15*time.Minute, 7*24*time.Hour
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTL > 0 {
			accessTTL = cfg.Auth.AccessTokenTTL
		}
		if cfg.Auth.RefreshTokenTTL > 0 {
			refreshTTL = cfg.Auth.RefreshTokenTTL
		}
	}

	return &jwtService{
		keys: map[service.TokenKind]signingKey{
			service.TokenKindAccess:  {secret: []byte(cfg.SecretKey.Access), ttl: accessTTL},
			service.TokenKindRefresh: {secret: []byte(cfg.SecretKey.Refresh), ttl: refreshTTL},
		},
		now: time.Now,
	}, nil
}

// Sign mints a token of the given kind. Every token gets a random jti so two
// tokens minted within the same second never compare equal.
func (s *jwtService) Sign(kind service.TokenKind, identity entity.Identity) (string, error) {
	key, ok := s.keys[kind]
	if !ok {
		return "", errors.Errorf("unknown token kind %q", kind)
	}

	now := s.now()
	claims := service.Claims{
		Email: identity.Email,
		Type:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(identity.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(key.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.secret)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign %s token", kind)
	}

	return signed, nil
}

// Verify parses token with the secret bound to kind.
func (s *jwtService) Verify(kind service.TokenKind, token string) (*entity.Identity, error) {
	key, ok := s.keys[kind]
	if !ok {
		return nil, errors.Errorf("unknown token kind %q", kind)
	}

	claims := &service.Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage(err.Error())
	}

	if claims.IssuedAt == nil || claims.IssuedAt.After(s.now().Add(issuedAtSkew)) {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token used before issued")
	}

	if claims.Type != kind {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("unexpected token type " + string(claims.Type))
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("malformed subject")
	}

	return &entity.Identity{UserID: userID, Email: claims.Email}, nil
}
