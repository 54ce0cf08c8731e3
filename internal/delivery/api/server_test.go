package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"authsvc/config"
	"authsvc/internal/delivery/api/middleware"
	"authsvc/internal/delivery/api/response"
	"authsvc/internal/delivery/api/router"
	"authsvc/internal/delivery/api/router/handler"
	"authsvc/internal/infra/auth"
	"authsvc/internal/infra/persistence/postgres"
	"authsvc/internal/infra/persistence/testdb"
	"authsvc/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	acceptV1 = "application/json;v=1"
	acceptV2 = "application/json;v=2"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{Access: "e2e-access", Refresh: "e2e-refresh"},
		Auth:      &config.AuthConfig{PasswordMaxLength: 64},
	}
	cfg.HTTP.MaxRequestBodySize = "16KB"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db := testdb.New(t)
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		TxManager: postgres.NewTransactionManager(db),
		UserRepo:  postgres.NewUserRepository(db),
		Hasher: auth.NewArgon2Hasher(&config.PasswordHashConfig{
			MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
		}),
		TokenService: tokens,
		Logger:       logger,
	})

	sqlDB, err := db.DB()
	require.NoError(t, err)

	r := router.NewRouter(router.RouterParams{
		AuthHandler:   handler.NewAuthHandler(authUC, logger),
		UserHandler:   handler.NewUserHandler(authUC),
		HealthHandler: handler.NewHealthHandler(sqlDB),
		Guard:         middleware.NewGuard(tokens),
	})

	return NewEcho(cfg, logger, r)
}

type call struct {
	method string
	path   string
	accept string
	bearer string
	body   string
}

func do(t *testing.T, e *echo.Echo, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if c.accept != "" {
		req.Header.Set(echo.HeaderAccept, c.accept)
	}
	if c.bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.bearer)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	body := decode[response.ErrorResponse](t, rec)
	require.NotNil(t, body.Error)

	return body.Error.Code
}

const creds = `{"email":"a@x.com","password":"p1"}`

func TestServer_V2SessionLifecycle(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, call{method: http.MethodPost, path: "/auth/signup", accept: acceptV2, body: creds})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	t1 := decode[response.TokenPairResponse](t, rec)
	require.NotEmpty(t, t1.AccessToken)
	require.NotEmpty(t, t1.RefreshToken)

	rec = do(t, e, call{method: http.MethodPost, path: "/auth/refresh", accept: acceptV2, bearer: t1.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	t2 := decode[response.TokenPairResponse](t, rec)
	assert.NotEqual(t, t1.RefreshToken, t2.RefreshToken)

	// The rotated-out token is spent.
	rec = do(t, e, call{method: http.MethodPost, path: "/auth/refresh", accept: acceptV2, bearer: t1.RefreshToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "REFRESH_DENIED", errorCode(t, rec))

	rec = do(t, e, call{method: http.MethodPost, path: "/auth/logout", accept: acceptV2, bearer: t2.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.StatusResponse{StatusCode: 200, Message: "Logout successful"}, decode[response.StatusResponse](t, rec))

	rec = do(t, e, call{method: http.MethodPost, path: "/auth/refresh", accept: acceptV2, bearer: t2.RefreshToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, call{method: http.MethodPost, path: "/auth/signin", accept: acceptV2, body: creds})
	require.Equal(t, http.StatusOK, rec.Code)
	t3 := decode[response.TokenPairResponse](t, rec)

	rec = do(t, e, call{method: http.MethodPost, path: "/auth/refresh", accept: acceptV2, bearer: t3.RefreshToken})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_SignUpTwice(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, call{method: http.MethodPost, path: "/auth/signup", accept: acceptV2, body: creds})
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, accept := range []string{acceptV1, acceptV2} {
		rec = do(t, e, call{method: http.MethodPost, path: "/auth/signup", accept: accept, body: creds})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "CREDENTIALS_TAKEN", errorCode(t, rec))
	}
}

func TestServer_SignInFailuresLookTheSame(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, call{method: http.MethodPost, path: "/auth/signup", accept: acceptV2, body: creds})
	require.Equal(t, http.StatusCreated, rec.Code)

	wrong := do(t, e, call{method: http.MethodPost, path: "/auth/signin", accept: acceptV2, body: `{"email":"a@x.com","password":"nope"}`})
	unknown := do(t, e, call{method: http.MethodPost, path: "/auth/signin", accept: acceptV2, body: `{"email":"b@x.com","password":"p1"}`})

	assert.Equal(t, http.StatusForbidden, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, decode[response.ErrorResponse](t, wrong).Error, decode[response.ErrorResponse](t, unknown).Error)
}

func TestServer_V1AccessOnly(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, call{method: http.MethodPost, path: "/auth/signup", accept: acceptV1, body: creds})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]string](t, rec)
	assert.NotEmpty(t, body["access_token"])
	assert.NotContains(t, body, "refresh_token")

	rec = do(t, e, call{method: http.MethodPost, path: "/auth/signin", accept: acceptV1, body: creds})
	require.Equal(t, http.StatusOK, rec.Code)
	accessToken := decode[response.AccessTokenResponse](t, rec).AccessToken

	rec = do(t, e, call{method: http.MethodGet, path: "/users/me", accept: acceptV1, bearer: accessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[response.UserResponse](t, rec)
	assert.Equal(t, "a@x.com", me.Email)
	assert.NotZero(t, me.ID)

	// v1 has no logout or refresh routes.
	rec = do(t, e, call{method: http.MethodPost, path: "/auth/logout", accept: acceptV1, bearer: accessToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_VersionRequired(t *testing.T) {
	e := newTestServer(t)

	for _, accept := range []string{"", "application/json", "application/json;v=3"} {
		rec := do(t, e, call{method: http.MethodPost, path: "/auth/signup", accept: accept, body: creds})
		assert.Equal(t, http.StatusNotFound, rec.Code, "accept=%q", accept)
	}
}

func TestServer_GuardRejections(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, call{method: http.MethodPost, path: "/auth/signup", accept: acceptV2, body: creds})
	require.Equal(t, http.StatusCreated, rec.Code)
	pair := decode[response.TokenPairResponse](t, rec)

	tests := []struct {
		name string
		call call
	}{
		{"logout without token", call{method: http.MethodPost, path: "/auth/logout", accept: acceptV2}},
		{"logout with refresh token", call{method: http.MethodPost, path: "/auth/logout", accept: acceptV2, bearer: pair.RefreshToken}},
		{"refresh with access token", call{method: http.MethodPost, path: "/auth/refresh", accept: acceptV2, bearer: pair.AccessToken}},
		{"me with garbage", call{method: http.MethodGet, path: "/users/me", accept: acceptV2, bearer: "not.a.jwt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, tt.call)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec))
		})
	}
}

func TestServer_Validation(t *testing.T) {
	e := newTestServer(t)

	bodies := []string{
		`{"email":"not-an-email","password":"p1"}`,
		`{"email":"a@x.com"}`,
		`{"email":"a@x.com","password":"` + strings.Repeat("x", 65) + `"}`,
		`{"email":`,
	}
	for _, body := range bodies {
		rec := do(t, e, call{method: http.MethodPost, path: "/auth/signup", accept: acceptV2, body: body})
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, rec))
	}
}

func TestServer_Health(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, call{method: http.MethodGet, path: "/health"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}
