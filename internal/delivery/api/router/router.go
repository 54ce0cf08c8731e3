// Package router contains the API route table and its registration on echo.
package router

import (
	"fmt"
	"net/http"

	"authsvc/internal/delivery/api/middleware"
	"authsvc/internal/delivery/api/response"
	"authsvc/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
)

// HandlerFunc returns the success body; the router writes it with the
// route's status.
type HandlerFunc func(c echo.Context) (any, error)

// Route is one row of the route table: a (method, path, version) key and
// what serves it.
type Route struct {
	Method   string
	Path     string
	Versions []middleware.Version
	Strategy middleware.Strategy
	Status   int
	Handler  HandlerFunc
}

// RouterParams holds the router's dependencies.
type RouterParams struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
	Guard         *middleware.Guard
}

// Router registers the route table on an echo instance.
type Router struct {
	authHandler   *handler.AuthHandler
	userHandler   *handler.UserHandler
	healthHandler *handler.HealthHandler
	guard         *middleware.Guard
}

// NewRouter is the constructor for Router.
func NewRouter(params RouterParams) *Router {
	return &Router{
		authHandler:   params.AuthHandler,
		userHandler:   params.UserHandler,
		healthHandler: params.HealthHandler,
		guard:         params.Guard,
	}
}

// Routes is the versioned route table.
func (r *Router) Routes() []Route {
	return []Route{
		{http.MethodPost, "/auth/signup", versions(middleware.V1), middleware.StrategyPublic, http.StatusCreated, r.authHandler.SignUpV1},
		{http.MethodPost, "/auth/signin", versions(middleware.V1), middleware.StrategyPublic, http.StatusOK, r.authHandler.SignInV1},
		{http.MethodPost, "/auth/signup", versions(middleware.V2), middleware.StrategyPublic, http.StatusCreated, r.authHandler.SignUp},
		{http.MethodPost, "/auth/signin", versions(middleware.V2), middleware.StrategyPublic, http.StatusOK, r.authHandler.SignIn},
		{http.MethodPost, "/auth/logout", versions(middleware.V2), middleware.StrategyAccess, http.StatusOK, r.authHandler.Logout},
		{http.MethodPost, "/auth/refresh", versions(middleware.V2), middleware.StrategyRefresh, http.StatusOK, r.authHandler.Refresh},
		{http.MethodGet, "/users/me", versions(middleware.V1, middleware.V2), middleware.StrategyAccess, http.StatusOK, r.userHandler.Me},
	}
}

// RegisterRoutes adds one echo route per (method, path) that dispatches on
// the requested version. Unknown or missing versions get 404.
func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.healthHandler.HealthCheck)

	type endpoint struct{ method, path string }

	dispatch := make(map[endpoint]map[middleware.Version]echo.HandlerFunc)
	var order []endpoint
	for _, route := range r.Routes() {
		key := endpoint{route.Method, route.Path}
		if _, ok := dispatch[key]; !ok {
			dispatch[key] = make(map[middleware.Version]echo.HandlerFunc)
			order = append(order, key)
		}

		h := r.guard.Require(route.Strategy)(write(route))
		for _, v := range route.Versions {
			if _, dup := dispatch[key][v]; dup {
				panic(fmt.Sprintf("duplicate route %s %s v=%s", route.Method, route.Path, v))
			}
			dispatch[key][v] = h
		}
	}

	for _, key := range order {
		e.Add(key.method, key.path, byVersion(dispatch[key]))
	}
}

func byVersion(handlers map[middleware.Version]echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		v, ok := middleware.RequestedVersion(c.Request())
		if !ok {
			return echo.ErrNotFound
		}

		h, ok := handlers[v]
		if !ok {
			return echo.ErrNotFound
		}

		return h(c)
	}
}

func write(route Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := route.Handler(c)
		if err != nil {
			return err
		}

		return response.JSON(c, route.Status, body)
	}
}

func versions(v ...middleware.Version) []middleware.Version {
	return v
}
