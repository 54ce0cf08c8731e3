package handler

import (
	"context"
	"net/http"
	"time"

	"authsvc/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler is the constructor for HealthHandler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck reports 200 when the database answers a ping, 503 otherwise.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			return response.JSON(c, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}

	return response.JSON(c, http.StatusOK, map[string]string{"status": "ok"})
}
