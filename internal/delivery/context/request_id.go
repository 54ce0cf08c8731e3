package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ContextKey namespaces the values this package stores on echo and request contexts.
type ContextKey string

const (
	// KeyRequestID is the echo.Context key for the request ID.
	KeyRequestID ContextKey = "request_id"

	// KeyLogger is the request context key for the logger tagged with the request ID.
	KeyLogger ContextKey = "logger"

	// HeaderXRequestID carries the request ID in both directions.
	HeaderXRequestID = "X-Request-Id"
)

// BindRequestID records requestID on c and its response, and puts a child of
// base tagged with it on the request context so services below the handler
// log with it. The child logger is returned.
func BindRequestID(c echo.Context, requestID string, base *slog.Logger) *slog.Logger {
	c.Set(string(KeyRequestID), requestID)
	c.Response().Header().Set(HeaderXRequestID, requestID)

	logger := base.With(slog.String("request_id", requestID))
	req := c.Request()
	c.SetRequest(req.WithContext(context.WithValue(req.Context(), KeyLogger, logger)))

	return logger
}

// GetRequestID returns the ID bound to c. Errors raised before the request ID
// middleware ran still get a fresh one so the error envelope is never blank.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(string(KeyRequestID)).(string); ok && id != "" {
		return id
	}

	return uuid.New().String()
}

// GetLoggerOrDefault returns the request-scoped logger, or fallback outside a request.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
