package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

// RegisterRoutes mounts the query API, /health and /metrics.
func RegisterRoutes(e *echo.Echo, h *Handler, health HealthChecker) {
	e.GET("/health", healthHandler(health))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/:keyspace")
	api.GET("/messages", h.FindMessages)
	api.GET("/messages/:message_id", h.GetMessage)
	api.GET("/messages/:message_id/metadata", h.GetMetadata)
	api.GET("/messages/:message_id/children", h.GetChildren)
	api.GET("/milestones/:index", h.GetMilestone)
	api.GET("/sync", h.GetSync)
}

func healthHandler(check HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "storage": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}
}
