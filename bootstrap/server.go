package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"permanode/config"
	appmiddleware "permanode/middleware"
	"permanode/rest"
)

const shutdownTimeout = 10 * time.Second

// NewHTTPServer creates and configures the Echo HTTP server for the query API.
func NewHTTPServer(api config.APIConfig, query rest.QueryService, health rest.HealthChecker, log *slog.Logger, otelEnabled bool, otelServiceName string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = appmiddleware.CustomHTTPErrorHandler(log)

	if otelEnabled {
		e.Use(otelecho.Middleware(otelServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	e.Use(appmiddleware.RequestIDMiddleware())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.InfoContext(c.Request().Context(), "HTTP request completed",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"error", v.Error)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))
	e.Use(appmiddleware.MetricsMiddleware())
	e.Use(appmiddleware.RateLimitMiddleware(api.RateLimit, api.RateBurst))
	if api.RequestTimeout > 0 {
		e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: api.RequestTimeout,
		}))
	}

	rest.RegisterRoutes(e, rest.NewHandler(query), health)
	return e
}

// serveHTTP runs e on addr until ctx is cancelled, then shuts it down.
func serveHTTP(ctx context.Context, e *echo.Echo, addr string, log *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", addr)
		errc <- e.Start(addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
		return err
	}
	<-errc
	return nil
}
