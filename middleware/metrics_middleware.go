package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"permanode/metrics"
)

// MetricsMiddleware records APIRequestDuration per route template.
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.APIRequestDuration.
				WithLabelValues(route, strconv.Itoa(responseStatus(c, err))).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
