package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"permanode/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware takes X-Request-ID from the request or generates one,
// stores it in the request context and echoes it in the response.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(requestIDHeader)
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.NewString()
			}

			c.SetRequest(req.WithContext(logger.WithRequestID(req.Context(), requestID)))
			c.Response().Header().Set(requestIDHeader, requestID)
			return next(c)
		}
	}
}
