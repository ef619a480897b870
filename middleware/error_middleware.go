// Package middleware holds the echo middleware of the query API.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"permanode/logger"
	apperrors "permanode/utils/errors"
)

const safeInternalMessage = "An unexpected error occurred. Please try again later."

// CustomHTTPErrorHandler renders every handler error as a SecureHTTPResponse.
// AppContextErrors keep their code; echo errors keep their status with 5xx
// messages hidden; anything else is a 500.
func CustomHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		ctx := c.Request().Context()
		requestID, _ := ctx.Value(logger.RequestIDKey).(string)

		var response apperrors.SecureHTTPResponse
		var status int

		var appErr *apperrors.AppContextError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			status = appErr.HTTPStatusCode()
			response = appErr.ToSecureHTTPResponse()

			level := slog.LevelWarn
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(ctx, level, "application error",
				"request_id", requestID,
				"error_id", appErr.ErrorID,
				"code", appErr.Code,
				"message", appErr.Message,
				"layer", appErr.Layer,
				"component", appErr.Component,
				"operation", appErr.Operation,
				"cause", appErr.Cause,
				"context", appErr.Context,
			)

		case errors.As(err, &httpErr):
			status = httpErr.Code
			msg := http.StatusText(status)
			if m, ok := httpErr.Message.(string); ok {
				msg = m
			}
			safeMsg := msg
			if status >= http.StatusInternalServerError {
				safeMsg = safeInternalMessage
			}
			response = apperrors.SecureHTTPResponse{
				Error: apperrors.SecureErrorDetail{
					Code:      "HTTP_ERROR",
					Message:   safeMsg,
					Retryable: apperrors.IsRetryableHTTPStatus(status),
				},
			}
			log.WarnContext(ctx, "HTTP error",
				"request_id", requestID,
				"status", status,
				"message", msg,
			)

		default:
			status = http.StatusInternalServerError
			response = apperrors.SecureHTTPResponse{
				Error: apperrors.SecureErrorDetail{
					Code:    apperrors.CodeInternal,
					Message: safeInternalMessage,
				},
			}
			log.ErrorContext(ctx, "unhandled error",
				"request_id", requestID,
				"error", err.Error(),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, response)
		}
		if err != nil {
			log.ErrorContext(ctx, "failed to send error response", "request_id", requestID, "error", err)
		}
	}
}
