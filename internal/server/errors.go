package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-formscreen/internal/logging"
)

// newHTTPErrorHandler maps orchestrator errors to status codes and answers
// with {"error": message}. Server errors are logged, not echoed, unless the
// server runs in debug mode.
func newHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code    int
			message any
		)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.Internal != nil {
				if inner, ok := httpErr.Internal.(*echo.HTTPError); ok {
					httpErr = inner
				}
			}
			code = httpErr.Code
			message = httpErr.Message
		} else {
			code = statusFor(err)
			if code == http.StatusInternalServerError {
				message = http.StatusText(code)
				logger.Error("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
			} else {
				message = err.Error()
			}
		}

		if c.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, message)
		}
		if err != nil {
			logger.Error("write error response", "error", err)
		}
	}
}

// requestLogger logs one line per request and seeds the request context
// with the logger so handlers can add attributes.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			ctx := logging.WithLogger(req.Context(), logger.With("method", req.Method, "path", req.URL.Path))
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logging.FromContext(ctx).Info("request",
				"status", c.Response().Status,
				"duration", time.Since(start),
			)
			return nil
		}
	}
}
