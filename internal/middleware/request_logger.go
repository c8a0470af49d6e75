package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/labstack/echo/v4"
)

// RequestLogger puts a request-scoped logger into the request context and
// writes one access line per request once the handler and the error handler
// have run.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}
			l := base.With("request_id", rid, "method", req.Method, "route", c.Path())
			ctx := logging.IntoContext(req.Context(), l)
			c.SetRequest(req.WithContext(ctx))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			attrs := []any{
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"bytes", c.Response().Size,
				"remote_ip", c.RealIP(),
			}
			if ws := WorkspaceFrom(c); ws != nil {
				attrs = append(attrs, "workspace", ws.ID)
				if s := ws.Session.Current(); s.LoggedIn() {
					attrs = append(attrs, "user_id", s.UserID)
				}
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			l.Log(ctx, accessLevel(c.Path(), status), "http_request", attrs...)
			return nil
		}
	}
}

func accessLevel(route string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case strings.HasPrefix(route, "/health/"):
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
