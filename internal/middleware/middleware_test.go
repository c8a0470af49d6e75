package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_WritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	for _, m := range Common(logging.NewWithWriter(&buf, "debug")) {
		e.Use(m)
	}
	e.GET("/things/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("handler_ran")
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/7", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	rid := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, rid)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var handler, access map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &handler))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &access))
	assert.Equal(t, "handler_ran", handler["msg"])
	assert.Equal(t, rid, handler["request_id"])

	assert.Equal(t, "http_request", access["msg"])
	assert.Equal(t, "WARN", access["level"])
	assert.Equal(t, "/things/:id", access["route"])
	assert.EqualValues(t, http.StatusNotFound, access["status"])
	assert.Contains(t, access["error"], "missing")
}

func TestAccessLevel(t *testing.T) {
	tests := []struct {
		route  string
		status int
		want   slog.Level
	}{
		{"/api/v1/cart", http.StatusOK, slog.LevelInfo},
		{"/health/live", http.StatusOK, slog.LevelDebug},
		{"/health/ready", http.StatusServiceUnavailable, slog.LevelError},
		{"/api/v1/cart", http.StatusConflict, slog.LevelWarn},
		{"/api/v1/cart", http.StatusBadGateway, slog.LevelError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, accessLevel(tt.route, tt.status), "%s %d", tt.route, tt.status)
	}
}

func TestGuards_WithoutWorkspace(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/supplier", ok, RequireSupplier)
	e.GET("/admin", ok, RequireRole("Admin"))

	for _, path := range []string{"/supplier", "/admin"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
