package middleware

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/labstack/echo/v4"
)

func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ws := WorkspaceFrom(c)
			if ws == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "no session")
			}
			if err := ws.Session.RequireRole(roles...); err != nil {
				return guardError(err)
			}
			return next(c)
		}
	}
}

// RequireSupplier admits approved suppliers and admins.
func RequireSupplier(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws := WorkspaceFrom(c)
		if ws == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "no session")
		}
		if err := ws.Session.RequireApprovedSupplier(); err != nil {
			return guardError(err)
		}
		return next(c)
	}
}

func guardError(err error) *echo.HTTPError {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return echo.NewHTTPError(http.StatusUnauthorized, remote.ErrorMessage(err))
	}
	return echo.NewHTTPError(http.StatusForbidden, remote.ErrorMessage(err)).SetInternal(err)
}
