package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/storefront"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie = "sid"
	CtxWorkspace  = "workspace"

	sessionCookieTTL = 30 * 24 * time.Hour
)

// Workspace binds the request to the workspace of its session cookie. A new
// session id is issued when the cookie is missing, malformed or names a
// session the hub does not know.
func Workspace(hub *storefront.Hub, secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var (
				ws  *storefront.Workspace
				err error
			)
			if ck, cerr := c.Cookie(SessionCookie); cerr == nil && storefront.ValidID(ck.Value) {
				ws, err = hub.Resume(ctx, ck.Value)
				if errors.Is(err, storefront.ErrUnknownSession) {
					ws, err = nil, nil
				}
			}
			if ws == nil && err == nil {
				id := storefront.NewID()
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(sessionCookieTTL),
				})
				ws, err = hub.Workspace(ctx, id)
			}
			if err != nil {
				logging.FromContext(ctx).Error("workspace_unavailable", "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
			}

			l := logging.FromContext(ctx).With("workspace", ws.ID)
			if s := ws.Session.Current(); s.LoggedIn() {
				l = l.With("user_id", s.UserID, "role", s.Role)
			}
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
			c.Set(CtxWorkspace, ws)
			return next(c)
		}
	}
}

// WorkspaceFrom returns the workspace bound by Workspace.
func WorkspaceFrom(c echo.Context) *storefront.Workspace {
	ws, _ := c.Get(CtxWorkspace).(*storefront.Workspace)
	return ws
}
