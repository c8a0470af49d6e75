package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	"github.com/Skotchmaster/diamond_shop/internal/middleware/csrf"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/labstack/echo/v4"
)

func getSession(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	return c.JSON(http.StatusOK, publicSession(ws.Session.Current()))
}

func login(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}
	s, err := ws.Login(c.Request().Context(), req)
	if err != nil {
		return failure(c, err)
	}
	rotateCSRF(c)
	return c.JSON(http.StatusOK, publicSession(s))
}

func register(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Role == "" {
		req.Role = models.RoleBuyer
	}
	if !req.Role.Valid() {
		return badRequest(c, "role must be Buyer or Supplier")
	}
	s, err := ws.Register(c.Request().Context(), req)
	if err != nil {
		return failure(c, err)
	}
	if s.LoggedIn() {
		rotateCSRF(c)
	}
	return c.JSON(http.StatusCreated, publicSession(s))
}

func updateProfile(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	s, err := ws.Session.UpdateProfile(c.Request().Context(), req)
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(http.StatusOK, publicSession(s))
}

func logout(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	if err := ws.Logout(c.Request().Context()); err != nil {
		return failure(c, err)
	}
	rotateCSRF(c)
	return c.NoContent(http.StatusNoContent)
}

// deleteAccount removes the caller's own account, which also ends the session.
func deleteAccount(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	s := ws.Session.Current()
	if !s.LoggedIn() {
		return failure(c, apiclient.ErrUnauthorized)
	}
	if err := ws.Users.Delete(c.Request().Context(), s.UserID); err != nil {
		return failure(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func rotateCSRF(c echo.Context) {
	if err := csrf.Rotate(c); err != nil {
		logging.FromContext(c.Request().Context()).Warn("csrf_rotate_failed", "error", err)
	}
}
