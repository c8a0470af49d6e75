package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/labstack/echo/v4"
)

func listUsers(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	f := transport.UserFilter{
		Page:   pageParam(c),
		Search: c.QueryParam("search"),
		Role:   models.Role(c.QueryParam("role")),
	}
	err := ws.Users.Fetch(c.Request().Context(), f)
	return collection(c, ws.Users.Items, err)
}

func setApproval(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var req transport.ApprovalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	_, err := ws.Users.SetApproval(c.Request().Context(), c.Param("id"), req.Approval)
	return mutated(c, ws.Users.Items, err, http.StatusOK)
}

func deleteUser(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Users.Delete(c.Request().Context(), c.Param("id"))
	if err == nil && !ws.Session.LoggedIn() {
		return c.NoContent(http.StatusNoContent)
	}
	return mutated(c, ws.Users.Items, err, http.StatusOK)
}
