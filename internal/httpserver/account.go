package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/labstack/echo/v4"
)

func listAddresses(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Addresses.Fetch(c.Request().Context())
	return collection(c, ws.Addresses.Items, err)
}

func createAddress(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var a models.Address
	if err := c.Bind(&a); err != nil {
		return badRequest(c, "invalid body")
	}
	_, err := ws.Addresses.Create(c.Request().Context(), a)
	return mutated(c, ws.Addresses.Items, err, http.StatusCreated)
}

func updateAddress(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var a models.Address
	if err := c.Bind(&a); err != nil {
		return badRequest(c, "invalid body")
	}
	_, err := ws.Addresses.Update(c.Request().Context(), c.Param("id"), a)
	return mutated(c, ws.Addresses.Items, err, http.StatusOK)
}

func deleteAddress(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Addresses.Delete(c.Request().Context(), c.Param("id"))
	return mutated(c, ws.Addresses.Items, err, http.StatusOK)
}

func listNotifications(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Notifications.Fetch(c.Request().Context())
	return collection(c, ws.Notifications.Items, err)
}

func markRead(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	_, err := ws.Notifications.MarkRead(c.Request().Context(), c.Param("id"))
	return mutated(c, ws.Notifications.Items, err, http.StatusOK)
}

func markAllRead(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Notifications.MarkAllRead(c.Request().Context())
	return mutated(c, ws.Notifications.Items, err, http.StatusOK)
}

func resetStatus(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	if err := ws.Reset(c.Param("resource")); err != nil {
		return failure(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
