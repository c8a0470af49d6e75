package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	"github.com/Skotchmaster/diamond_shop/internal/storefront"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/labstack/echo/v4"
)

func getCart(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Cart.Fetch(c.Request().Context())
	return collection(c, ws.Cart.Items, err)
}

func addToCart(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var req transport.CollectionAddRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	_, err := ws.Cart.Add(c.Request().Context(), req.DiamondID)
	return mutated(c, ws.Cart.Items, err, http.StatusCreated)
}

func removeFromCart(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Cart.Remove(c.Request().Context(), c.Param("id"))
	return mutated(c, ws.Cart.Items, err, http.StatusOK)
}

func moveToWishlist(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	_, err := ws.Cart.MoveToWishlist(c.Request().Context(), c.Param("id"), ws.Wishlist)
	return c.JSON(statusFor(err), shelvesView(ws))
}

func getWishlist(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Wishlist.Fetch(c.Request().Context())
	return collection(c, ws.Wishlist.Items, err)
}

func addToWishlist(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var req transport.CollectionAddRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	_, err := ws.Wishlist.Add(c.Request().Context(), req.DiamondID)
	return mutated(c, ws.Wishlist.Items, err, http.StatusCreated)
}

func removeFromWishlist(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Wishlist.Remove(c.Request().Context(), c.Param("id"))
	return mutated(c, ws.Wishlist.Items, err, http.StatusOK)
}

func moveToCart(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	_, err := ws.Wishlist.MoveToCart(c.Request().Context(), c.Param("id"), ws.Cart)
	return c.JSON(statusFor(err), shelvesView(ws))
}

func shelvesView(ws *storefront.Workspace) echo.Map {
	return echo.Map{
		"cart":     ws.Cart.Items.View(),
		"wishlist": ws.Wishlist.Items.View(),
	}
}
