package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/labstack/echo/v4"
)

func checkout(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	resp, err := ws.Orders.Checkout(c.Request().Context(), req)
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// verifyPayment receives the payment widget's callback payload.
func verifyPayment(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	var res transport.PaymentResult
	if err := c.Bind(&res); err != nil {
		return badRequest(c, "invalid body")
	}
	o, err := ws.Orders.VerifyPayment(c.Request().Context(), res)
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func myOrders(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	err := ws.Orders.FetchMine(c.Request().Context(), pageParam(c))
	return collection(c, ws.Orders.Mine, err)
}

func getOrder(c echo.Context) error {
	ws := middleware.WorkspaceFrom(c)
	_, err := ws.Orders.Order(c.Request().Context(), c.Param("id"))
	return entity(c, ws.Orders.Detail, err)
}
