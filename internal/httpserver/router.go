package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/middleware"
	"github.com/Skotchmaster/diamond_shop/internal/middleware/csrf"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/storefront"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	Hub        *storefront.Hub
	BackendURL string
	Logger     *slog.Logger

	CookieSecure bool
	// CSRF enables the double-submit check on state-changing routes when set.
	CSRF *csrf.Config
	// Ready backs /health/ready; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) error {
	e.HTTPErrorHandler = ErrorHandler

	for _, m := range middleware.Common(d.Logger) {
		e.Use(m)
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	assist, err := newAssistProxy(d.BackendURL, "/api/v1/assist", "/ai")
	if err != nil {
		return err
	}

	api := e.Group("/api/v1")
	if d.CSRF != nil {
		api.Use(csrf.Middleware(*d.CSRF))
	}
	api.Use(middleware.Workspace(d.Hub, d.CookieSecure))

	api.GET("/session", getSession)
	api.POST("/session/login", login)
	api.POST("/session/register", register)
	api.PUT("/session/profile", updateProfile)
	api.DELETE("/session", logout)
	api.DELETE("/session/account", deleteAccount)

	api.GET("/diamonds", listDiamonds)
	api.GET("/diamonds/:stockId", getDiamond)

	api.GET("/cart", getCart)
	api.POST("/cart", addToCart)
	api.DELETE("/cart/:id", removeFromCart)
	api.POST("/cart/:id/move", moveToWishlist)

	api.GET("/wishlist", getWishlist)
	api.POST("/wishlist", addToWishlist)
	api.DELETE("/wishlist/:id", removeFromWishlist)
	api.POST("/wishlist/:id/move", moveToCart)

	api.POST("/checkout", checkout)
	api.POST("/checkout/verify", verifyPayment)
	api.GET("/orders", myOrders)
	api.GET("/orders/:id", getOrder)

	api.GET("/addresses", listAddresses)
	api.POST("/addresses", createAddress)
	api.PUT("/addresses/:id", updateAddress)
	api.DELETE("/addresses/:id", deleteAddress)

	api.GET("/notifications", listNotifications)
	api.POST("/notifications/read-all", markAllRead)
	api.POST("/notifications/:id/read", markRead)

	api.POST("/status/:resource/reset", resetStatus)
	api.Match([]string{http.MethodGet, http.MethodPost}, "/assist/*", assist)

	supplier := api.Group("/supplier", middleware.RequireSupplier)
	supplier.GET("/inventory", listInventory)
	supplier.POST("/inventory", addInventory)
	supplier.GET("/inventory/:stockId", getInventoryItem)
	supplier.PUT("/inventory/:stockId", updateInventory)
	supplier.DELETE("/inventory/:stockId", deleteInventory)
	supplier.GET("/orders", sellerOrders)
	supplier.GET("/dashboard", dashboard)
	supplier.GET("/upload", uploadView)
	supplier.DELETE("/upload", discardUpload)
	supplier.POST("/upload/preview", previewUpload)
	supplier.POST("/upload/automap", autoMapUpload)
	supplier.PUT("/upload/mapping", setUploadMapping)
	supplier.POST("/upload/submit", submitUpload)

	admin := api.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.GET("/users", listUsers)
	admin.PUT("/users/:id/approval", setApproval)
	admin.DELETE("/users/:id", deleteUser)

	return nil
}
