package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

// CreateOrder creates the order and the gateway payment intent in one call.
func (c *Client) CreateOrder(ctx context.Context, req transport.CheckoutRequest) (transport.CheckoutResponse, error) {
	var resp transport.CheckoutResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/orders", body: req, auth: authRequired}, &resp)
	return resp, err
}

func (c *Client) VerifyPayment(ctx context.Context, res transport.PaymentResult) (models.Order, error) {
	var o models.Order
	err := c.do(ctx, request{method: http.MethodPost, path: "/orders/verify-payment", body: res, auth: authRequired}, &o)
	return o, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	err := c.do(ctx, request{method: http.MethodGet, path: "/orders/" + escape(id), auth: authRequired}, &o)
	return o, err
}

func (c *Client) MyOrders(ctx context.Context, page int) (transport.Page[models.Order], error) {
	var p transport.Page[models.Order]
	err := c.do(ctx, request{method: http.MethodGet, path: "/orders/mine", query: pageQuery(page), auth: authRequired}, &p)
	return p, err
}

func (c *Client) SellerOrders(ctx context.Context, page int) (transport.Page[models.Order], error) {
	var p transport.Page[models.Order]
	err := c.do(ctx, request{method: http.MethodGet, path: "/orders/seller", query: pageQuery(page), auth: authRequired}, &p)
	return p, err
}
