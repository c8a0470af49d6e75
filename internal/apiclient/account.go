package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var p transport.Page[models.Address]
	err := c.do(ctx, request{method: http.MethodGet, path: "/addresses", auth: authRequired}, &p)
	return p.Items, err
}

func (c *Client) CreateAddress(ctx context.Context, a models.Address) (models.Address, error) {
	var out models.Address
	err := c.do(ctx, request{method: http.MethodPost, path: "/addresses", body: a, auth: authRequired}, &out)
	return out, err
}

func (c *Client) UpdateAddress(ctx context.Context, id string, a models.Address) (models.Address, error) {
	var out models.Address
	err := c.do(ctx, request{method: http.MethodPut, path: "/addresses/" + escape(id), body: a, auth: authRequired}, &out)
	return out, err
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/addresses/" + escape(id), auth: authRequired}, nil)
}

func (c *Client) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var p transport.Page[models.Notification]
	err := c.do(ctx, request{method: http.MethodGet, path: "/notifications", auth: authRequired}, &p)
	return p.Items, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (models.Notification, error) {
	var n models.Notification
	err := c.do(ctx, request{method: http.MethodPatch, path: "/notifications/" + escape(id) + "/read", auth: authRequired}, &n)
	return n, err
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) ([]models.Notification, error) {
	var p transport.Page[models.Notification]
	err := c.do(ctx, request{method: http.MethodPatch, path: "/notifications/read-all", auth: authRequired}, &p)
	return p.Items, err
}

func (c *Client) SupplierDashboard(ctx context.Context) (models.DashboardStats, error) {
	var s models.DashboardStats
	err := c.do(ctx, request{method: http.MethodGet, path: "/dashboard/supplier", auth: authRequired}, &s)
	return s, err
}

func pageQuery(page int) url.Values {
	if page < 1 {
		return nil
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}
