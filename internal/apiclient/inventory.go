package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

// ListDiamonds browses the public catalog; a token is attached when present.
func (c *Client) ListDiamonds(ctx context.Context, f transport.DiamondFilter) (transport.Page[models.Diamond], error) {
	var p transport.Page[models.Diamond]
	err := c.do(ctx, request{method: http.MethodGet, path: "/inventory", query: f.Values(), auth: authOptional}, &p)
	return p, err
}

func (c *Client) GetDiamond(ctx context.Context, stockID string) (models.Diamond, error) {
	var d models.Diamond
	err := c.do(ctx, request{method: http.MethodGet, path: "/inventory/" + escape(stockID), auth: authOptional}, &d)
	return d, err
}

// ListOwnInventory lists the logged-in supplier's stock.
func (c *Client) ListOwnInventory(ctx context.Context, f transport.DiamondFilter) (transport.Page[models.Diamond], error) {
	var p transport.Page[models.Diamond]
	err := c.do(ctx, request{method: http.MethodGet, path: "/inventory/mine", query: f.Values(), auth: authRequired}, &p)
	return p, err
}

func (c *Client) AddDiamond(ctx context.Context, payload map[string]any) (models.Diamond, error) {
	var d models.Diamond
	err := c.do(ctx, request{method: http.MethodPost, path: "/inventory", body: payload, auth: authRequired}, &d)
	return d, err
}

func (c *Client) UpdateDiamond(ctx context.Context, stockID string, payload map[string]any) (models.Diamond, error) {
	var d models.Diamond
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/inventory/" + escape(stockID),
		body:   payload,
		auth:   authRequired,
	}, &d)
	return d, err
}

func (c *Client) DeleteDiamond(ctx context.Context, stockID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/inventory/" + escape(stockID), auth: authRequired}, nil)
}
