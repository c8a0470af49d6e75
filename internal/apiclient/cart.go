package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

func (c *Client) GetCart(ctx context.Context) ([]models.CartEntry, error) {
	var p transport.Page[models.CartEntry]
	err := c.do(ctx, request{method: http.MethodGet, path: "/cart", auth: authRequired}, &p)
	return p.Items, err
}

func (c *Client) AddToCart(ctx context.Context, diamondID string) (models.CartEntry, error) {
	var e models.CartEntry
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/cart",
		body:   transport.CollectionAddRequest{DiamondID: diamondID},
		auth:   authRequired,
	}, &e)
	return e, err
}

func (c *Client) RemoveFromCart(ctx context.Context, diamondID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/cart/" + escape(diamondID), auth: authRequired}, nil)
}

// MoveCartToWishlist returns the wishlist entry created by the move.
func (c *Client) MoveCartToWishlist(ctx context.Context, diamondID string) (models.WishlistEntry, error) {
	var e models.WishlistEntry
	err := c.do(ctx, request{method: http.MethodPost, path: "/cart/" + escape(diamondID) + "/move", auth: authRequired}, &e)
	return e, err
}

func (c *Client) GetWishlist(ctx context.Context) ([]models.WishlistEntry, error) {
	var p transport.Page[models.WishlistEntry]
	err := c.do(ctx, request{method: http.MethodGet, path: "/wishlist", auth: authRequired}, &p)
	return p.Items, err
}

func (c *Client) AddToWishlist(ctx context.Context, diamondID string) (models.WishlistEntry, error) {
	var e models.WishlistEntry
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/wishlist",
		body:   transport.CollectionAddRequest{DiamondID: diamondID},
		auth:   authRequired,
	}, &e)
	return e, err
}

func (c *Client) RemoveFromWishlist(ctx context.Context, diamondID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/wishlist/" + escape(diamondID), auth: authRequired}, nil)
}

// MoveWishlistToCart returns the cart entry created by the move.
func (c *Client) MoveWishlistToCart(ctx context.Context, diamondID string) (models.CartEntry, error) {
	var e models.CartEntry
	err := c.do(ctx, request{method: http.MethodPost, path: "/wishlist/" + escape(diamondID) + "/move", auth: authRequired}, &e)
	return e, err
}
