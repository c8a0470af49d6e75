package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
)

type CartAPI interface {
	GetCart(ctx context.Context) ([]models.CartEntry, error)
	AddToCart(ctx context.Context, diamondID string) (models.CartEntry, error)
	RemoveFromCart(ctx context.Context, diamondID string) error
	MoveCartToWishlist(ctx context.Context, diamondID string) (models.WishlistEntry, error)
}

type WishlistAPI interface {
	GetWishlist(ctx context.Context) ([]models.WishlistEntry, error)
	AddToWishlist(ctx context.Context, diamondID string) (models.WishlistEntry, error)
	RemoveFromWishlist(ctx context.Context, diamondID string) error
	MoveWishlistToCart(ctx context.Context, diamondID string) (models.CartEntry, error)
}

type CartService struct {
	base
	api   CartAPI
	Items *remote.Collection[models.CartEntry]
}

func NewCartService(api CartAPI, s Sessions, pub events.Publisher) *CartService {
	return &CartService{base: newBase(s, pub), api: api, Items: remote.NewCollection[models.CartEntry]("cart")}
}

func (s *CartService) Fetch(ctx context.Context) error {
	return s.Items.FetchList(ctx, s.api.GetCart)
}

func (s *CartService) Contains(diamondID string) bool {
	return s.Items.Contains(diamondID)
}

// Add rejects a diamond already in the cart without calling the backend.
func (s *CartService) Add(ctx context.Context, diamondID string) (models.CartEntry, error) {
	diamondID = strings.TrimSpace(diamondID)
	if diamondID == "" {
		return models.CartEntry{}, s.Items.Fail(ctx, validation("diamond id is required"))
	}
	if s.Items.Contains(diamondID) {
		return models.CartEntry{}, s.Items.Fail(ctx, fmt.Errorf("diamond %s is already in the cart: %w", diamondID, ErrAlreadyPresent))
	}
	e, err := s.Items.Create(ctx, func(ctx context.Context) (models.CartEntry, error) {
		return s.api.AddToCart(ctx, diamondID)
	})
	if err != nil {
		return e, err
	}
	s.emit(ctx, events.CartItemAdded, "cart", map[string]any{"diamondId": diamondID})
	return e, nil
}

func (s *CartService) Remove(ctx context.Context, diamondID string) error {
	err := s.Items.Delete(ctx, diamondID, func(ctx context.Context) error {
		return s.api.RemoveFromCart(ctx, diamondID)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, events.CartItemRemoved, "cart", map[string]any{"diamondId": diamondID})
	return nil
}

// MoveToWishlist removes the entry from the cart and appends the entry the
// backend created to the wishlist.
func (s *CartService) MoveToWishlist(ctx context.Context, diamondID string, w *WishlistService) (models.WishlistEntry, error) {
	var moved models.WishlistEntry
	epoch := w.Items.Epoch()
	err := s.Items.Delete(ctx, diamondID, func(ctx context.Context) error {
		var err error
		moved, err = s.api.MoveCartToWishlist(ctx, diamondID)
		return err
	})
	if err != nil {
		return moved, err
	}
	w.Items.Upsert(epoch, moved)
	s.emit(ctx, events.ItemMoved, "cart", map[string]any{"diamondId": diamondID, "to": "wishlist"})
	return moved, nil
}

type WishlistService struct {
	base
	api   WishlistAPI
	Items *remote.Collection[models.WishlistEntry]
}

func NewWishlistService(api WishlistAPI, s Sessions, pub events.Publisher) *WishlistService {
	return &WishlistService{base: newBase(s, pub), api: api, Items: remote.NewCollection[models.WishlistEntry]("wishlist")}
}

func (s *WishlistService) Fetch(ctx context.Context) error {
	return s.Items.FetchList(ctx, s.api.GetWishlist)
}

func (s *WishlistService) Contains(diamondID string) bool {
	return s.Items.Contains(diamondID)
}

func (s *WishlistService) Add(ctx context.Context, diamondID string) (models.WishlistEntry, error) {
	diamondID = strings.TrimSpace(diamondID)
	if diamondID == "" {
		return models.WishlistEntry{}, s.Items.Fail(ctx, validation("diamond id is required"))
	}
	if s.Items.Contains(diamondID) {
		return models.WishlistEntry{}, s.Items.Fail(ctx, fmt.Errorf("diamond %s is already in the wishlist: %w", diamondID, ErrAlreadyPresent))
	}
	e, err := s.Items.Create(ctx, func(ctx context.Context) (models.WishlistEntry, error) {
		return s.api.AddToWishlist(ctx, diamondID)
	})
	if err != nil {
		return e, err
	}
	s.emit(ctx, events.WishlistItemAdded, "wishlist", map[string]any{"diamondId": diamondID})
	return e, nil
}

func (s *WishlistService) Remove(ctx context.Context, diamondID string) error {
	return s.Items.Delete(ctx, diamondID, func(ctx context.Context) error {
		return s.api.RemoveFromWishlist(ctx, diamondID)
	})
}

func (s *WishlistService) MoveToCart(ctx context.Context, diamondID string, c *CartService) (models.CartEntry, error) {
	var moved models.CartEntry
	epoch := c.Items.Epoch()
	err := s.Items.Delete(ctx, diamondID, func(ctx context.Context) error {
		var err error
		moved, err = s.api.MoveWishlistToCart(ctx, diamondID)
		return err
	})
	if err != nil {
		return moved, err
	}
	c.Items.Upsert(epoch, moved)
	s.emit(ctx, events.ItemMoved, "wishlist", map[string]any{"diamondId": diamondID, "to": "cart"})
	return moved, nil
}
