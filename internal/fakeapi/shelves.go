package fakeapi

import (
	"net/http"
	"slices"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) getCart(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := nonNil(s.carts[current(c).ID])
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items)})
}

func (s *Server) addToCart(c echo.Context) error {
	var req transport.CollectionAddRequest
	if err := c.Bind(&req); err != nil || req.DiamondID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "diamondId is required"})
	}
	uid := current(c).ID

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.diamondByID(req.DiamondID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Diamond not found"})
	}
	if d.Availability != models.AvailabilityAvailable {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Diamond is not available"})
	}
	if slices.ContainsFunc(s.carts[uid], func(e models.CartEntry) bool { return e.DiamondID == req.DiamondID }) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Diamond already in cart"})
	}
	e := models.CartEntry{ID: uuid.NewString(), DiamondID: req.DiamondID, Diamond: &d, AddedAt: time.Now().UTC()}
	s.carts[uid] = append(s.carts[uid], e)
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) removeFromCart(c echo.Context) error {
	uid, id := current(c).ID, c.Param("diamondId")
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.carts[uid])
	s.carts[uid] = slices.DeleteFunc(s.carts[uid], func(e models.CartEntry) bool { return e.DiamondID == id })
	if len(s.carts[uid]) == before {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not in cart"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) moveCartToWishlist(c echo.Context) error {
	uid, id := current(c).ID, c.Param("diamondId")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.carts[uid], func(e models.CartEntry) bool { return e.DiamondID == id })
	if i < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not in cart"})
	}
	src := s.carts[uid][i]
	s.carts[uid] = slices.Delete(s.carts[uid], i, i+1)

	w := models.WishlistEntry{ID: uuid.NewString(), DiamondID: src.DiamondID, Diamond: src.Diamond, AddedAt: time.Now().UTC()}
	s.wishlists[uid] = slices.DeleteFunc(s.wishlists[uid], func(e models.WishlistEntry) bool { return e.DiamondID == id })
	s.wishlists[uid] = append(s.wishlists[uid], w)
	return c.JSON(http.StatusOK, w)
}

func (s *Server) getWishlist(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := nonNil(s.wishlists[current(c).ID])
	return c.JSON(http.StatusOK, echo.Map{"items": items, "total": len(items)})
}

func (s *Server) addToWishlist(c echo.Context) error {
	var req transport.CollectionAddRequest
	if err := c.Bind(&req); err != nil || req.DiamondID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "diamondId is required"})
	}
	uid := current(c).ID

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.diamondByID(req.DiamondID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Diamond not found"})
	}
	if slices.ContainsFunc(s.wishlists[uid], func(e models.WishlistEntry) bool { return e.DiamondID == req.DiamondID }) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Diamond already in wishlist"})
	}
	e := models.WishlistEntry{ID: uuid.NewString(), DiamondID: req.DiamondID, Diamond: &d, AddedAt: time.Now().UTC()}
	s.wishlists[uid] = append(s.wishlists[uid], e)
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) removeFromWishlist(c echo.Context) error {
	uid, id := current(c).ID, c.Param("diamondId")
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.wishlists[uid])
	s.wishlists[uid] = slices.DeleteFunc(s.wishlists[uid], func(e models.WishlistEntry) bool { return e.DiamondID == id })
	if len(s.wishlists[uid]) == before {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not in wishlist"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) moveWishlistToCart(c echo.Context) error {
	uid, id := current(c).ID, c.Param("diamondId")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.wishlists[uid], func(e models.WishlistEntry) bool { return e.DiamondID == id })
	if i < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Item not in wishlist"})
	}
	src := s.wishlists[uid][i]
	if slices.ContainsFunc(s.carts[uid], func(e models.CartEntry) bool { return e.DiamondID == id }) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Diamond already in cart"})
	}
	s.wishlists[uid] = slices.Delete(s.wishlists[uid], i, i+1)

	e := models.CartEntry{ID: uuid.NewString(), DiamondID: src.DiamondID, Diamond: src.Diamond, AddedAt: time.Now().UTC()}
	s.carts[uid] = append(s.carts[uid], e)
	return c.JSON(http.StatusOK, e)
}
