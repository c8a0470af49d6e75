package fakeapi

import (
	"io"
	"net/http"
	"slices"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) listAddresses(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, nonNil(s.addresses[current(c).ID]))
}

func (s *Server) createAddress(c echo.Context) error {
	var a models.Address
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	if a.Line1 == "" || a.City == "" || a.Country == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Address is incomplete"})
	}
	uid := current(c).ID
	a.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.addresses[uid]) == 0 {
		a.IsDefault = true
	}
	s.addresses[uid] = append(s.addresses[uid], a)
	return c.JSON(http.StatusCreated, a)
}

func (s *Server) updateAddress(c echo.Context) error {
	var a models.Address
	if err := c.Bind(&a); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	uid, id := current(c).ID, c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.addresses[uid], func(x models.Address) bool { return x.ID == id })
	if i < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Address not found"})
	}
	a.ID = id
	s.addresses[uid][i] = a
	return c.JSON(http.StatusOK, a)
}

func (s *Server) deleteAddress(c echo.Context) error {
	uid, id := current(c).ID, c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.addresses[uid])
	s.addresses[uid] = slices.DeleteFunc(s.addresses[uid], func(x models.Address) bool { return x.ID == id })
	if len(s.addresses[uid]) == before {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Address not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listNotifications(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"items": nonNil(s.notifications[current(c).ID])})
}

func (s *Server) markRead(c echo.Context) error {
	uid, id := current(c).ID, c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.notifications[uid], func(n models.Notification) bool { return n.ID == id })
	if i < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Notification not found"})
	}
	s.notifications[uid][i].IsRead = true
	return c.JSON(http.StatusOK, s.notifications[uid][i])
}

func (s *Server) markAllRead(c echo.Context) error {
	uid := current(c).ID
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications[uid] {
		s.notifications[uid][i].IsRead = true
	}
	return c.JSON(http.StatusOK, nonNil(s.notifications[uid]))
}

func (s *Server) dashboard(c echo.Context) error {
	uid := current(c).ID
	s.mu.Lock()
	defer s.mu.Unlock()

	var st models.DashboardStats
	for _, d := range s.diamonds {
		if d.SupplierID != uid {
			continue
		}
		st.TotalInventory++
		switch d.Availability {
		case models.AvailabilityOnHold:
			st.OnHoldCount++
		case models.AvailabilitySold:
			st.SoldCount++
		default:
			st.AvailableCount++
		}
	}
	for _, o := range s.orders {
		if !sellsIn(o, uid) {
			continue
		}
		st.TotalOrders++
		if o.Status == models.OrderPending {
			st.PendingOrders++
		}
		if o.PaymentStatus == "paid" {
			for _, it := range o.Items {
				if it.Supplier == uid {
					st.Revenue += it.Price
				}
			}
		}
		st.RecentOrders = append(st.RecentOrders, o)
	}
	if n := len(st.RecentOrders); n > 5 {
		st.RecentOrders = st.RecentOrders[n-5:]
	}
	return c.JSON(http.StatusOK, st)
}

// assist stands in for the backend's AI endpoints: it echoes the prompt back.
func (s *Server) assist(c echo.Context) error {
	body, _ := io.ReadAll(io.LimitReader(c.Request().Body, 1<<16))
	return c.JSON(http.StatusOK, echo.Map{
		"path":   c.Request().URL.Path,
		"user":   current(c).ID,
		"prompt": string(body),
	})
}
