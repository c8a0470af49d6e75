package fakeapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/Skotchmaster/diamond_shop/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const paymentKey = "pk_test_fakeapi"

// SignPayment computes the signature the payment gateway would hand to the
// widget callback for a captured payment.
func (s *Server) SignPayment(gatewayOrderID, paymentID string) string {
	m := hmac.New(sha256.New, s.secret)
	m.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(m.Sum(nil))
}

func (s *Server) createOrder(c echo.Context) error {
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil || len(req.DiamondIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No items to order"})
	}
	uid := current(c).ID

	s.mu.Lock()
	defer s.mu.Unlock()

	addr := req.Address
	if req.AddressID != "" {
		i := slices.IndexFunc(s.addresses[uid], func(a models.Address) bool { return a.ID == req.AddressID })
		if i < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Address not found"})
		}
		a := s.addresses[uid][i]
		addr = &a
	}
	if addr == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Shipping address is required"})
	}

	order := models.Order{
		ID:              uuid.NewString(),
		Buyer:           uid,
		Currency:        strings.ToUpper(req.Currency),
		Status:          models.OrderPending,
		PaymentStatus:   "pending",
		ShippingAddress: addr,
		CreatedAt:       time.Now().UTC(),
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}
	for _, id := range req.DiamondIDs {
		d, ok := s.diamondByID(id)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Diamond not found: " + id})
		}
		if d.Availability != models.AvailabilityAvailable {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Diamond " + d.StockID + " is no longer available"})
		}
		order.Items = append(order.Items, models.OrderItem{DiamondID: id, StockID: d.StockID, Supplier: d.SupplierID, Price: d.Price})
		order.Total += d.Price
	}
	for _, it := range order.Items {
		s.setAvailability(it.StockID, models.AvailabilityOnHold)
	}
	s.carts[uid] = slices.DeleteFunc(s.carts[uid], func(e models.CartEntry) bool {
		return slices.Contains(req.DiamondIDs, e.DiamondID)
	})

	gatewayID := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	s.gatewayOrders[order.ID] = gatewayID
	s.orders = append(s.orders, order)

	return c.JSON(http.StatusCreated, transport.CheckoutResponse{
		Order: order,
		Payment: transport.PaymentIntent{
			GatewayOrderID: gatewayID,
			Amount:         order.Total,
			Currency:       order.Currency,
			Key:            paymentKey,
		},
	})
}

func (s *Server) verifyPayment(c echo.Context) error {
	var req transport.PaymentResult
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	uid := current(c).ID

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.orders, func(o models.Order) bool { return o.ID == req.OrderID })
	if i < 0 || s.orders[i].Buyer != uid {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Order not found"})
	}
	gatewayID := s.gatewayOrders[req.OrderID]
	if req.GatewayOrderID != gatewayID || !hmac.Equal([]byte(req.Signature), []byte(s.SignPayment(gatewayID, req.GatewayPaymentID))) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Payment verification failed"})
	}

	o := &s.orders[i]
	o.Status = models.OrderProcessing
	o.PaymentStatus = "paid"
	notified := map[string]bool{}
	for _, it := range o.Items {
		s.setAvailability(it.StockID, models.AvailabilitySold)
		if it.Supplier != "" && !notified[it.Supplier] {
			notified[it.Supplier] = true
			s.notifications[it.Supplier] = append(s.notifications[it.Supplier], models.Notification{
				ID:        uuid.NewString(),
				Title:     "New order",
				Message:   "Order " + o.ID + " has been paid",
				Kind:      "order",
				CreatedAt: time.Now().UTC(),
			})
		}
	}
	return c.JSON(http.StatusOK, *o)
}

func (s *Server) getOrder(c echo.Context) error {
	me := current(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.orders, func(o models.Order) bool { return o.ID == c.Param("id") })
	if i < 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Order not found"})
	}
	o := s.orders[i]
	if me.Role != models.RoleAdmin && o.Buyer != me.ID && !sellsIn(o, me.ID) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied"})
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) myOrders(c echo.Context) error {
	uid := current(c).ID
	s.mu.Lock()
	var out []models.Order
	for _, o := range s.orders {
		if o.Buyer == uid {
			out = append(out, o)
		}
	}
	s.mu.Unlock()
	return s.orderPage(c, out)
}

func (s *Server) sellerOrders(c echo.Context) error {
	uid := current(c).ID
	s.mu.Lock()
	var out []models.Order
	for _, o := range s.orders {
		if sellsIn(o, uid) {
			out = append(out, o)
		}
	}
	s.mu.Unlock()
	return s.orderPage(c, out)
}

func (s *Server) orderPage(c echo.Context, orders []models.Order) error {
	page, limit, from, to := pageWindow(c, len(orders))
	return c.JSON(http.StatusOK, echo.Map{
		"items": nonNil(orders[from:to]),
		"page":  page,
		"pages": util.TotalPages(len(orders), limit),
		"total": len(orders),
	})
}

func (s *Server) setAvailability(stockID string, a models.Availability) {
	if i := s.diamondIndex(stockID); i >= 0 {
		s.diamonds[i].Availability = a
	}
}

func sellsIn(o models.Order, supplierID string) bool {
	return slices.ContainsFunc(o.Items, func(it models.OrderItem) bool { return it.Supplier == supplierID })
}
