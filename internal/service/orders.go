package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

var ErrPaymentCancelled = errors.New("payment cancelled")

type OrderAPI interface {
	CreateOrder(ctx context.Context, req transport.CheckoutRequest) (transport.CheckoutResponse, error)
	VerifyPayment(ctx context.Context, res transport.PaymentResult) (models.Order, error)
	GetOrder(ctx context.Context, id string) (models.Order, error)
	MyOrders(ctx context.Context, page int) (transport.Page[models.Order], error)
	SellerOrders(ctx context.Context, page int) (transport.Page[models.Order], error)
}

// PaymentWidget drives the third-party checkout. It returns the signed result
// the gateway hands to its callback, or ErrPaymentCancelled.
type PaymentWidget interface {
	Pay(ctx context.Context, intent transport.PaymentIntent) (transport.PaymentResult, error)
}

type OrderService struct {
	base
	api    OrderAPI
	Mine   *remote.Collection[models.Order]
	Seller *remote.Collection[models.Order]
	Detail *remote.Entity[models.Order]
}

func NewOrderService(api OrderAPI, s Sessions, pub events.Publisher) *OrderService {
	return &OrderService{
		base:   newBase(s, pub),
		api:    api,
		Mine:   remote.NewCollection[models.Order]("orders"),
		Seller: remote.NewCollection[models.Order]("seller_orders"),
		Detail: remote.NewEntity[models.Order]("order"),
	}
}

func (s *OrderService) FetchMine(ctx context.Context, page int) error {
	return s.Mine.Fetch(ctx, func(ctx context.Context) (transport.Page[models.Order], error) {
		return s.api.MyOrders(ctx, page)
	})
}

func (s *OrderService) FetchSeller(ctx context.Context, page int) error {
	return s.Seller.Fetch(ctx, func(ctx context.Context) (transport.Page[models.Order], error) {
		if err := s.sessions.RequireApprovedSupplier(); err != nil {
			return transport.Page[models.Order]{}, err
		}
		return s.api.SellerOrders(ctx, page)
	})
}

func (s *OrderService) Order(ctx context.Context, id string) (models.Order, error) {
	return s.Detail.Fetch(ctx, func(ctx context.Context) (models.Order, error) {
		if strings.TrimSpace(id) == "" {
			return models.Order{}, validation("order id is required")
		}
		return s.api.GetOrder(ctx, id)
	})
}

// Checkout creates the order and returns the payment intent for the widget.
// The new order is appended to the buyer's order list.
func (s *OrderService) Checkout(ctx context.Context, req transport.CheckoutRequest) (transport.CheckoutResponse, error) {
	req.DiamondIDs = slices.DeleteFunc(slices.Clone(req.DiamondIDs), func(id string) bool { return strings.TrimSpace(id) == "" })
	if len(req.DiamondIDs) == 0 {
		return transport.CheckoutResponse{}, s.Mine.Fail(ctx, validation("nothing to check out"))
	}
	if req.AddressID == "" && req.Address == nil {
		return transport.CheckoutResponse{}, s.Mine.Fail(ctx, validation("a shipping address is required"))
	}

	var resp transport.CheckoutResponse
	_, err := s.Mine.Create(ctx, func(ctx context.Context) (models.Order, error) {
		var err error
		resp, err = s.api.CreateOrder(ctx, req)
		return resp.Order, err
	})
	if err != nil {
		return resp, err
	}
	s.emit(ctx, events.OrderPlaced, "orders", map[string]any{
		"orderId":  resp.Order.ID,
		"items":    len(req.DiamondIDs),
		"amount":   resp.Payment.Amount,
		"currency": resp.Payment.Currency,
	})
	return resp, nil
}

// VerifyPayment forwards the widget's signature and replaces the order with
// the server copy.
func (s *OrderService) VerifyPayment(ctx context.Context, res transport.PaymentResult) (models.Order, error) {
	if res.OrderID == "" || res.GatewayPaymentID == "" || res.Signature == "" {
		return models.Order{}, s.Mine.Fail(ctx, validation("incomplete payment result"))
	}
	epoch := s.Detail.Epoch()
	o, err := s.Mine.Update(ctx, func(ctx context.Context) (models.Order, error) {
		return s.api.VerifyPayment(ctx, res)
	})
	if err != nil {
		return o, err
	}
	if cur, ok := s.Detail.Get(); ok && cur.ID == o.ID {
		s.Detail.Set(epoch, o)
	}
	s.emit(ctx, events.OrderPaid, "orders", map[string]any{"orderId": o.ID, "paymentStatus": o.PaymentStatus})
	return o, nil
}

// Pay runs the widget for a checkout and verifies its result.
func (s *OrderService) Pay(ctx context.Context, checkout transport.CheckoutResponse, widget PaymentWidget) (models.Order, error) {
	res, err := widget.Pay(ctx, checkout.Payment)
	if err != nil {
		return models.Order{}, s.Mine.Fail(ctx, err)
	}
	if res.OrderID == "" {
		res.OrderID = checkout.Order.ID
	}
	if res.GatewayOrderID == "" {
		res.GatewayOrderID = checkout.Payment.GatewayOrderID
	}
	return s.VerifyPayment(ctx, res)
}
