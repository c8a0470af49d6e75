package service

import (
	"context"
	"testing"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/fakeapi"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayWidget struct {
	fake   *fakeapi.Server
	cancel bool
	seen   transport.PaymentIntent
}

func (w *gatewayWidget) Pay(_ context.Context, intent transport.PaymentIntent) (transport.PaymentResult, error) {
	w.seen = intent
	if w.cancel {
		return transport.PaymentResult{}, ErrPaymentCancelled
	}
	paymentID := "pay_123"
	return transport.PaymentResult{
		GatewayOrderID:   intent.GatewayOrderID,
		GatewayPaymentID: paymentID,
		Signature:        w.fake.SignPayment(intent.GatewayOrderID, paymentID),
	}, nil
}

func TestOrders_CheckoutAndPay(t *testing.T) {
	h := newHarness(t)
	supplier := h.fake.AddUser("Gem Co", "gem@example.com", "pw", models.RoleSupplier, models.ApprovalApproved)
	d := h.fake.AddDiamond(models.Diamond{StockID: "RD-1", Carat: 1, Price: 4200, SupplierID: supplier.ID})
	h.loginAs(models.RoleBuyer, "")

	cart := NewCartService(h.api, h.session, h.events)
	orders := NewOrderService(h.api, h.session, h.events)
	_, err := cart.Add(h.ctx, d.ID)
	require.NoError(t, err)
	require.NoError(t, orders.FetchMine(h.ctx, 1))
	require.True(t, orders.Mine.View().Empty)

	checkout, err := orders.Checkout(h.ctx, transport.CheckoutRequest{
		DiamondIDs: []string{d.ID},
		Address:    &models.Address{Line1: "1 Main St", City: "Antwerp", PostalCode: "2000", Country: "BE"},
		Currency:   "eur",
	})
	require.NoError(t, err)
	assert.Equal(t, 4200.0, checkout.Payment.Amount)
	assert.Equal(t, "EUR", checkout.Payment.Currency)
	assert.NotEmpty(t, checkout.Payment.GatewayOrderID)
	assert.Equal(t, 1, orders.Mine.Len())

	_, err = orders.Order(h.ctx, checkout.Order.ID)
	require.NoError(t, err)

	widget := &gatewayWidget{fake: h.fake}
	paid, err := orders.Pay(h.ctx, checkout, widget)
	require.NoError(t, err)
	assert.Equal(t, checkout.Payment, widget.seen)
	assert.Equal(t, models.OrderProcessing, paid.Status)
	assert.Equal(t, "paid", paid.PaymentStatus)

	mine, _ := orders.Mine.Get(checkout.Order.ID)
	assert.Equal(t, models.OrderProcessing, mine.Status)
	detail, _ := orders.Detail.Get()
	assert.Equal(t, "paid", detail.PaymentStatus)

	assert.Equal(t, []string{events.CartItemAdded, events.OrderPlaced, events.OrderPaid}, h.events.Names())
}

func TestOrders_CheckoutValidation(t *testing.T) {
	h := newHarness(t)
	h.loginAs(models.RoleBuyer, "")
	orders := NewOrderService(h.api, h.session, h.events)

	_, err := orders.Checkout(h.ctx, transport.CheckoutRequest{DiamondIDs: []string{"", " "}, AddressID: "a"})
	require.ErrorIs(t, err, remote.ErrValidation)
	_, err = orders.Checkout(h.ctx, transport.CheckoutRequest{DiamondIDs: []string{"d"}})
	require.ErrorIs(t, err, remote.ErrValidation)
	assert.Zero(t, h.fake.Hits("POST /orders"))
}

func TestOrders_CancelledPaymentKeepsOrderPending(t *testing.T) {
	h := newHarness(t)
	d := h.fake.AddDiamond(models.Diamond{StockID: "OV-1", Carat: 0.8, Price: 2100})
	h.loginAs(models.RoleBuyer, "")
	orders := NewOrderService(h.api, h.session, h.events)

	checkout, err := orders.Checkout(h.ctx, transport.CheckoutRequest{
		DiamondIDs: []string{d.ID},
		Address:    &models.Address{Line1: "1 Main", City: "X", PostalCode: "1", Country: "US"},
	})
	require.NoError(t, err)

	_, err = orders.Pay(h.ctx, checkout, &gatewayWidget{fake: h.fake, cancel: true})
	require.ErrorIs(t, err, ErrPaymentCancelled)
	assert.Equal(t, remote.State{Status: remote.StatusFailed, Error: "payment cancelled"}, orders.Mine.MutationState())
	o, _ := orders.Mine.Get(checkout.Order.ID)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Zero(t, h.fake.Hits("POST /orders/verify-payment"))
}

func TestOrders_ForgedSignatureRejected(t *testing.T) {
	h := newHarness(t)
	d := h.fake.AddDiamond(models.Diamond{StockID: "OV-1", Carat: 0.8, Price: 2100})
	h.loginAs(models.RoleBuyer, "")
	orders := NewOrderService(h.api, h.session, h.events)
	checkout, err := orders.Checkout(h.ctx, transport.CheckoutRequest{
		DiamondIDs: []string{d.ID},
		Address:    &models.Address{Line1: "1 Main", City: "X", PostalCode: "1", Country: "US"},
	})
	require.NoError(t, err)

	_, err = orders.VerifyPayment(h.ctx, transport.PaymentResult{
		OrderID:          checkout.Order.ID,
		GatewayOrderID:   checkout.Payment.GatewayOrderID,
		GatewayPaymentID: "pay_1",
		Signature:        "forged",
	})
	require.Error(t, err)
	assert.Equal(t, "Payment verification failed", orders.Mine.MutationState().Error)
}

func TestOrders_SellerView(t *testing.T) {
	h := newHarness(t)
	orders := NewOrderService(h.api, h.session, h.events)

	h.loginAs(models.RoleBuyer, "")
	err := orders.FetchSeller(h.ctx, 1)
	require.Error(t, err)
	assert.Zero(t, h.fake.Hits("GET /orders/seller"))

	h.loginAs(models.RoleSupplier, models.ApprovalApproved)
	require.NoError(t, orders.FetchSeller(h.ctx, 1))
	assert.Equal(t, remote.StatusSucceeded, orders.Seller.State().Status)
}
