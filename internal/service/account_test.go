package service

import (
	"testing"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddresses_CRUD(t *testing.T) {
	h := newHarness(t)
	h.loginAs(models.RoleBuyer, "")
	svc := NewAddressService(h.api)
	require.NoError(t, svc.Fetch(h.ctx))
	assert.True(t, svc.Items.View().Empty)

	_, err := svc.Create(h.ctx, models.Address{City: "Antwerp"})
	require.ErrorIs(t, err, remote.ErrValidation)
	assert.Contains(t, svc.Items.MutationState().Error, "line1")
	assert.Zero(t, h.fake.Hits("POST /addresses"))

	a, err := svc.Create(h.ctx, models.Address{Line1: "Hoveniersstraat 2", City: "Antwerp", PostalCode: "2018", Country: "BE"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.True(t, a.IsDefault)

	a.Label = "Office"
	upd, err := svc.Update(h.ctx, a.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "Office", upd.Label)
	got, _ := svc.Items.Get(a.ID)
	assert.Equal(t, "Office", got.Label)

	require.NoError(t, svc.Delete(h.ctx, a.ID))
	assert.Zero(t, svc.Items.Len())
}

func TestNotifications_MarkReadAndAll(t *testing.T) {
	h := newHarness(t)
	u := h.loginAs(models.RoleBuyer, "")
	n1 := h.fake.AddNotification(u.ID, models.Notification{Title: "Price drop", Message: "RD-1 is now cheaper"})
	h.fake.AddNotification(u.ID, models.Notification{Title: "Back in stock", Message: "OV-2"})
	h.fake.AddNotification(u.ID, models.Notification{Title: "Shipped", Message: "Order shipped"})

	svc := NewNotificationService(h.api)
	require.NoError(t, svc.Fetch(h.ctx))
	assert.Equal(t, 3, svc.Unread())

	n, err := svc.MarkRead(h.ctx, n1.ID)
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	assert.Equal(t, 2, svc.Unread())

	require.NoError(t, svc.MarkAllRead(h.ctx))
	assert.Zero(t, svc.Unread())
	assert.Equal(t, 3, svc.Items.Len())

	_, err = svc.MarkRead(h.ctx, "")
	require.ErrorIs(t, err, remote.ErrValidation)
}

func TestDashboard_Fetch(t *testing.T) {
	h := newHarness(t)
	u := h.loginAs(models.RoleSupplier, models.ApprovalApproved)
	h.fake.AddDiamond(models.Diamond{StockID: "A", Carat: 1, Price: 100, SupplierID: u.ID})
	h.fake.AddDiamond(models.Diamond{StockID: "B", Carat: 1, Price: 100, SupplierID: u.ID, Availability: models.AvailabilitySold})
	h.fake.AddDiamond(models.Diamond{StockID: "C", Carat: 1, Price: 100, SupplierID: "someone-else"})

	svc := NewDashboardService(h.api, h.session)
	st, err := svc.Fetch(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalInventory)
	assert.Equal(t, 1, st.SoldCount)
	assert.Equal(t, 1, st.AvailableCount)
	assert.Equal(t, remote.StatusSucceeded, svc.Stats.State().Status)
}
