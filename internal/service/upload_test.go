package service

import (
	"testing"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/session"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/Skotchmaster/diamond_shop/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_HTTPFeedEndToEnd(t *testing.T) {
	h := newHarness(t)
	h.fake.SetFeed([]string{"Stock_ID", "Carat", "Price USD"}, [][]string{
		{"F-1", "1.10", "7000"},
		{"F-2", "", "100"},
	})
	h.loginAs(models.RoleSupplier, models.ApprovalApproved)
	svc := NewUploadService(h.api, h.session, h.events)

	headers, err := svc.Preview(h.ctx, &upload.HTTPSource{HTTPSourceRequest: transport.HTTPSourceRequest{URL: "https://feed.example.com/stock.json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Stock_ID", "Carat", "Price USD"}, headers)

	m, amb := svc.Builder.AutoMap()
	assert.Empty(t, amb)
	assert.Equal(t, upload.Mapping{"stockId": "Stock_ID", "carat": "Carat"}, m)
	require.NoError(t, svc.Builder.Set("price", "Price USD"))

	summary, err := svc.Submit(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 2, summary.Errors[0].Row)
	assert.Equal(t, "F-2", summary.Errors[0].Data["Stock_ID"])
	assert.Equal(t, []string{events.InventoryImported}, h.events.Names())
	assert.Empty(t, svc.Builder.Mapping())
}

func TestUpload_PreviewFailureSurfacesMessage(t *testing.T) {
	h := newHarness(t)
	h.loginAs(models.RoleSupplier, models.ApprovalApproved)
	svc := NewUploadService(h.api, h.session, h.events)

	_, err := svc.Preview(h.ctx, &upload.FTPSource{FTPSourceRequest: transport.FTPSourceRequest{Host: "ftp.example.com", Path: "/x.csv"}})
	require.Error(t, err)
	v := svc.Builder.View()
	assert.Equal(t, "no headers found", v.Preview.Error)
	assert.Empty(t, v.Headers)
}

func TestUpload_RequiresApprovedSupplier(t *testing.T) {
	h := newHarness(t)
	h.loginAs(models.RoleSupplier, models.ApprovalPending)
	svc := NewUploadService(h.api, h.session, h.events)
	before := h.fake.TotalHits()

	_, err := svc.Preview(h.ctx, &upload.CSVSource{Filename: "a.csv", Data: []byte("stockId,carat\n")})
	require.ErrorIs(t, err, session.ErrPendingApproval)
	v := svc.Builder.View()
	assert.Equal(t, remote.State{Status: remote.StatusFailed, Error: session.ErrPendingApproval.Error()}, v.Preview)
	assert.Equal(t, remote.StatusIdle, v.Submit.Status)

	_, err = svc.Submit(h.ctx)
	require.ErrorIs(t, err, session.ErrPendingApproval)
	v = svc.Builder.View()
	assert.Equal(t, remote.State{Status: remote.StatusFailed, Error: session.ErrPendingApproval.Error()}, v.Submit)
	assert.Empty(t, v.Headers)
	assert.Equal(t, before, h.fake.TotalHits())
}
