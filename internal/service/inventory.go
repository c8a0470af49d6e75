package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/Skotchmaster/diamond_shop/internal/util"
)

type InventoryAPI interface {
	ListOwnInventory(ctx context.Context, f transport.DiamondFilter) (transport.Page[models.Diamond], error)
	GetDiamond(ctx context.Context, stockID string) (models.Diamond, error)
	AddDiamond(ctx context.Context, payload map[string]any) (models.Diamond, error)
	UpdateDiamond(ctx context.Context, stockID string, payload map[string]any) (models.Diamond, error)
	DeleteDiamond(ctx context.Context, stockID string) error
}

// InventoryService manages the supplier's own stock.
type InventoryService struct {
	base
	api    InventoryAPI
	Items  *remote.Collection[models.Diamond]
	Detail *remote.Entity[models.Diamond]
}

func NewInventoryService(api InventoryAPI, s Sessions, pub events.Publisher) *InventoryService {
	return &InventoryService{
		base:   newBase(s, pub),
		api:    api,
		Items:  remote.NewCollection[models.Diamond]("inventory"),
		Detail: remote.NewEntity[models.Diamond]("inventory_item"),
	}
}

func (s *InventoryService) Fetch(ctx context.Context, f transport.DiamondFilter) error {
	f.Page, f.Limit = util.NormalizePage(f.Page, f.Limit)
	return s.Items.Fetch(ctx, func(ctx context.Context) (transport.Page[models.Diamond], error) {
		if err := s.sessions.RequireApprovedSupplier(); err != nil {
			return transport.Page[models.Diamond]{}, err
		}
		return s.api.ListOwnInventory(ctx, f)
	})
}

func (s *InventoryService) Get(ctx context.Context, stockID string) (models.Diamond, error) {
	return s.Detail.Fetch(ctx, func(ctx context.Context) (models.Diamond, error) {
		if err := s.sessions.RequireApprovedSupplier(); err != nil {
			return models.Diamond{}, err
		}
		if strings.TrimSpace(stockID) == "" {
			return models.Diamond{}, validation("stock id is required")
		}
		return s.api.GetDiamond(ctx, stockID)
	})
}

// AddManual submits a hand-entered diamond. Numeric fields are coerced and
// blank ones omitted; stockId and carat must survive coercion.
func (s *InventoryService) AddManual(ctx context.Context, form map[string]any) (models.Diamond, error) {
	if err := s.sessions.RequireApprovedSupplier(); err != nil {
		return models.Diamond{}, s.Items.Fail(ctx, err)
	}
	payload := util.CoerceNumeric(form)
	if err := requireInventoryFields(payload); err != nil {
		return models.Diamond{}, s.Items.Fail(ctx, err)
	}

	d, err := s.Items.Create(ctx, func(ctx context.Context) (models.Diamond, error) {
		return s.api.AddDiamond(ctx, payload)
	})
	if err != nil {
		return d, err
	}
	s.emit(ctx, events.InventoryChanged, "inventory", map[string]any{"op": "create", "stockId": d.StockID})
	return d, nil
}

// Update sends only the fields present in form.
func (s *InventoryService) Update(ctx context.Context, stockID string, form map[string]any) (models.Diamond, error) {
	if err := s.sessions.RequireApprovedSupplier(); err != nil {
		return models.Diamond{}, s.Items.Fail(ctx, err)
	}
	if strings.TrimSpace(stockID) == "" {
		return models.Diamond{}, s.Items.Fail(ctx, validation("stock id is required"))
	}
	payload := util.CoerceNumeric(form)

	epoch := s.Detail.Epoch()
	d, err := s.Items.Update(ctx, func(ctx context.Context) (models.Diamond, error) {
		return s.api.UpdateDiamond(ctx, stockID, payload)
	})
	if err != nil {
		return d, err
	}
	if cur, ok := s.Detail.Get(); ok && cur.StockID == d.StockID {
		s.Detail.Set(epoch, d)
	}
	s.emit(ctx, events.InventoryChanged, "inventory", map[string]any{"op": "update", "stockId": d.StockID})
	return d, nil
}

func (s *InventoryService) Delete(ctx context.Context, stockID string) error {
	if err := s.sessions.RequireApprovedSupplier(); err != nil {
		return s.Items.Fail(ctx, err)
	}
	err := s.Items.Delete(ctx, stockID, func(ctx context.Context) error {
		return s.api.DeleteDiamond(ctx, stockID)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, events.InventoryChanged, "inventory", map[string]any{"op": "delete", "stockId": stockID})
	return nil
}

func requireInventoryFields(payload map[string]any) error {
	id, _ := payload["stockId"].(string)
	if id == "" {
		return validation("stockId is required")
	}
	carat, ok := payload["carat"].(float64)
	if !ok {
		return validation("carat is required and must be a number")
	}
	if carat <= 0 {
		return validation("carat must be positive")
	}
	return nil
}
