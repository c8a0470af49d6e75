package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/Skotchmaster/diamond_shop/internal/util"
)

type CatalogAPI interface {
	ListDiamonds(ctx context.Context, f transport.DiamondFilter) (transport.Page[models.Diamond], error)
	GetDiamond(ctx context.Context, stockID string) (models.Diamond, error)
}

// CatalogService is public browsing; a token is sent when one exists.
type CatalogService struct {
	api      CatalogAPI
	Diamonds *remote.Collection[models.Diamond]
	Detail   *remote.Entity[models.Diamond]
}

func NewCatalogService(api CatalogAPI) *CatalogService {
	return &CatalogService{
		api:      api,
		Diamonds: remote.NewCollection[models.Diamond]("catalog"),
		Detail:   remote.NewEntity[models.Diamond]("diamond"),
	}
}

func (s *CatalogService) Browse(ctx context.Context, f transport.DiamondFilter) error {
	f.Page, f.Limit = util.NormalizePage(f.Page, f.Limit)
	return s.Diamonds.Fetch(ctx, func(ctx context.Context) (transport.Page[models.Diamond], error) {
		return s.api.ListDiamonds(ctx, f)
	})
}

func (s *CatalogService) Diamond(ctx context.Context, stockID string) (models.Diamond, error) {
	stockID = strings.TrimSpace(stockID)
	return s.Detail.Fetch(ctx, func(ctx context.Context) (models.Diamond, error) {
		if stockID == "" {
			return models.Diamond{}, validation("stock id is required")
		}
		return s.api.GetDiamond(ctx, stockID)
	})
}
