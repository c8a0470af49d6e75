package service

import (
	"context"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/upload"
)

// UploadService gates the mapping builder behind supplier approval and
// announces finished imports.
type UploadService struct {
	base
	Builder *upload.Builder
}

func NewUploadService(api upload.API, s Sessions, pub events.Publisher) *UploadService {
	return &UploadService{base: newBase(s, pub), Builder: upload.NewBuilder(api, upload.DiamondSchema)}
}

func (s *UploadService) Preview(ctx context.Context, src upload.Source) ([]string, error) {
	if err := s.sessions.RequireApprovedSupplier(); err != nil {
		return nil, s.Builder.Fail(ctx, upload.StagePreview, err)
	}
	return s.Builder.PreviewHeaders(ctx, src)
}

func (s *UploadService) Submit(ctx context.Context) (models.ImportSummary, error) {
	if err := s.sessions.RequireApprovedSupplier(); err != nil {
		return models.ImportSummary{}, s.Builder.Fail(ctx, upload.StageSubmit, err)
	}
	src := s.Builder.Source()
	summary, err := s.Builder.Submit(ctx)
	if err != nil {
		return summary, err
	}
	attrs := map[string]any{"total": summary.Total, "succeeded": summary.Succeeded, "failed": summary.Failed}
	if src != nil {
		attrs["kind"] = string(src.Kind())
	}
	s.emit(ctx, events.InventoryImported, "inventory", attrs)
	return summary, nil
}
