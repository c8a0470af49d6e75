package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
)

type AddressAPI interface {
	ListAddresses(ctx context.Context) ([]models.Address, error)
	CreateAddress(ctx context.Context, a models.Address) (models.Address, error)
	UpdateAddress(ctx context.Context, id string, a models.Address) (models.Address, error)
	DeleteAddress(ctx context.Context, id string) error
}

type AddressService struct {
	api   AddressAPI
	Items *remote.Collection[models.Address]
}

func NewAddressService(api AddressAPI) *AddressService {
	return &AddressService{api: api, Items: remote.NewCollection[models.Address]("addresses")}
}

func (s *AddressService) Fetch(ctx context.Context) error {
	return s.Items.FetchList(ctx, s.api.ListAddresses)
}

func (s *AddressService) Create(ctx context.Context, a models.Address) (models.Address, error) {
	if err := validateAddress(a); err != nil {
		return a, s.Items.Fail(ctx, err)
	}
	return s.Items.Create(ctx, func(ctx context.Context) (models.Address, error) {
		return s.api.CreateAddress(ctx, a)
	})
}

func (s *AddressService) Update(ctx context.Context, id string, a models.Address) (models.Address, error) {
	if id == "" {
		return a, s.Items.Fail(ctx, validation("address id is required"))
	}
	if err := validateAddress(a); err != nil {
		return a, s.Items.Fail(ctx, err)
	}
	return s.Items.Update(ctx, func(ctx context.Context) (models.Address, error) {
		return s.api.UpdateAddress(ctx, id, a)
	})
}

func (s *AddressService) Delete(ctx context.Context, id string) error {
	return s.Items.Delete(ctx, id, func(ctx context.Context) error {
		return s.api.DeleteAddress(ctx, id)
	})
}

func validateAddress(a models.Address) error {
	var missing []string
	if strings.TrimSpace(a.Line1) == "" {
		missing = append(missing, "line1")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.PostalCode) == "" {
		missing = append(missing, "postalCode")
	}
	if strings.TrimSpace(a.Country) == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return validation("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

type NotificationAPI interface {
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (models.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) ([]models.Notification, error)
}

type NotificationService struct {
	api   NotificationAPI
	Items *remote.Collection[models.Notification]
}

func NewNotificationService(api NotificationAPI) *NotificationService {
	return &NotificationService{api: api, Items: remote.NewCollection[models.Notification]("notifications")}
}

func (s *NotificationService) Fetch(ctx context.Context) error {
	return s.Items.FetchList(ctx, s.api.ListNotifications)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) (models.Notification, error) {
	if id == "" {
		return models.Notification{}, s.Items.Fail(ctx, validation("notification id is required"))
	}
	return s.Items.Update(ctx, func(ctx context.Context) (models.Notification, error) {
		return s.api.MarkNotificationRead(ctx, id)
	})
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.Items.Replace(ctx, s.api.MarkAllNotificationsRead)
}

func (s *NotificationService) Unread() int {
	n := 0
	for _, it := range s.Items.Items() {
		if !it.IsRead {
			n++
		}
	}
	return n
}

type DashboardAPI interface {
	SupplierDashboard(ctx context.Context) (models.DashboardStats, error)
}

type DashboardService struct {
	base
	api   DashboardAPI
	Stats *remote.Entity[models.DashboardStats]
}

func NewDashboardService(api DashboardAPI, s Sessions) *DashboardService {
	return &DashboardService{base: newBase(s, nil), api: api, Stats: remote.NewEntity[models.DashboardStats]("dashboard")}
}

func (s *DashboardService) Fetch(ctx context.Context) (models.DashboardStats, error) {
	return s.Stats.Fetch(ctx, func(ctx context.Context) (models.DashboardStats, error) {
		if err := s.sessions.RequireApprovedSupplier(); err != nil {
			return models.DashboardStats{}, err
		}
		return s.api.SupplierDashboard(ctx)
	})
}
