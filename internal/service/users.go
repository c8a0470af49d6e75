package service

import (
	"context"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

type UserAPI interface {
	ListUsers(ctx context.Context, f transport.UserFilter) (transport.Page[models.User], error)
	SetUserApproval(ctx context.Context, id string, status models.ApprovalStatus) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService is the admin back-office view of accounts.
type UserService struct {
	base
	api   UserAPI
	Items *remote.Collection[models.User]
}

func NewUserService(api UserAPI, s Sessions, pub events.Publisher) *UserService {
	return &UserService{base: newBase(s, pub), api: api, Items: remote.NewCollection[models.User]("users")}
}

func (s *UserService) Fetch(ctx context.Context, f transport.UserFilter) error {
	return s.Items.Fetch(ctx, func(ctx context.Context) (transport.Page[models.User], error) {
		if err := s.sessions.RequireRole(models.RoleAdmin); err != nil {
			return transport.Page[models.User]{}, err
		}
		return s.api.ListUsers(ctx, f)
	})
}

func (s *UserService) SetApproval(ctx context.Context, id string, status models.ApprovalStatus) (models.User, error) {
	if err := s.sessions.RequireRole(models.RoleAdmin); err != nil {
		return models.User{}, s.Items.Fail(ctx, err)
	}
	switch status {
	case models.ApprovalPending, models.ApprovalApproved, models.ApprovalRejected:
	default:
		return models.User{}, s.Items.Fail(ctx, validation("unknown approval status %q", status))
	}
	u, err := s.Items.Update(ctx, func(ctx context.Context) (models.User, error) {
		return s.api.SetUserApproval(ctx, id, status)
	})
	if err != nil {
		return u, err
	}
	s.emit(ctx, events.UserApproval, "users", map[string]any{"userId": u.ID, "approvalStatus": string(status)})
	return u, nil
}

// Delete removes the account. Only admins may delete accounts other than their
// own; deleting the account of the current session also destroys the session.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if cur := s.sessions.Current(); !cur.LoggedIn() || cur.UserID != id {
		if err := s.sessions.RequireRole(models.RoleAdmin); err != nil {
			return s.Items.Fail(ctx, err)
		}
	}
	err := s.Items.Delete(ctx, id, func(ctx context.Context) error {
		return s.api.DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}
	s.emit(ctx, events.UserDeleted, "users", map[string]any{"userId": id})
	return s.sessions.Forget(ctx, id)
}
