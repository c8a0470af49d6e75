package apiclient

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

func (c *Client) Register(ctx context.Context, req transport.RegisterRequest) (*models.Session, error) {
	var s models.Session
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: req}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Login(ctx context.Context, req transport.LoginRequest) (*models.Session, error) {
	var s models.Session
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: req}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req transport.UpdateProfileRequest) (*models.User, error) {
	var u models.User
	err := c.do(ctx, request{method: http.MethodPut, path: "/auth/profile", body: req, auth: authRequired}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListUsers(ctx context.Context, f transport.UserFilter) (transport.Page[models.User], error) {
	var p transport.Page[models.User]
	err := c.do(ctx, request{method: http.MethodGet, path: "/auth/users", query: f.Values(), auth: authRequired}, &p)
	return p, err
}

func (c *Client) SetUserApproval(ctx context.Context, id string, status models.ApprovalStatus) (models.User, error) {
	var u models.User
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/auth/users/" + escape(id),
		body:   transport.ApprovalRequest{Approval: status},
		auth:   authRequired,
	}, &u)
	return u, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/auth/users/" + escape(id), auth: authRequired}, nil)
}
