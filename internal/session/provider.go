package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/repo"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrPendingApproval = errors.New("supplier account is awaiting approval")
	ErrNoToken         = errors.New("backend returned no token")
)

// Store persists session snapshots per profile.
type Store interface {
	Load(ctx context.Context, profile string) (*models.Session, error)
	Save(ctx context.Context, profile string, s *models.Session) error
	Delete(ctx context.Context, profile string) error
}

// Authenticator is the part of the backend API the provider calls.
type Authenticator interface {
	Login(ctx context.Context, req transport.LoginRequest) (*models.Session, error)
	Register(ctx context.Context, req transport.RegisterRequest) (*models.Session, error)
	UpdateProfile(ctx context.Context, req transport.UpdateProfileRequest) (*models.User, error)
}

// Provider owns the authenticated session of one profile and hands its bearer
// token to the API client.
type Provider struct {
	profile string
	store   Store
	auth    Authenticator
	now     func() time.Time

	mu       sync.RWMutex
	current  *models.Session
	onLogout []func()
}

func NewProvider(store Store, profile string) *Provider {
	return &Provider{profile: profile, store: store, now: time.Now}
}

// Bind attaches the API used for login calls. The API client itself takes the
// provider as its token source, so the two are wired after construction.
func (p *Provider) Bind(a Authenticator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.auth = a
}

func (p *Provider) Profile() string { return p.profile }

// OnLogout registers a hook run whenever the session is destroyed.
func (p *Provider) OnLogout(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onLogout = append(p.onLogout, fn)
}

// Token implements apiclient.TokenSource.
func (p *Provider) Token() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.current.LoggedIn() {
		return "", false
	}
	return p.current.Token, true
}

// Current returns a copy of the session, or nil when logged out.
func (p *Provider) Current() *models.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil
	}
	cp := *p.current
	return &cp
}

func (p *Provider) LoggedIn() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.LoggedIn()
}

func (p *Provider) Login(ctx context.Context, req transport.LoginRequest) (*models.Session, error) {
	a, err := p.authenticator()
	if err != nil {
		return nil, err
	}
	s, err := a.Login(ctx, req)
	if err != nil {
		logging.FromContext(ctx).Warn("login_failed", "email", req.Email, "error", err)
		return nil, err
	}
	if s.Token == "" {
		return nil, fmt.Errorf("login: %w", ErrNoToken)
	}
	p.establish(ctx, s)
	logging.FromContext(ctx).Info("login_successful", "user_id", s.UserID, "role", s.Role)
	return p.Current(), nil
}

// Register creates the account. When the backend answers with a token the
// new user is logged in right away; suppliers stay pending until approved.
func (p *Provider) Register(ctx context.Context, req transport.RegisterRequest) (*models.Session, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("register: unknown role %q", req.Role)
	}
	a, err := p.authenticator()
	if err != nil {
		return nil, err
	}
	s, err := a.Register(ctx, req)
	if err != nil {
		logging.FromContext(ctx).Warn("register_failed", "email", req.Email, "error", err)
		return nil, err
	}
	if s.Role == "" {
		s.Role = req.Role
	}
	if s.Role == models.RoleSupplier && s.Approval == "" {
		s.Approval = models.ApprovalPending
	}
	if s.Token == "" {
		logging.FromContext(ctx).Info("registered_without_session", "email", req.Email, "role", s.Role)
		return s, nil
	}
	p.establish(ctx, s)
	logging.FromContext(ctx).Info("register_successful", "user_id", s.UserID, "role", s.Role)
	return p.Current(), nil
}

// UpdateProfile refreshes the identity fields from the server and keeps the token.
func (p *Provider) UpdateProfile(ctx context.Context, req transport.UpdateProfileRequest) (*models.Session, error) {
	if !p.LoggedIn() {
		return nil, fmt.Errorf("update profile: %w", apiclient.ErrUnauthorized)
	}
	a, err := p.authenticator()
	if err != nil {
		return nil, err
	}
	u, err := a.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("update profile: %w", apiclient.ErrUnauthorized)
	}
	next := *p.current
	if u.Name != "" {
		next.Name = u.Name
	}
	if u.Email != "" {
		next.Email = u.Email
	}
	if u.Approval != "" {
		next.Approval = u.Approval
	}
	p.current = &next
	p.mu.Unlock()

	p.persist(ctx, &next)
	return p.Current(), nil
}

// Logout destroys the in-memory session and its persisted snapshot.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	was := p.current
	p.current = nil
	hooks := append([]func(){}, p.onLogout...)
	p.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if err := p.store.Delete(ctx, p.profile); err != nil {
		logging.FromContext(ctx).Error("session_delete_failed", "profile", p.profile, "error", err)
		return fmt.Errorf("delete session snapshot: %w", err)
	}
	if was != nil {
		logging.FromContext(ctx).Info("logout_successful", "user_id", was.UserID)
	}
	return nil
}

// Forget logs out when userID is the account of the current session.
func (p *Provider) Forget(ctx context.Context, userID string) error {
	p.mu.RLock()
	match := p.current != nil && p.current.UserID == userID
	p.mu.RUnlock()
	if !match {
		return nil
	}
	return p.Logout(ctx)
}

// Rehydrate restores the persisted snapshot of the profile. A snapshot that
// fails validation is deleted and the provider stays logged out.
func (p *Provider) Rehydrate(ctx context.Context) (bool, error) {
	l := logging.FromContext(ctx).With("profile", p.profile)

	s, err := p.store.Load(ctx, p.profile)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session snapshot: %w", err)
	}

	if err := ValidateSnapshot(s, p.now()); err != nil {
		l.Warn("session_snapshot_rejected", "error", err)
		if derr := p.store.Delete(ctx, p.profile); derr != nil {
			l.Error("session_delete_failed", "error", derr)
		}
		return false, nil
	}

	p.mu.Lock()
	p.current = s
	p.mu.Unlock()
	l.Debug("session_rehydrated", "user_id", s.UserID)
	return true, nil
}

func (p *Provider) RequireRole(roles ...models.Role) error {
	s := p.Current()
	if !s.LoggedIn() {
		return apiclient.ErrUnauthorized
	}
	for _, r := range roles {
		if s.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// RequireApprovedSupplier gates supplier-portal calls: admins pass, suppliers
// pass only once approved.
func (p *Provider) RequireApprovedSupplier() error {
	s := p.Current()
	if !s.LoggedIn() {
		return apiclient.ErrUnauthorized
	}
	switch s.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleSupplier:
		if s.Approval == models.ApprovalApproved {
			return nil
		}
		return ErrPendingApproval
	}
	return ErrForbidden
}

func (p *Provider) authenticator() (Authenticator, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.auth == nil {
		return nil, errors.New("session provider has no authenticator bound")
	}
	return p.auth, nil
}

func (p *Provider) establish(ctx context.Context, s *models.Session) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = p.now().UTC()
	}

	p.mu.Lock()
	prev := p.current
	p.current = s
	var hooks []func()
	if prev != nil && prev.UserID != s.UserID {
		hooks = append(hooks, p.onLogout...)
	}
	p.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	p.persist(ctx, s)
}

// persist is best effort: a session that cannot be saved still works for the
// lifetime of the process.
func (p *Provider) persist(ctx context.Context, s *models.Session) {
	if err := p.store.Save(ctx, p.profile, s); err != nil {
		logging.FromContext(ctx).Error("session_save_failed", "profile", p.profile, "error", err)
	}
}
