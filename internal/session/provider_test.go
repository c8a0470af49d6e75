package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/db"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/repo"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/Skotchmaster/diamond_shop/pkg/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	data map[string]models.Session
}

func newMemStore() *memStore { return &memStore{data: map[string]models.Session{}} }

func (m *memStore) Load(_ context.Context, profile string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[profile]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) Save(_ context.Context, profile string, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[profile] = *s
	return nil
}

func (m *memStore) Delete(_ context.Context, profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, profile)
	return nil
}

type fakeAuth struct {
	login    *models.Session
	register *models.Session
	profile  *models.User
	err      error
}

func (f *fakeAuth) Login(context.Context, transport.LoginRequest) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.login
	return &cp, nil
}

func (f *fakeAuth) Register(context.Context, transport.RegisterRequest) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.register
	return &cp, nil
}

func (f *fakeAuth) UpdateProfile(context.Context, transport.UpdateProfileRequest) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func buyerSession() *models.Session {
	return &models.Session{UserID: "u-1", Name: "Ada", Email: "ada@example.com", Role: models.RoleBuyer, Token: "opaque-token"}
}

func TestProvider_LoginPersistsAndExposesToken(t *testing.T) {
	store := newMemStore()
	p := NewProvider(store, "default")
	p.Bind(&fakeAuth{login: buyerSession()})

	_, ok := p.Token()
	require.False(t, ok)

	s, err := p.Login(context.Background(), transport.LoginRequest{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.UserID)
	assert.False(t, s.CreatedAt.IsZero())

	tok, ok := p.Token()
	require.True(t, ok)
	assert.Equal(t, "opaque-token", tok)

	saved, err := store.Load(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", saved.Token)
}

func TestProvider_LoginFailureStaysLoggedOut(t *testing.T) {
	p := NewProvider(newMemStore(), "default")
	p.Bind(&fakeAuth{err: &apiclient.APIError{Status: 401, Message: "Invalid credentials"}})

	_, err := p.Login(context.Background(), transport.LoginRequest{Email: "x@y.z"})
	require.Error(t, err)
	assert.False(t, p.LoggedIn())
	assert.Nil(t, p.Current())
}

func TestProvider_LoginWithoutTokenRejected(t *testing.T) {
	s := buyerSession()
	s.Token = ""
	p := NewProvider(newMemStore(), "default")
	p.Bind(&fakeAuth{login: s})

	_, err := p.Login(context.Background(), transport.LoginRequest{})
	require.ErrorIs(t, err, ErrNoToken)
	assert.False(t, p.LoggedIn())
}

func TestProvider_LogoutRunsHooksAndDeletesSnapshot(t *testing.T) {
	store := newMemStore()
	p := NewProvider(store, "default")
	p.Bind(&fakeAuth{login: buyerSession()})
	_, err := p.Login(context.Background(), transport.LoginRequest{})
	require.NoError(t, err)

	called := 0
	p.OnLogout(func() { called++ })

	require.NoError(t, p.Logout(context.Background()))
	assert.Equal(t, 1, called)
	assert.False(t, p.LoggedIn())
	_, err = store.Load(context.Background(), "default")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, p.Logout(context.Background()))
}

func TestProvider_LoginAsAnotherUserClearsPreviousState(t *testing.T) {
	auth := &fakeAuth{login: buyerSession()}
	p := NewProvider(newMemStore(), "default")
	p.Bind(auth)
	_, err := p.Login(context.Background(), transport.LoginRequest{})
	require.NoError(t, err)

	cleared := 0
	p.OnLogout(func() { cleared++ })

	_, err = p.Login(context.Background(), transport.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, cleared)

	other := buyerSession()
	other.UserID = "u-2"
	auth.login = other
	_, err = p.Login(context.Background(), transport.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)
}

func TestProvider_RegisterSupplierIsPending(t *testing.T) {
	s := &models.Session{UserID: "s-1", Email: "gem@example.com", Role: models.RoleSupplier, Token: "t"}
	p := NewProvider(newMemStore(), "default")
	p.Bind(&fakeAuth{register: s})

	got, err := p.Register(context.Background(), transport.RegisterRequest{Email: "gem@example.com", Role: models.RoleSupplier})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, got.Approval)
	assert.ErrorIs(t, p.RequireApprovedSupplier(), ErrPendingApproval)
}

func TestProvider_RegisterRejectsUnknownRole(t *testing.T) {
	p := NewProvider(newMemStore(), "default")
	p.Bind(&fakeAuth{})
	_, err := p.Register(context.Background(), transport.RegisterRequest{Role: "Jeweller"})
	require.Error(t, err)
}

func TestProvider_UpdateProfileKeepsToken(t *testing.T) {
	auth := &fakeAuth{login: buyerSession(), profile: &models.User{ID: "u-1", Name: "Ada L.", Email: "ada@lovelace.io"}}
	p := NewProvider(newMemStore(), "default")
	p.Bind(auth)

	_, err := p.UpdateProfile(context.Background(), transport.UpdateProfileRequest{Name: "Ada L."})
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	_, err = p.Login(context.Background(), transport.LoginRequest{})
	require.NoError(t, err)

	s, err := p.UpdateProfile(context.Background(), transport.UpdateProfileRequest{Name: "Ada L."})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", s.Name)
	assert.Equal(t, "ada@lovelace.io", s.Email)
	assert.Equal(t, "opaque-token", s.Token)
}

func TestProvider_Forget(t *testing.T) {
	p := NewProvider(newMemStore(), "default")
	p.Bind(&fakeAuth{login: buyerSession()})
	_, err := p.Login(context.Background(), transport.LoginRequest{})
	require.NoError(t, err)

	require.NoError(t, p.Forget(context.Background(), "someone-else"))
	assert.True(t, p.LoggedIn())

	require.NoError(t, p.Forget(context.Background(), "u-1"))
	assert.False(t, p.LoggedIn())
}

func TestProvider_RoleGuards(t *testing.T) {
	tests := []struct {
		name     string
		session  *models.Session
		wantSupp error
	}{
		{"logged out", nil, apiclient.ErrUnauthorized},
		{"buyer", &models.Session{UserID: "1", Role: models.RoleBuyer, Token: "t"}, ErrForbidden},
		{"pending supplier", &models.Session{UserID: "1", Role: models.RoleSupplier, Approval: models.ApprovalPending, Token: "t"}, ErrPendingApproval},
		{"rejected supplier", &models.Session{UserID: "1", Role: models.RoleSupplier, Approval: models.ApprovalRejected, Token: "t"}, ErrPendingApproval},
		{"approved supplier", &models.Session{UserID: "1", Role: models.RoleSupplier, Approval: models.ApprovalApproved, Token: "t"}, nil},
		{"admin", &models.Session{UserID: "1", Role: models.RoleAdmin, Token: "t"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProvider(newMemStore(), "default")
			p.current = tt.session
			err := p.RequireApprovedSupplier()
			if tt.wantSupp == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantSupp)
			}
		})
	}

	p := NewProvider(newMemStore(), "default")
	p.current = &models.Session{UserID: "1", Role: models.RoleBuyer, Token: "t"}
	assert.NoError(t, p.RequireRole(models.RoleBuyer, models.RoleAdmin))
	assert.ErrorIs(t, p.RequireRole(models.RoleAdmin), ErrForbidden)
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := tokens.Sign(tokens.SessionClaims{
		UserID:           "u-1",
		Role:             "Buyer",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}, []byte("secret"))
	require.NoError(t, err)
	return tok
}

func TestProvider_Rehydrate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		snapshot *models.Session
		restored bool
		keptInDB bool
	}{
		{"no snapshot", nil, false, false},
		{"opaque token", buyerSession(), true, true},
		{"valid jwt", &models.Session{UserID: "u-1", Email: "a@b.c", Role: models.RoleBuyer, Token: signed(t, now.Add(time.Hour))}, true, true},
		{"expired jwt", &models.Session{UserID: "u-1", Email: "a@b.c", Role: models.RoleBuyer, Token: signed(t, now.Add(-time.Minute))}, false, false},
		{"garbled jwt", &models.Session{UserID: "u-1", Email: "a@b.c", Role: models.RoleBuyer, Token: "aaa.bbb.ccc"}, false, false},
		{"missing token", &models.Session{UserID: "u-1", Email: "a@b.c", Role: models.RoleBuyer}, false, false},
		{"unknown role", &models.Session{UserID: "u-1", Email: "a@b.c", Role: "Root", Token: "t"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			if tt.snapshot != nil {
				require.NoError(t, store.Save(context.Background(), "p", tt.snapshot))
			}
			p := NewProvider(store, "p")
			p.now = func() time.Time { return now }

			ok, err := p.Rehydrate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.restored, ok)
			assert.Equal(t, tt.restored, p.LoggedIn())

			_, err = store.Load(context.Background(), "p")
			assert.Equal(t, tt.keptInDB, err == nil)
		})
	}
}

type brokenStore struct{ memStore }

func (b *brokenStore) Load(context.Context, string) (*models.Session, error) {
	return nil, errors.New("disk on fire")
}

func TestProvider_RehydrateStoreError(t *testing.T) {
	p := NewProvider(&brokenStore{memStore: *newMemStore()}, "p")
	_, err := p.Rehydrate(context.Background())
	require.Error(t, err)
	assert.False(t, p.LoggedIn())
}

func TestProvider_SurvivesRestartWithSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	gdb, err := db.Open(ctx, path)
	require.NoError(t, err)
	r := &repo.GormRepo{DB: gdb}
	require.NoError(t, r.Migrate(ctx))

	first := NewProvider(r, "cli")
	first.Bind(&fakeAuth{login: buyerSession()})
	_, err = first.Login(ctx, transport.LoginRequest{})
	require.NoError(t, err)
	require.NoError(t, db.Close(gdb))

	gdb, err = db.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	second := NewProvider(&repo.GormRepo{DB: gdb}, "cli")
	ok, err := second.Rehydrate(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	tok, _ := second.Token()
	assert.Equal(t, "opaque-token", tok)
}
