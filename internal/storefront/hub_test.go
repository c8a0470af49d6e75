package storefront

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/db"
	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/fakeapi"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
	"github.com/Skotchmaster/diamond_shop/internal/repo"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx    context.Context
	fake   *fakeapi.Server
	store  *repo.GormRepo
	events *events.Recorder
	deps   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := logging.IntoContext(context.Background(), logging.Discard())

	fake := fakeapi.New()
	srv := fake.Start()
	t.Cleanup(srv.Close)

	gdb, err := db.Open(ctx, filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	store := &repo.GormRepo{DB: gdb}
	require.NoError(t, store.Migrate(ctx))

	rec := &events.Recorder{}
	return &fixture{
		ctx:    ctx,
		fake:   fake,
		store:  store,
		events: rec,
		deps: Deps{
			BaseURL: srv.URL,
			Client:  apiclient.Options{Logger: logging.Discard()},
			Store:   store,
			Events:  rec,
		},
	}
}

func (f *fixture) login(t *testing.T, w *Workspace, role models.Role, approval models.ApprovalStatus) {
	t.Helper()
	email := string(role) + "@example.com"
	f.fake.AddUser(string(role), email, "pw", role, approval)
	_, err := w.Session.Login(f.ctx, transport.LoginRequest{Email: email, Password: "pw"})
	require.NoError(t, err)
}

func TestHub_WorkspaceIsLazyAndStable(t *testing.T) {
	f := newFixture(t)
	hub := NewHub(f.deps)
	id := NewID()
	require.True(t, ValidID(id))
	assert.False(t, ValidID("not-a-session"))

	a, err := hub.Workspace(f.ctx, id)
	require.NoError(t, err)
	b, err := hub.Workspace(f.ctx, id)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, hub.Len())
	assert.False(t, a.Session.LoggedIn())

	other, err := hub.Workspace(f.ctx, NewID())
	require.NoError(t, err)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, hub.Len())
}

func TestHub_RestoresPersistedSession(t *testing.T) {
	f := newFixture(t)
	id := NewID()

	w, err := NewHub(f.deps).Workspace(f.ctx, id)
	require.NoError(t, err)
	f.login(t, w, models.RoleBuyer, "")

	restarted := NewHub(f.deps)
	w2, err := restarted.Workspace(f.ctx, id)
	require.NoError(t, err)
	require.True(t, w2.Session.LoggedIn())
	assert.Equal(t, "Buyer@example.com", w2.Session.Current().Email)

	require.NoError(t, w2.Cart.Fetch(f.ctx))
	assert.Equal(t, remote.StatusSucceeded, w2.Cart.Items.State().Status)
}

func TestWorkspace_HydrateSupplier(t *testing.T) {
	f := newFixture(t)
	w, err := NewHub(f.deps).Workspace(f.ctx, NewID())
	require.NoError(t, err)
	f.login(t, w, models.RoleSupplier, models.ApprovalApproved)

	require.NoError(t, w.Hydrate(f.ctx))
	for name, st := range map[string]remote.State{
		"cart":          w.Cart.Items.State(),
		"wishlist":      w.Wishlist.Items.State(),
		"orders":        w.Orders.Mine.State(),
		"addresses":     w.Addresses.Items.State(),
		"notifications": w.Notifications.Items.State(),
		"inventory":     w.Inventory.Items.State(),
		"seller_orders": w.Orders.Seller.State(),
		"dashboard":     w.Dashboard.Stats.State(),
	} {
		assert.Equal(t, remote.StatusSucceeded, st.Status, name)
	}
	assert.Equal(t, remote.StatusIdle, w.Users.Items.State().Status)
}

func TestWorkspace_HydrateBuyerSkipsSupplierViews(t *testing.T) {
	f := newFixture(t)
	w, err := NewHub(f.deps).Workspace(f.ctx, NewID())
	require.NoError(t, err)
	f.login(t, w, models.RoleBuyer, "")

	require.NoError(t, w.Hydrate(f.ctx))
	assert.Zero(t, f.fake.Hits("GET /inventory/mine"))
	assert.Zero(t, f.fake.Hits("GET /dashboard/supplier"))
	assert.Equal(t, remote.StatusIdle, w.Inventory.Items.State().Status)
}

func TestWorkspace_HydrateFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	w, err := NewHub(f.deps).Workspace(f.ctx, NewID())
	require.NoError(t, err)
	f.login(t, w, models.RoleBuyer, "")
	f.fake.Fail("GET /wishlist", http.StatusInternalServerError, "wishlist is down")

	err = w.Hydrate(f.ctx)
	require.Error(t, err)
	assert.Equal(t, remote.State{Status: remote.StatusFailed, Error: "wishlist is down"}, w.Wishlist.Items.State())
	assert.Equal(t, remote.StatusSucceeded, w.Cart.Items.State().Status)
	assert.Equal(t, remote.StatusSucceeded, w.Notifications.Items.State().Status)
}

func TestWorkspace_HydrateRequiresLogin(t *testing.T) {
	f := newFixture(t)
	w, err := NewHub(f.deps).Workspace(f.ctx, NewID())
	require.NoError(t, err)

	require.ErrorIs(t, w.Hydrate(f.ctx), apiclient.ErrUnauthorized)
	assert.Zero(t, f.fake.TotalHits())
}

func TestWorkspace_LogoutClearsUserCollections(t *testing.T) {
	f := newFixture(t)
	f.fake.AddDiamond(models.Diamond{StockID: "RD-1", Carat: 1, Price: 1000})
	w, err := NewHub(f.deps).Workspace(f.ctx, NewID())
	require.NoError(t, err)
	f.login(t, w, models.RoleBuyer, "")

	require.NoError(t, w.Catalog.Browse(f.ctx, transport.DiamondFilter{}))
	d := w.Catalog.Diamonds.Items()[0]
	_, err = w.Cart.Add(f.ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 1, w.Cart.Items.Len())

	require.NoError(t, w.Session.Logout(f.ctx))
	assert.Zero(t, w.Cart.Items.Len())
	assert.Equal(t, remote.StatusIdle, w.Cart.Items.State().Status)
	assert.Equal(t, 1, w.Catalog.Diamonds.Len())

	_, err = f.store.Load(f.ctx, w.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestWorkspace_Reset(t *testing.T) {
	f := newFixture(t)
	w, err := NewHub(f.deps).Workspace(f.ctx, NewID())
	require.NoError(t, err)

	require.Error(t, w.Cart.Fetch(f.ctx))
	assert.Equal(t, remote.StatusFailed, w.Cart.Items.State().Status)

	require.NoError(t, w.Reset("cart"))
	assert.Equal(t, remote.StatusIdle, w.Cart.Items.State().Status)
	require.ErrorIs(t, w.Reset("basket"), ErrUnknownResource)
}

func TestHub_SweepEvictsIdleWorkspaces(t *testing.T) {
	f := newFixture(t)
	hub := NewHub(f.deps)
	stale, err := hub.Workspace(f.ctx, NewID())
	require.NoError(t, err)
	_, err = hub.Workspace(f.ctx, NewID())
	require.NoError(t, err)

	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	assert.Equal(t, 1, hub.Sweep(30*time.Minute))
	assert.Equal(t, 1, hub.Len())
}

func TestHub_ResumeRejectsUnknownIDs(t *testing.T) {
	f := newFixture(t)
	hub := NewHub(f.deps)

	for i := 0; i < 5; i++ {
		_, err := hub.Resume(f.ctx, NewID())
		require.ErrorIs(t, err, ErrUnknownSession)
	}
	assert.Zero(t, hub.Len())

	live, err := hub.Workspace(f.ctx, NewID())
	require.NoError(t, err)
	got, err := hub.Resume(f.ctx, live.ID)
	require.NoError(t, err)
	assert.Same(t, live, got)

	f.login(t, live, models.RoleBuyer, "")
	restarted := NewHub(f.deps)
	w, err := restarted.Resume(f.ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, w.Session.LoggedIn())
	assert.Equal(t, 1, restarted.Len())
}

func TestHub_MaxWorkspacesEvictsLeastRecentlySeen(t *testing.T) {
	f := newFixture(t)
	f.deps.MaxWorkspaces = 2
	hub := NewHub(f.deps)

	oldest, err := hub.Workspace(f.ctx, NewID())
	require.NoError(t, err)
	kept, err := hub.Workspace(f.ctx, NewID())
	require.NoError(t, err)
	oldest.mu.Lock()
	oldest.lastSeen = time.Now().Add(-time.Minute)
	oldest.mu.Unlock()

	_, err = hub.Workspace(f.ctx, NewID())
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Len())

	again, err := hub.Workspace(f.ctx, kept.ID)
	require.NoError(t, err)
	assert.Same(t, kept, again)
	_, err = hub.Resume(f.ctx, oldest.ID)
	require.ErrorIs(t, err, ErrUnknownSession)
}

func TestWorkspace_LoginHydratesAndLogoutAnnounces(t *testing.T) {
	f := newFixture(t)
	w, err := NewHub(f.deps).Workspace(f.ctx, NewID())
	require.NoError(t, err)
	f.fake.AddUser("Ada", "ada@example.com", "pw", models.RoleBuyer, "")

	_, err = w.Login(f.ctx, transport.LoginRequest{Email: "nobody@example.com", Password: "pw"})
	require.Error(t, err)
	assert.Empty(t, f.events.Events())

	s, err := w.Login(f.ctx, transport.LoginRequest{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", s.Name)
	assert.Equal(t, remote.StatusSucceeded, w.Cart.Items.State().Status)
	assert.Equal(t, remote.StatusSucceeded, w.Notifications.Items.State().Status)

	require.NoError(t, w.Logout(f.ctx))
	assert.Equal(t, []string{events.LoginSucceeded, events.LoggedOut}, f.events.Names())
	assert.Equal(t, s.UserID, f.events.Events()[1].UserID)
}

func TestWorkspace_RegisterPendingSupplierSkipsSupplierViews(t *testing.T) {
	f := newFixture(t)
	w, err := NewHub(f.deps).Workspace(f.ctx, NewID())
	require.NoError(t, err)

	s, err := w.Register(f.ctx, transport.RegisterRequest{Name: "Gem Co", Email: "gem@example.com", Password: "pw", Role: models.RoleSupplier})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, s.Approval)
	assert.Zero(t, f.fake.Hits("GET /inventory/mine"))
	assert.Equal(t, []string{events.Registered}, f.events.Names())
}
