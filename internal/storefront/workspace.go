package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/service"
	"github.com/Skotchmaster/diamond_shop/internal/session"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownResource = errors.New("unknown resource")

// Workspace is everything one browser session sees: its own auth session and
// one synchronized copy of every collection.
type Workspace struct {
	ID      string
	Session *session.Provider
	API     *apiclient.Client

	Catalog       *service.CatalogService
	Inventory     *service.InventoryService
	Cart          *service.CartService
	Wishlist      *service.WishlistService
	Orders        *service.OrderService
	Addresses     *service.AddressService
	Notifications *service.NotificationService
	Dashboard     *service.DashboardService
	Users         *service.UserService
	Upload        *service.UploadService

	events events.Publisher

	mu       sync.Mutex
	lastSeen time.Time
	resets   map[string]func()

	restoreOnce sync.Once
	restoreErr  error
}

func newWorkspace(id string, d Deps) *Workspace {
	p := session.NewProvider(d.Store, id)
	api := apiclient.NewClient(d.BaseURL, p, d.Client)
	p.Bind(api)

	pub := d.Events
	if pub == nil {
		pub = events.Nop{}
	}

	w := &Workspace{
		ID:            id,
		Session:       p,
		API:           api,
		Catalog:       service.NewCatalogService(api),
		Inventory:     service.NewInventoryService(api, p, pub),
		Cart:          service.NewCartService(api, p, pub),
		Wishlist:      service.NewWishlistService(api, p, pub),
		Orders:        service.NewOrderService(api, p, pub),
		Addresses:     service.NewAddressService(api),
		Notifications: service.NewNotificationService(api),
		Dashboard:     service.NewDashboardService(api, p),
		Users:         service.NewUserService(api, p, pub),
		Upload:        service.NewUploadService(api, p, pub),
		events:        pub,
		lastSeen:      time.Now(),
	}
	w.resets = map[string]func(){
		w.Catalog.Diamonds.Name():    w.Catalog.Diamonds.Reset,
		"diamond":                    w.Catalog.Detail.Reset,
		w.Inventory.Items.Name():     w.Inventory.Items.Reset,
		"inventory_item":             w.Inventory.Detail.Reset,
		w.Cart.Items.Name():          w.Cart.Items.Reset,
		w.Wishlist.Items.Name():      w.Wishlist.Items.Reset,
		w.Orders.Mine.Name():         w.Orders.Mine.Reset,
		w.Orders.Seller.Name():       w.Orders.Seller.Reset,
		"order":                      w.Orders.Detail.Reset,
		w.Addresses.Items.Name():     w.Addresses.Items.Reset,
		w.Notifications.Items.Name(): w.Notifications.Items.Reset,
		"dashboard":                  w.Dashboard.Stats.Reset,
		w.Users.Items.Name():         w.Users.Items.Reset,
		"upload":                     w.Upload.Builder.Reset,
	}

	p.OnLogout(w.clear)
	return w
}

// Login authenticates the workspace session and loads the user's collections.
// A partial hydration failure does not fail the login; each collection keeps
// its own error.
func (w *Workspace) Login(ctx context.Context, req transport.LoginRequest) (*models.Session, error) {
	s, err := w.Session.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	w.publish(ctx, events.LoginSucceeded, s.UserID, map[string]any{"role": string(s.Role)})
	_ = w.Hydrate(ctx)
	return s, nil
}

func (w *Workspace) Register(ctx context.Context, req transport.RegisterRequest) (*models.Session, error) {
	s, err := w.Session.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	w.publish(ctx, events.Registered, s.UserID, map[string]any{"role": string(s.Role), "approvalStatus": string(s.Approval)})
	if s.LoggedIn() {
		_ = w.Hydrate(ctx)
	}
	return s, nil
}

func (w *Workspace) Logout(ctx context.Context) error {
	var uid string
	if s := w.Session.Current(); s != nil {
		uid = s.UserID
	}
	if err := w.Session.Logout(ctx); err != nil {
		return err
	}
	if uid != "" {
		w.publish(ctx, events.LoggedOut, uid, nil)
	}
	return nil
}

func (w *Workspace) publish(ctx context.Context, name, userID string, attrs map[string]any) {
	err := w.events.Publish(ctx, events.Event{
		Name:       name,
		Key:        userID,
		UserID:     userID,
		Resource:   "session",
		Attributes: attrs,
		At:         time.Now().UTC(),
	})
	if err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", name, "error", err)
	}
}

// clear drops every per-user collection. The public catalog survives a logout.
func (w *Workspace) clear() {
	w.Inventory.Items.Clear()
	w.Inventory.Detail.Clear()
	w.Cart.Items.Clear()
	w.Wishlist.Items.Clear()
	w.Orders.Mine.Clear()
	w.Orders.Seller.Clear()
	w.Orders.Detail.Clear()
	w.Addresses.Items.Clear()
	w.Notifications.Items.Clear()
	w.Dashboard.Stats.Clear()
	w.Users.Items.Clear()
	w.Upload.Builder.Discard()
}

// Hydrate loads the collections the logged-in role can see, concurrently.
// Every collection records its own outcome; the first error is returned.
func (w *Workspace) Hydrate(ctx context.Context) error {
	s := w.Session.Current()
	if !s.LoggedIn() {
		return apiclient.ErrUnauthorized
	}
	l := logging.FromContext(ctx).With("workspace", w.ID, "role", s.Role)

	var g errgroup.Group
	g.Go(func() error { return w.Cart.Fetch(ctx) })
	g.Go(func() error { return w.Wishlist.Fetch(ctx) })
	g.Go(func() error { return w.Orders.FetchMine(ctx, 1) })
	g.Go(func() error { return w.Addresses.Fetch(ctx) })
	g.Go(func() error { return w.Notifications.Fetch(ctx) })

	if w.Session.RequireApprovedSupplier() == nil {
		g.Go(func() error { return w.Inventory.Fetch(ctx, defaultInventoryFilter) })
		g.Go(func() error { return w.Orders.FetchSeller(ctx, 1) })
		g.Go(func() error {
			_, err := w.Dashboard.Fetch(ctx)
			return err
		})
	}
	if s.Role == models.RoleAdmin {
		g.Go(func() error { return w.Users.Fetch(ctx, defaultUserFilter) })
	}

	start := time.Now()
	err := g.Wait()
	if err != nil {
		l.Warn("hydrate_partial", "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return fmt.Errorf("hydrate workspace: %w", err)
	}
	l.Debug("hydrated", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Reset returns the named resource's statuses to idle.
func (w *Workspace) Reset(resource string) error {
	fn, ok := w.resets[resource]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}
	fn()
	return nil
}

func (w *Workspace) restore(ctx context.Context) error {
	w.restoreOnce.Do(func() {
		restored, err := w.Session.Rehydrate(ctx)
		if err != nil {
			w.restoreErr = err
			return
		}
		if restored {
			logging.FromContext(ctx).Info("session_restored", "workspace", w.ID)
		}
	})
	return w.restoreErr
}

func (w *Workspace) touch() {
	w.mu.Lock()
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}
