package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/apiclient"
	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/repo"
	"github.com/Skotchmaster/diamond_shop/internal/session"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/google/uuid"
)

// ErrUnknownSession is returned by Resume for ids that are neither live nor
// persisted.
var ErrUnknownSession = errors.New("unknown session")

var (
	defaultInventoryFilter = transport.DiamondFilter{Page: 1}
	defaultUserFilter      = transport.UserFilter{Page: 1}
)

type Deps struct {
	BaseURL string
	Client  apiclient.Options
	Store   session.Store
	Events  events.Publisher

	// MaxWorkspaces bounds the live workspaces. When full, the least recently
	// seen one is evicted. Zero means no bound.
	MaxWorkspaces int
}

// Hub owns the workspaces of all browser sessions, keyed by session id.
type Hub struct {
	deps Deps

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewHub(d Deps) *Hub {
	return &Hub{deps: d, workspaces: map[string]*Workspace{}}
}

func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like a session id issued by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Workspace returns the workspace of id, creating it and restoring its
// persisted session on first use.
func (h *Hub) Workspace(ctx context.Context, id string) (*Workspace, error) {
	h.mu.Lock()
	w, ok := h.workspaces[id]
	if !ok {
		if limit := h.deps.MaxWorkspaces; limit > 0 && len(h.workspaces) >= limit {
			h.evictOldestLocked()
		}
		w = newWorkspace(id, h.deps)
		h.workspaces[id] = w
	}
	h.mu.Unlock()

	w.touch()
	if err := w.restore(ctx); err != nil {
		h.Drop(id)
		return nil, err
	}
	return w, nil
}

// Resume is Workspace for ids presented by a client. An id with no live
// workspace and no persisted session yields ErrUnknownSession, so callers
// issue a fresh id rather than materializing arbitrary ones.
func (h *Hub) Resume(ctx context.Context, id string) (*Workspace, error) {
	h.mu.Lock()
	_, live := h.workspaces[id]
	h.mu.Unlock()
	if !live {
		if _, err := h.deps.Store.Load(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUnknownSession
			}
			return nil, err
		}
	}
	return h.Workspace(ctx, id)
}

func (h *Hub) evictOldestLocked() {
	var (
		oldest string
		seen   time.Time
	)
	for id, w := range h.workspaces {
		if t := w.idleSince(); oldest == "" || t.Before(seen) {
			oldest, seen = id, t
		}
	}
	if oldest != "" {
		delete(h.workspaces, oldest)
	}
}

func (h *Hub) Drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.workspaces, id)
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.workspaces)
}

// Sweep evicts workspaces idle for longer than maxIdle. Their persisted
// sessions stay in the store and are restored on the next request.
func (h *Hub) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, w := range h.workspaces {
		if w.idleSince().Before(cutoff) {
			delete(h.workspaces, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (h *Hub) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := h.Sweep(maxIdle); n > 0 {
				logging.FromContext(ctx).Debug("workspaces_evicted", "count", n)
			}
		}
	}
}
