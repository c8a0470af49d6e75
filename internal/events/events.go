package events

import (
	"context"
	"sync"
	"time"
)

const (
	LoginSucceeded    = "session.login"
	LoggedOut         = "session.logout"
	Registered        = "session.registered"
	CartItemAdded     = "cart.item_added"
	CartItemRemoved   = "cart.item_removed"
	WishlistItemAdded = "wishlist.item_added"
	ItemMoved         = "collection.item_moved"
	OrderPlaced       = "order.placed"
	OrderPaid         = "order.paid"
	InventoryChanged  = "inventory.changed"
	InventoryImported = "inventory.imported"
	UserApproval      = "user.approval_changed"
	UserDeleted       = "user.deleted"
)

// Event is one user activity record. Key groups events of the same actor.
type Event struct {
	Name       string         `json:"name"`
	Key        string         `json:"key"`
	UserID     string         `json:"userId,omitempty"`
	Resource   string         `json:"resource,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	At         time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}
