package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/events"
	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/remote"
)

var ErrAlreadyPresent = errors.New("already present")

// Sessions is the slice of the session provider the services depend on.
type Sessions interface {
	Current() *models.Session
	RequireRole(roles ...models.Role) error
	RequireApprovedSupplier() error
	Forget(ctx context.Context, userID string) error
}

type base struct {
	sessions Sessions
	events   events.Publisher
}

func newBase(s Sessions, pub events.Publisher) base {
	if pub == nil {
		pub = events.Nop{}
	}
	return base{sessions: s, events: pub}
}

func (b base) userID() string {
	if s := b.sessions.Current(); s != nil {
		return s.UserID
	}
	return ""
}

// emit publishes an activity event. Delivery failures are logged and never
// fail the user operation.
func (b base) emit(ctx context.Context, name, resource string, attrs map[string]any) {
	uid := b.userID()
	e := events.Event{Name: name, Key: uid, UserID: uid, Resource: resource, Attributes: attrs, At: time.Now().UTC()}
	if err := b.events.Publish(ctx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", name, "error", err)
	}
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", remote.ErrValidation, fmt.Sprintf(format, args...))
}
