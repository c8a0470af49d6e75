package remote

import (
	"context"
	"sync"

	"github.com/Skotchmaster/diamond_shop/internal/logging"
)

// Entity mirrors a single backend record. Its status is independent from any
// collection so a detail view never clobbers a list view's loading state.
type Entity[T any] struct {
	name string

	mu    sync.RWMutex
	value *T
	state State
	gen   uint64
	epoch uint64
}

func NewEntity[T any](name string) *Entity[T] {
	return &Entity[T]{name: name, state: State{Status: StatusIdle}}
}

type EntityView[T any] struct {
	State
	Value *T `json:"value"`
}

func (e *Entity[T]) Fetch(ctx context.Context, load func(context.Context) (T, error)) (T, error) {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	e.state = State{Status: StatusLoading}
	e.mu.Unlock()

	v, err := load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	l := logging.FromContext(ctx).With("resource", e.name)
	if gen != e.gen {
		l.Debug("fetch_superseded", "generation", gen, "latest", e.gen)
		return v, ErrSuperseded
	}
	if err != nil {
		e.state = State{Status: StatusFailed, Error: ErrorMessage(err)}
		l.Warn("fetch_failed", "error", err)
		return v, err
	}
	e.value = &v
	e.state = State{Status: StatusSucceeded}
	return v, nil
}

// Epoch identifies the session the held value belongs to. Clear advances it.
func (e *Entity[T]) Epoch() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.epoch
}

// Set replaces the held value with a server response obtained elsewhere. The
// value is dropped and false returned when the entity was cleared after epoch
// was read.
func (e *Entity[T]) Set(epoch uint64, v T) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if epoch != e.epoch {
		return false
	}
	e.value = &v
	return true
}

func (e *Entity[T]) Get() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.value == nil {
		var zero T
		return zero, false
	}
	return *e.value, true
}

func (e *Entity[T]) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Entity[T]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = State{Status: StatusIdle}
}

func (e *Entity[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.epoch++
	e.value = nil
	e.state = State{Status: StatusIdle}
}

func (e *Entity[T]) View() EntityView[T] {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var v *T
	if e.value != nil {
		cp := *e.value
		v = &cp
	}
	return EntityView[T]{State: e.state, Value: v}
}
