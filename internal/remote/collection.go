package remote

import (
	"context"
	"slices"
	"sync"

	"github.com/Skotchmaster/diamond_shop/internal/logging"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

type Keyed interface {
	Key() string
}

// Collection mirrors one backend collection. Only its methods mutate the items;
// readers get copies.
type Collection[T Keyed] struct {
	name string

	mu       sync.RWMutex
	items    []T
	meta     transport.PageMeta
	fetch    State
	mutation State
	gen      uint64
	// epoch advances only on Clear; mutations started before it are dropped.
	epoch uint64
}

func NewCollection[T Keyed](name string) *Collection[T] {
	return &Collection[T]{
		name:     name,
		fetch:    State{Status: StatusIdle},
		mutation: State{Status: StatusIdle},
	}
}

type View[T any] struct {
	State
	Items    []T                `json:"items"`
	Meta     transport.PageMeta `json:"meta"`
	Empty    bool               `json:"empty"`
	Mutation State              `json:"mutation"`
}

func (c *Collection[T]) Name() string { return c.name }

// Fetch replaces the whole collection with the loader's page. Only the most
// recently issued fetch may apply its result; older ones return ErrSuperseded.
func (c *Collection[T]) Fetch(ctx context.Context, load func(context.Context) (transport.Page[T], error)) error {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.fetch = State{Status: StatusLoading}
	c.mu.Unlock()

	page, err := load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	l := logging.FromContext(ctx).With("resource", c.name)
	if gen != c.gen {
		l.Debug("fetch_superseded", "generation", gen, "latest", c.gen)
		return ErrSuperseded
	}
	if err != nil {
		c.fetch = State{Status: StatusFailed, Error: ErrorMessage(err)}
		l.Warn("fetch_failed", "error", err)
		return err
	}

	c.items = slices.Clone(page.Items)
	if c.items == nil {
		c.items = []T{}
	}
	c.meta = page.Meta
	c.fetch = State{Status: StatusSucceeded}
	return nil
}

// FetchList is Fetch for endpoints that return a bare list.
func (c *Collection[T]) FetchList(ctx context.Context, load func(context.Context) ([]T, error)) error {
	return c.Fetch(ctx, func(ctx context.Context) (transport.Page[T], error) {
		items, err := load(ctx)
		if err != nil {
			return transport.Page[T]{}, err
		}
		return transport.Page[T]{Items: items, Meta: transport.PageMeta{Page: 1, Pages: 1, Total: len(items)}}, nil
	})
}

// Create appends the entity returned by the server. An entity whose key is
// already present replaces the existing entry instead.
func (c *Collection[T]) Create(ctx context.Context, create func(context.Context) (T, error)) (T, error) {
	epoch := c.beginMutation()
	item, err := create(ctx)
	if err != nil {
		return item, c.failMutation(ctx, epoch, "create", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clearedLocked(ctx, epoch, "create") {
		return item, ErrSuperseded
	}
	if i := c.indexLocked(item.Key()); i >= 0 {
		c.items[i] = item
	} else {
		c.items = append(c.items, item)
		c.meta.Total++
	}
	c.mutation = State{Status: StatusSucceeded}
	return item, nil
}

// Update replaces the entry matching the returned entity's key. A key that is
// not in the collection leaves the items unchanged.
func (c *Collection[T]) Update(ctx context.Context, update func(context.Context) (T, error)) (T, error) {
	epoch := c.beginMutation()
	item, err := update(ctx)
	if err != nil {
		return item, c.failMutation(ctx, epoch, "update", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clearedLocked(ctx, epoch, "update") {
		return item, ErrSuperseded
	}
	if i := c.indexLocked(item.Key()); i >= 0 {
		c.items[i] = item
	}
	c.mutation = State{Status: StatusSucceeded}
	return item, nil
}

func (c *Collection[T]) Delete(ctx context.Context, key string, del func(context.Context) error) error {
	epoch := c.beginMutation()
	if err := del(ctx); err != nil {
		return c.failMutation(ctx, epoch, "delete", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clearedLocked(ctx, epoch, "delete") {
		return ErrSuperseded
	}
	c.removeLocked(key)
	c.mutation = State{Status: StatusSucceeded}
	return nil
}

// Replace is a mutation whose response is the complete new collection.
func (c *Collection[T]) Replace(ctx context.Context, replace func(context.Context) ([]T, error)) error {
	epoch := c.beginMutation()
	items, err := replace(ctx)
	if err != nil {
		return c.failMutation(ctx, epoch, "replace", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clearedLocked(ctx, epoch, "replace") {
		return ErrSuperseded
	}
	c.items = slices.Clone(items)
	if c.items == nil {
		c.items = []T{}
	}
	c.meta.Total = len(c.items)
	c.mutation = State{Status: StatusSucceeded}
	return nil
}

// Fail records a failure detected before any request was made, such as a
// client-side validation error.
func (c *Collection[T]) Fail(ctx context.Context, err error) error {
	return c.failMutation(ctx, c.Epoch(), "precondition", err)
}

// Epoch identifies the session the held items belong to. Clear advances it.
func (c *Collection[T]) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// Upsert reconciles an entity produced by a call made on another collection,
// e.g. the wishlist entry created by moving a cart item. The item is dropped
// and false returned when the collection was cleared after epoch was read.
func (c *Collection[T]) Upsert(epoch uint64, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return false
	}
	if i := c.indexLocked(item.Key()); i >= 0 {
		c.items[i] = item
		return true
	}
	c.items = append(c.items, item)
	c.meta.Total++
	return true
}

func (c *Collection[T]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// Reset returns both states to idle once a UI has consumed a terminal status.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetch = State{Status: StatusIdle}
	c.mutation = State{Status: StatusIdle}
}

// Clear drops the items along with any in-flight fetch or mutation, used on
// logout.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.epoch++
	c.items = nil
	c.meta = transport.PageMeta{}
	c.fetch = State{Status: StatusIdle}
	c.mutation = State{Status: StatusIdle}
}

func (c *Collection[T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetch
}

func (c *Collection[T]) MutationState() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mutation
}

func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexLocked(key); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Contains(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *Collection[T]) Meta() transport.PageMeta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meta
}

func (c *Collection[T]) View() View[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := slices.Clone(c.items)
	if items == nil {
		items = []T{}
	}
	return View[T]{
		State:    c.fetch,
		Items:    items,
		Meta:     c.meta,
		Empty:    c.fetch.Status == StatusSucceeded && len(c.items) == 0,
		Mutation: c.mutation,
	}
}

func (c *Collection[T]) beginMutation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mutation = State{Status: StatusLoading}
	return c.epoch
}

// failMutation records err unless the collection was cleared meanwhile, in
// which case the failure belongs to the previous session and only err is
// returned.
func (c *Collection[T]) failMutation(ctx context.Context, epoch uint64, op string, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clearedLocked(ctx, epoch, op) {
		return err
	}
	c.mutation = State{Status: StatusFailed, Error: ErrorMessage(err)}
	logging.FromContext(ctx).Warn("mutation_failed", "resource", c.name, "op", op, "error", err)
	return err
}

func (c *Collection[T]) clearedLocked(ctx context.Context, epoch uint64, op string) bool {
	if epoch == c.epoch {
		return false
	}
	logging.FromContext(ctx).Debug("mutation_superseded", "resource", c.name, "op", op, "epoch", epoch, "latest", c.epoch)
	return true
}

func (c *Collection[T]) indexLocked(key string) int {
	return slices.IndexFunc(c.items, func(it T) bool { return it.Key() == key })
}

func (c *Collection[T]) removeLocked(key string) {
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(it T) bool { return it.Key() == key })
	if removed := before - len(c.items); removed > 0 && c.meta.Total >= removed {
		c.meta.Total -= removed
	}
}
