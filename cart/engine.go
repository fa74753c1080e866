// Package cart owns the in-memory cart and reconciles it against the two
// backing stores: the durable local slot while the session is anonymous,
// and the authoritative remote cart once it is authenticated.
package cart

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shopfront.io/storefront/localstore"
	"shopfront.io/storefront/models"
	"shopfront.io/storefront/models/enum"
)

// RemoteStore is the engine's view of the remote cart API.
type RemoteStore interface {
	// FetchCart returns the authoritative server-side cart. It never
	// fails; outages degrade to an empty cart at the client layer.
	FetchCart(ctx context.Context) models.Cart

	AddItem(ctx context.Context, productID, quantity uint64) error
	UpdateItem(ctx context.Context, productID, quantity uint64) error
	RemoveItem(ctx context.Context, productID uint64) error
}

// Subscriber receives a snapshot after every in-memory cart change.
type Subscriber func(models.Cart)

// Engine dispatches every cart operation against the backing store the
// current session state marks as authoritative. Mutations and session
// transitions serialize behind one mutex, so two in-flight authenticated
// mutations can never interleave their re-fetch-and-replace steps.
type Engine struct {
	local  localstore.Store
	remote RemoteStore
	logger *zap.Logger

	// opMu serializes mutations and transition handling.
	opMu sync.Mutex

	stateMu sync.RWMutex
	cart    models.Cart
	state   enum.SessionState

	subMu  sync.Mutex
	subs   map[uint64]Subscriber
	nextID uint64
}

func NewEngine(local localstore.Store, remote RemoteStore, logger *zap.Logger) *Engine {
	return &Engine{
		local:  local,
		remote: remote,
		logger: logger,
		state:  enum.SessionStateAnonymous,
		subs:   make(map[uint64]Subscriber),
	}
}

// Start populates the engine for the session state active at load time.
// For an authenticated session the local slot is cleared unconditionally;
// it can only hold stale data from a prior anonymous session.
func (e *Engine) Start(ctx context.Context, state enum.SessionState) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.setState(state)
	if state == enum.SessionStateAuthenticated {
		if err := e.local.Clear(ctx); err != nil {
			e.logger.Warn("Failed to clear stale local cart", zap.Error(err))
		}
		e.setCart(e.remote.FetchCart(ctx))
		return
	}
	e.setCart(e.local.Load(ctx))
}

// Items returns a snapshot of the in-memory cart. It never blocks behind
// an in-flight mutation.
func (e *Engine) Items() models.Cart {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.cart.Clone()
}

// State returns the session state the engine is currently dispatching on.
func (e *Engine) State() enum.SessionState {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

// Subscribe registers fn to run after every in-memory cart change. The
// returned cancel removes the subscription.
func (e *Engine) Subscribe(fn Subscriber) (cancel func()) {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	id := e.nextID
	e.nextID++
	e.subs[id] = fn

	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

// AddItem adds quantity of product to the cart. A zero quantity counts as
// one, matching the operation's default. While anonymous the matching line
// is incremented (or appended) and persisted locally; while authenticated
// the increment is delegated to the server and the cart re-derived from it.
func (e *Engine) AddItem(ctx context.Context, product models.Product, quantity uint64) error {
	if quantity == 0 {
		quantity = 1
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	if e.State() == enum.SessionStateAuthenticated {
		if err := e.remote.AddItem(ctx, product.ID, quantity); err != nil {
			return fmt.Errorf("add cart item %d: %w", product.ID, err)
		}
		e.setCart(e.remote.FetchCart(ctx))
		return nil
	}

	cart := e.Items()
	if i := cart.Find(product.ID); i >= 0 {
		cart.Lines[i].Quantity += quantity
	} else {
		cart.Lines = append(cart.Lines, models.CartLine{Product: product, Quantity: quantity})
	}
	e.setCart(cart)
	e.persistLocal(ctx, cart)
	return nil
}

// UpdateItem sets the absolute quantity of the line for productID. A zero
// quantity removes the line: quantities below one never reach either store.
func (e *Engine) UpdateItem(ctx context.Context, productID, quantity uint64) error {
	if quantity == 0 {
		return e.RemoveItem(ctx, productID)
	}

	e.opMu.Lock()
	defer e.opMu.Unlock()

	if e.State() == enum.SessionStateAuthenticated {
		if err := e.remote.UpdateItem(ctx, productID, quantity); err != nil {
			return fmt.Errorf("update cart item %d: %w", productID, err)
		}
		e.setCart(e.remote.FetchCart(ctx))
		return nil
	}

	cart := e.Items()
	i := cart.Find(productID)
	if i < 0 {
		return nil
	}
	cart.Lines[i].Quantity = quantity
	e.setCart(cart)
	e.persistLocal(ctx, cart)
	return nil
}

// RemoveItem deletes the line for productID; absent lines are a no-op.
func (e *Engine) RemoveItem(ctx context.Context, productID uint64) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if e.State() == enum.SessionStateAuthenticated {
		if err := e.remote.RemoveItem(ctx, productID); err != nil {
			return fmt.Errorf("remove cart item %d: %w", productID, err)
		}
		e.setCart(e.remote.FetchCart(ctx))
		return nil
	}

	cart := e.Items()
	i := cart.Find(productID)
	if i < 0 {
		return nil
	}
	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	e.setCart(cart)
	e.persistLocal(ctx, cart)
	return nil
}

// Clear empties the in-memory cart. While anonymous the durable slot is
// cleared as well, so a reload cannot resurrect the cart. Idempotent.
func (e *Engine) Clear(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.setCart(models.Cart{})
	if e.State() == enum.SessionStateAnonymous {
		if err := e.local.Clear(ctx); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
	}
	return nil
}

// HandleSessionChange runs once per session transition.
//
// On the edge into an authenticated session the local cart migrates to the
// server: each line is uploaded sequentially in cart order, then the slot
// is cleared, then the in-memory cart is re-derived from the server. A
// failed upload stops the migration, leaves the slot intact for the lines
// not yet sent, and surfaces the error; lines already accepted stay on the
// server, so the in-memory cart is still re-derived before returning.
//
// On the edge back to anonymous the slot is re-read as-is; logout never
// touches local data.
func (e *Engine) HandleSessionChange(ctx context.Context, next enum.SessionState) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	if e.State() == next {
		return nil
	}
	e.setState(next)

	if next == enum.SessionStateAnonymous {
		e.setCart(e.local.Load(ctx))
		return nil
	}

	migrationErr := e.migrateLocal(ctx)
	e.setCart(e.remote.FetchCart(ctx))
	return migrationErr
}

func (e *Engine) migrateLocal(ctx context.Context) error {
	localCart := e.local.Load(ctx)
	for _, line := range localCart.Lines {
		if err := e.remote.AddItem(ctx, line.Product.ID, line.Quantity); err != nil {
			e.logger.Error("Cart migration stopped, local slot kept",
				zap.Uint64("product_id", line.Product.ID), zap.Error(err))
			return fmt.Errorf("migrate cart line %d: %w", line.Product.ID, err)
		}
	}

	if err := e.local.Clear(ctx); err != nil {
		e.logger.Warn("Failed to clear local cart after migration", zap.Error(err))
	}

	if !localCart.IsEmpty() {
		e.logger.Info("Migrated local cart to remote store",
			zap.Int("lines", len(localCart.Lines)),
			zap.Uint64("quantity", localCart.TotalQuantity()))
	}
	return nil
}

// persistLocal mirrors the in-memory cart into the durable slot. Local
// writes are fire-and-forget: a failed write costs persistence across
// reloads, not the current session's cart.
func (e *Engine) persistLocal(ctx context.Context, cart models.Cart) {
	if err := e.local.Save(ctx, cart); err != nil {
		e.logger.Error("Failed to persist local cart", zap.Error(err))
	}
}

func (e *Engine) setState(state enum.SessionState) {
	e.stateMu.Lock()
	e.state = state
	e.stateMu.Unlock()
}

func (e *Engine) setCart(cart models.Cart) {
	e.stateMu.Lock()
	e.cart = cart
	e.stateMu.Unlock()
	e.notify(cart)
}

func (e *Engine) notify(cart models.Cart) {
	e.subMu.Lock()
	subs := make([]Subscriber, 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.subMu.Unlock()

	for _, fn := range subs {
		fn(cart.Clone())
	}
}
