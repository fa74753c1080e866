package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopfront.io/storefront/models"
	"shopfront.io/storefront/models/enum"
)

// journal records remote and local side effects in arrival order so tests
// can assert migration ordering across both stores.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) record(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeRemote struct {
	mu      sync.Mutex
	cart    models.Cart
	journal *journal

	addErr    map[uint64]error
	updateErr error
	removeErr error
}

func newFakeRemote(j *journal) *fakeRemote {
	return &fakeRemote{journal: j, addErr: make(map[uint64]error)}
}

func (r *fakeRemote) FetchCart(_ context.Context) models.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal.record("remote.fetch")
	return r.cart.Clone()
}

func (r *fakeRemote) AddItem(_ context.Context, productID, quantity uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.addErr[productID]; err != nil {
		return err
	}
	r.journal.record(fmt.Sprintf("remote.add:%d:%d", productID, quantity))
	if i := r.cart.Find(productID); i >= 0 {
		r.cart.Lines[i].Quantity += quantity
	} else {
		r.cart.Lines = append(r.cart.Lines, models.CartLine{
			Product:  models.Product{ID: productID},
			Quantity: quantity,
		})
	}
	return nil
}

func (r *fakeRemote) UpdateItem(_ context.Context, productID, quantity uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.journal.record(fmt.Sprintf("remote.update:%d:%d", productID, quantity))
	if i := r.cart.Find(productID); i >= 0 {
		r.cart.Lines[i].Quantity = quantity
	}
	return nil
}

func (r *fakeRemote) RemoveItem(_ context.Context, productID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.removeErr != nil {
		return r.removeErr
	}
	r.journal.record(fmt.Sprintf("remote.remove:%d", productID))
	if i := r.cart.Find(productID); i >= 0 {
		r.cart.Lines = append(r.cart.Lines[:i], r.cart.Lines[i+1:]...)
	}
	return nil
}

type fakeLocal struct {
	mu      sync.Mutex
	slot    []models.CartLine // nil means absent
	journal *journal
}

func newFakeLocal(j *journal) *fakeLocal {
	return &fakeLocal{journal: j}
}

func (l *fakeLocal) Load(_ context.Context) models.Cart {
	l.mu.Lock()
	defer l.mu.Unlock()
	cart := models.Cart{Lines: append([]models.CartLine(nil), l.slot...)}
	cart.Normalize()
	return cart
}

func (l *fakeLocal) Save(_ context.Context, cart models.Cart) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journal.record("local.save")
	l.slot = append([]models.CartLine(nil), cart.Lines...)
	return nil
}

func (l *fakeLocal) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journal.record("local.clear")
	l.slot = nil
	return nil
}

func product(id uint64) models.Product {
	return models.Product{ID: id, Title: fmt.Sprintf("product-%d", id), Price: float64(id)}
}

func newTestEngine(t *testing.T) (*Engine, *fakeLocal, *fakeRemote, *journal) {
	t.Helper()
	j := &journal{}
	local := newFakeLocal(j)
	remote := newFakeRemote(j)
	return NewEngine(local, remote, zap.NewNop()), local, remote, j
}

func TestEngine_AnonymousAddDistinctProductsKeepsOrder(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.AddItem(ctx, product(3), 1))
	require.NoError(t, engine.AddItem(ctx, product(1), 2))
	require.NoError(t, engine.AddItem(ctx, product(2), 4))

	cart := engine.Items()
	require.Len(t, cart.Lines, 3)
	assert.Equal(t, uint64(3), cart.Lines[0].Product.ID)
	assert.Equal(t, uint64(1), cart.Lines[1].Product.ID)
	assert.Equal(t, uint64(2), cart.Lines[2].Product.ID)
	assert.Equal(t, uint64(2), cart.Lines[1].Quantity)
}

func TestEngine_AnonymousAddSameProductSumsQuantities(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.AddItem(ctx, product(7), 2))
	require.NoError(t, engine.AddItem(ctx, product(7), 3))

	cart := engine.Items()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, uint64(5), cart.Lines[0].Quantity)
}

func TestEngine_AnonymousAddZeroQuantityCountsAsOne(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.AddItem(ctx, product(7), 0))

	cart := engine.Items()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, uint64(1), cart.Lines[0].Quantity)
}

func TestEngine_AnonymousUpdateReplacesQuantity(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.AddItem(ctx, product(7), 2))
	require.NoError(t, engine.UpdateItem(ctx, 7, 4))

	cart := engine.Items()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, uint64(4), cart.Lines[0].Quantity, "update is absolute, not additive")
}

func TestEngine_AnonymousUpdateMissingLineIsNoop(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.UpdateItem(ctx, 42, 3))
	assert.True(t, engine.Items().IsEmpty())
}

func TestEngine_UpdateToZeroRemovesLine(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		engine, local, _, _ := newTestEngine(t)
		engine.Start(ctx, enum.SessionStateAnonymous)

		require.NoError(t, engine.AddItem(ctx, product(7), 2))
		require.NoError(t, engine.UpdateItem(ctx, 7, 0))

		assert.True(t, engine.Items().IsEmpty())
		for _, line := range local.Load(ctx).Lines {
			assert.GreaterOrEqual(t, line.Quantity, uint64(1))
		}
		assert.True(t, local.Load(ctx).IsEmpty())
	})

	t.Run("authenticated", func(t *testing.T) {
		engine, _, remote, j := newTestEngine(t)
		remote.cart = models.Cart{Lines: []models.CartLine{{Product: product(7), Quantity: 2}}}
		engine.Start(ctx, enum.SessionStateAuthenticated)

		require.NoError(t, engine.UpdateItem(ctx, 7, 0))

		assert.True(t, engine.Items().IsEmpty())
		assert.Contains(t, j.all(), "remote.remove:7", "zero quantity becomes a remove call")
	})
}

func TestEngine_AnonymousRemovePersistsEmptyCart(t *testing.T) {
	engine, local, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.AddItem(ctx, product(7), 1))
	require.NoError(t, engine.RemoveItem(ctx, 7))

	assert.True(t, engine.Items().IsEmpty())
	assert.True(t, local.Load(ctx).IsEmpty(), "a reload must see the removal")
}

func TestEngine_AnonymousRoundTripThroughLocalStore(t *testing.T) {
	engine, local, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.AddItem(ctx, product(3), 2))
	require.NoError(t, engine.AddItem(ctx, product(9), 1))

	reloaded := local.Load(ctx)
	require.Len(t, reloaded.Lines, 2)
	assert.Equal(t, engine.Items(), reloaded)
}

func TestEngine_AuthenticatedMutationsRederiveFromRemote(t *testing.T) {
	engine, _, remote, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAuthenticated)

	require.NoError(t, engine.AddItem(ctx, product(7), 2))

	// The server, not the engine, performs merge math; the in-memory cart
	// is whatever the re-fetch returned.
	remote.mu.Lock()
	remote.cart.Lines[0].Quantity = 99
	remote.mu.Unlock()

	require.NoError(t, engine.AddItem(ctx, product(8), 1))
	cart := engine.Items()
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, uint64(99), cart.Lines[0].Quantity)
}

func TestEngine_AuthenticatedMutationFailureLeavesStateUntouched(t *testing.T) {
	engine, _, remote, _ := newTestEngine(t)
	ctx := context.Background()
	remote.cart = models.Cart{Lines: []models.CartLine{{Product: product(1), Quantity: 1}}}
	engine.Start(ctx, enum.SessionStateAuthenticated)
	before := engine.Items()

	boom := errors.New("boom")
	remote.addErr[9] = boom
	remote.updateErr = boom
	remote.removeErr = boom

	err := engine.AddItem(ctx, product(9), 1)
	require.ErrorIs(t, err, boom)
	err = engine.UpdateItem(ctx, 1, 5)
	require.ErrorIs(t, err, boom)
	err = engine.RemoveItem(ctx, 1)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, before, engine.Items())
}

func TestEngine_ClearIsIdempotent(t *testing.T) {
	engine, local, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.AddItem(ctx, product(7), 2))
	require.NoError(t, engine.Clear(ctx))
	assert.True(t, engine.Items().IsEmpty())
	assert.True(t, local.Load(ctx).IsEmpty())

	require.NoError(t, engine.Clear(ctx))
	assert.True(t, engine.Items().IsEmpty())
}

func TestEngine_MigrationUploadsInOrderThenClearsThenFetches(t *testing.T) {
	engine, local, remote, j := newTestEngine(t)
	ctx := context.Background()

	local.slot = []models.CartLine{
		{Product: product(1), Quantity: 2},
		{Product: product(2), Quantity: 1},
	}
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.HandleSessionChange(ctx, enum.SessionStateAuthenticated))

	entries := j.all()
	require.GreaterOrEqual(t, len(entries), 4)
	tail := entries[len(entries)-4:]
	assert.Equal(t, []string{
		"remote.add:1:2",
		"remote.add:2:1",
		"local.clear",
		"remote.fetch",
	}, tail)

	cart := engine.Items()
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, uint64(2), cart.Lines[0].Quantity)
	assert.True(t, local.Load(ctx).IsEmpty())

	remote.mu.Lock()
	assert.Len(t, remote.cart.Lines, 2)
	remote.mu.Unlock()
}

func TestEngine_MigrationWithEmptyLocalCartStillClearsSlot(t *testing.T) {
	engine, _, _, j := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	require.NoError(t, engine.HandleSessionChange(ctx, enum.SessionStateAuthenticated))

	entries := j.all()
	assert.Contains(t, entries, "local.clear")
	assert.NotContains(t, entries, "remote.add:1:1")
}

func TestEngine_PartialMigrationKeepsSlotAndSurfacesError(t *testing.T) {
	engine, local, remote, _ := newTestEngine(t)
	ctx := context.Background()

	local.slot = []models.CartLine{
		{Product: product(1), Quantity: 2},
		{Product: product(2), Quantity: 1},
	}
	boom := errors.New("boom")
	remote.addErr[2] = boom
	engine.Start(ctx, enum.SessionStateAnonymous)

	err := engine.HandleSessionChange(ctx, enum.SessionStateAuthenticated)
	require.ErrorIs(t, err, boom)

	// The slot keeps every line so nothing unsent is lost; the in-memory
	// cart still reflects what the server accepted.
	assert.Len(t, local.Load(ctx).Lines, 2)
	cart := engine.Items()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, uint64(1), cart.Lines[0].Product.ID)
	assert.Equal(t, enum.SessionStateAuthenticated, engine.State())
}

func TestEngine_StartAuthenticatedClearsStaleLocalData(t *testing.T) {
	engine, local, remote, _ := newTestEngine(t)
	ctx := context.Background()

	local.slot = []models.CartLine{{Product: product(5), Quantity: 3}}
	remote.cart = models.Cart{Lines: []models.CartLine{{Product: product(1), Quantity: 1}}}

	engine.Start(ctx, enum.SessionStateAuthenticated)

	assert.True(t, local.Load(ctx).IsEmpty(), "stale anonymous cart is dropped, not migrated")
	cart := engine.Items()
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, uint64(1), cart.Lines[0].Product.ID)
}

func TestEngine_LogoutResourcesFromLocalWithoutClearing(t *testing.T) {
	engine, _, remote, j := newTestEngine(t)
	ctx := context.Background()
	remote.cart = models.Cart{Lines: []models.CartLine{{Product: product(1), Quantity: 1}}}
	engine.Start(ctx, enum.SessionStateAuthenticated)

	before := len(j.all())
	require.NoError(t, engine.HandleSessionChange(ctx, enum.SessionStateAnonymous))

	assert.True(t, engine.Items().IsEmpty(), "slot was cleared at login, so the anonymous cart is empty")
	assert.Equal(t, enum.SessionStateAnonymous, engine.State())
	for _, entry := range j.all()[before:] {
		assert.NotEqual(t, "local.clear", entry, "logout must not touch the slot")
	}
}

func TestEngine_SameStateTransitionIsNoop(t *testing.T) {
	engine, local, _, j := newTestEngine(t)
	ctx := context.Background()
	local.slot = []models.CartLine{{Product: product(1), Quantity: 2}}
	engine.Start(ctx, enum.SessionStateAnonymous)

	before := len(j.all())
	require.NoError(t, engine.HandleSessionChange(ctx, enum.SessionStateAnonymous))
	assert.Equal(t, before, len(j.all()), "no stores touched on a same-state notification")
}

func TestEngine_SubscribeNotifiesOnEveryChange(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)

	var notified []uint64
	cancel := engine.Subscribe(func(cart models.Cart) {
		notified = append(notified, cart.TotalQuantity())
	})

	require.NoError(t, engine.AddItem(ctx, product(1), 2))
	require.NoError(t, engine.UpdateItem(ctx, 1, 5))
	require.NoError(t, engine.Clear(ctx))
	assert.Equal(t, []uint64{2, 5, 0}, notified)

	cancel()
	require.NoError(t, engine.AddItem(ctx, product(1), 1))
	assert.Len(t, notified, 3, "no notifications after cancel")
}

func TestEngine_ItemsReturnsACopy(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()
	engine.Start(ctx, enum.SessionStateAnonymous)
	require.NoError(t, engine.AddItem(ctx, product(1), 2))

	snapshot := engine.Items()
	snapshot.Lines[0].Quantity = 42

	assert.Equal(t, uint64(2), engine.Items().Lines[0].Quantity)
}
