package localstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shopfront.io/storefront/driver"
	"shopfront.io/storefront/models"
)

func newTestStore(t *testing.T) (Store, *sql.DB) {
	t.Helper()

	db, err := driver.ConnectSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStore(db, zap.NewNop()), db
}

func line(id uint64, title string, qty uint64) models.CartLine {
	return models.CartLine{
		Product:  models.Product{ID: id, Title: title, Price: 9.99},
		Quantity: qty,
	}
}

func TestStore_LoadEmptySlot(t *testing.T) {
	s, _ := newTestStore(t)

	cart := s.Load(context.Background())
	assert.True(t, cart.IsEmpty())
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	saved := models.Cart{Lines: []models.CartLine{
		line(1, "Mug", 2),
		line(2, "Shirt", 1),
	}}
	require.NoError(t, s.Save(ctx, saved))

	got := s.Load(ctx)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, uint64(1), got.Lines[0].Product.ID)
	assert.Equal(t, uint64(2), got.Lines[0].Quantity)
	assert.Equal(t, uint64(2), got.Lines[1].Product.ID)
	assert.Equal(t, "Shirt", got.Lines[1].Product.Title)
}

func TestStore_SaveOverwritesPriorContent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.Cart{Lines: []models.CartLine{line(1, "Mug", 2)}}))
	require.NoError(t, s.Save(ctx, models.Cart{Lines: []models.CartLine{line(2, "Shirt", 3)}}))

	got := s.Load(ctx)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, uint64(2), got.Lines[0].Product.ID)
}

func TestStore_CorruptSlotTreatedAsEmpty(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO kv_slots (name, value) VALUES (?, ?)`, "cart_items", []byte("{not json"))
	require.NoError(t, err)

	cart := s.Load(ctx)
	assert.True(t, cart.IsEmpty())
}

func TestStore_LoadRepairsZeroQuantityLines(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO kv_slots (name, value) VALUES (?, ?)`, "cart_items",
		[]byte(`[{"product":{"id":1,"title":"Mug","price":9.99},"quantity":0},
		         {"product":{"id":2,"title":"Shirt","price":19.5},"quantity":3}]`))
	require.NoError(t, err)

	cart := s.Load(ctx)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, uint64(2), cart.Lines[0].Product.ID)
}

func TestStore_Clear(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.Cart{Lines: []models.CartLine{line(1, "Mug", 1)}}))
	require.NoError(t, s.Clear(ctx))
	assert.True(t, s.Load(ctx).IsEmpty())

	// Clearing an already-empty slot succeeds.
	require.NoError(t, s.Clear(ctx))
}
