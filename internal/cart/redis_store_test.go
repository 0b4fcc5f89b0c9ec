package cart

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-system/internal/models"
)

// setupTestStore creates a miniredis server and a RedisStore on it
func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	original := &models.Cart{Lines: []models.CartLine{
		{ProductID: 1, ProductName: "Burger", UnitPrice: decimal.RequireFromString("100.00"), Quantity: 2, Note: "no onions"},
		{ProductID: 2, ProductName: "Fries", UnitPrice: decimal.RequireFromString("50.00"), Quantity: 1},
	}}

	require.NoError(t, store.Save(ctx, "device-1", original))

	loaded, err := store.Load(ctx, "device-1")
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 2)

	assert.Equal(t, 1, loaded.Lines[0].ProductID)
	assert.Equal(t, 2, loaded.Lines[0].Quantity)
	assert.Equal(t, "no onions", loaded.Lines[0].Note)
	assert.True(t, loaded.Total().Equal(original.Total()))
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Load(context.Background(), "unknown-device")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_LoadCorrupt(t *testing.T) {
	store, mr := setupTestStore(t)

	mr.Set(storeKey("device-1"), "{not json")

	_, err := store.Load(context.Background(), "device-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_SaveOverwrites(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	first := &models.Cart{Lines: []models.CartLine{
		{ProductID: 1, ProductName: "Burger", UnitPrice: decimal.RequireFromString("100.00"), Quantity: 1},
	}}
	require.NoError(t, store.Save(ctx, "device-1", first))
	require.NoError(t, store.Save(ctx, "device-1", &models.Cart{}))

	loaded, err := store.Load(ctx, "device-1")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "device-1", &models.Cart{}))
	require.NoError(t, store.Delete(ctx, "device-1"))

	_, err := store.Load(ctx, "device-1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
