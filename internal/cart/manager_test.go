package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-system/internal/logger"
	"pos-system/internal/models"
)

type mockStore struct {
	mu      sync.Mutex
	carts   map[string]*models.Cart
	loadErr error
	saveErr error
	saves   int
}

func newMockStore() *mockStore {
	return &mockStore{carts: make(map[string]*models.Cart)}
}

func (m *mockStore) Load(_ context.Context, deviceID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	cart, ok := m.carts[deviceID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (m *mockStore) Save(_ context.Context, deviceID string, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[deviceID] = cart.Clone()
	return nil
}

func (m *mockStore) Delete(_ context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, deviceID)
	return nil
}

func (m *mockStore) stored(deviceID string) *models.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.carts[deviceID]
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func burger() models.Product {
	return models.Product{ID: 1, Name: "Burger", Price: price("100.00"), Available: true}
}

func fries() models.Product {
	return models.Product{ID: 2, Name: "Fries", Price: price("50.00"), Available: true}
}

func newTestManager(t *testing.T) (*Manager, *mockStore) {
	t.Helper()
	store := newMockStore()
	return NewManager("device-1", store, logger.New("test")), store
}

func TestAdd_NewLine(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	event, err := mgr.Add(ctx, burger(), 2, "")
	require.NoError(t, err)
	assert.Equal(t, EventLineAdded, event.Kind)
	assert.Equal(t, "Burger", event.ProductName)

	assert.False(t, mgr.IsEmpty())
	assert.True(t, mgr.Total().Equal(price("200.00")))

	// Persisted after the mutation
	stored := store.stored("device-1")
	require.NotNil(t, stored)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, 2, stored.Lines[0].Quantity)
}

func TestAdd_MergesSameProductWithoutNote(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Add(ctx, burger(), 1, "")
	require.NoError(t, err)
	event, err := mgr.Add(ctx, burger(), 2, "")
	require.NoError(t, err)

	assert.Equal(t, EventQuantityChanged, event.Kind)
	assert.Equal(t, 3, event.Quantity)

	snapshot := mgr.Snapshot()
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 3, snapshot.Lines[0].Quantity)
}

func TestAdd_DistinctNotesMakeDistinctLines(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Add(ctx, burger(), 1, "no onions")
	require.NoError(t, err)
	_, err = mgr.Add(ctx, burger(), 1, "extra cheese")
	require.NoError(t, err)

	snapshot := mgr.Snapshot()
	assert.Len(t, snapshot.Lines, 2)
	assert.True(t, mgr.Total().Equal(price("200.00")))
}

func TestAdd_InvalidQuantity(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Add(ctx, burger(), 0, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = mgr.Add(ctx, burger(), -3, "")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	assert.True(t, mgr.IsEmpty())
}

func TestAdd_UnavailableProduct(t *testing.T) {
	mgr, _ := newTestManager(t)

	p := burger()
	p.Available = false

	_, err := mgr.Add(context.Background(), p, 1, "")
	assert.ErrorIs(t, err, ErrProductUnavailable)
}

func TestAdd_NoteRequired(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	p := burger()
	p.NotesRequired = true

	_, err := mgr.Add(ctx, p, 1, "")
	assert.ErrorIs(t, err, ErrNoteRequired)

	_, err = mgr.Add(ctx, p, 1, "well done")
	assert.NoError(t, err)
}

func TestRemove_DeletesMatchingLine(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Add(ctx, burger(), 1, "")
	require.NoError(t, err)
	_, err = mgr.Add(ctx, fries(), 1, "")
	require.NoError(t, err)

	event := mgr.Remove(ctx, 1, "")
	assert.Equal(t, EventLineRemoved, event.Kind)

	snapshot := mgr.Snapshot()
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 2, snapshot.Lines[0].ProductID)
}

func TestRemove_AbsentLineIsNoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Add(ctx, burger(), 1, "")
	require.NoError(t, err)

	event := mgr.Remove(ctx, 99, "")
	assert.Equal(t, EventNoChange, event.Kind)
	assert.False(t, mgr.IsEmpty())
}

func TestSetQuantity_AbsoluteSet(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Add(ctx, burger(), 5, "")
	require.NoError(t, err)

	event := mgr.SetQuantity(ctx, 1, 2, "")
	assert.Equal(t, EventQuantityChanged, event.Kind)
	assert.Equal(t, 2, event.Quantity)
	assert.True(t, mgr.Total().Equal(price("200.00")))
}

func TestSetQuantity_ZeroAndNegativeRemove(t *testing.T) {
	for _, quantity := range []int{0, -1} {
		mgr, _ := newTestManager(t)
		ctx := context.Background()

		_, err := mgr.Add(ctx, burger(), 2, "")
		require.NoError(t, err)

		event := mgr.SetQuantity(ctx, 1, quantity, "")
		assert.Equal(t, EventLineRemoved, event.Kind)
		assert.True(t, mgr.IsEmpty())
		assert.True(t, mgr.Total().IsZero())
	}
}

func TestClear_EmptiesAndDeletesStoredCart(t *testing.T) {
	mgr, store := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Add(ctx, burger(), 2, "")
	require.NoError(t, err)
	require.NotNil(t, store.stored("device-1"))

	event := mgr.Clear(ctx)
	assert.Equal(t, EventCartCleared, event.Kind)
	assert.True(t, mgr.IsEmpty())

	// The stored copy is deleted, not overwritten with an empty cart
	assert.Nil(t, store.stored("device-1"))

	// A fresh manager restores to empty
	again := NewManager("device-1", store, logger.New("test"))
	again.Restore(ctx)
	assert.True(t, again.IsEmpty())
}

func TestTotal_RecomputedFromLines(t *testing.T) {
	mgr, _ := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Add(ctx, burger(), 2, "")
	require.NoError(t, err)
	_, err = mgr.Add(ctx, fries(), 1, "")
	require.NoError(t, err)
	assert.True(t, mgr.Total().Equal(price("250.00")))

	mgr.SetQuantity(ctx, 1, 1, "")
	assert.True(t, mgr.Total().Equal(price("150.00")))

	mgr.Remove(ctx, 2, "")
	assert.True(t, mgr.Total().Equal(price("100.00")))
}

func TestPersistFailure_DoesNotFailMutation(t *testing.T) {
	store := newMockStore()
	store.saveErr = errors.New("redis down")
	mgr := NewManager("device-1", store, logger.New("test"))

	_, err := mgr.Add(context.Background(), burger(), 1, "")
	assert.NoError(t, err)
	assert.False(t, mgr.IsEmpty())
}

func TestRestore_FallsBackToEmptyOnError(t *testing.T) {
	store := newMockStore()
	store.loadErr = errors.New("corrupt data")
	mgr := NewManager("device-1", store, logger.New("test"))

	mgr.Restore(context.Background())
	assert.True(t, mgr.IsEmpty())
}

func TestRestore_DropsInvalidLines(t *testing.T) {
	store := newMockStore()
	store.carts["device-1"] = &models.Cart{Lines: []models.CartLine{
		{ProductID: 1, ProductName: "Burger", UnitPrice: price("100.00"), Quantity: 2},
		{ProductID: 2, ProductName: "Fries", UnitPrice: price("50.00"), Quantity: 0},
	}}
	mgr := NewManager("device-1", store, logger.New("test"))

	mgr.Restore(context.Background())

	snapshot := mgr.Snapshot()
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 1, snapshot.Lines[0].ProductID)
}

func TestRegistry_RestoresPersistedCart(t *testing.T) {
	store := newMockStore()
	store.carts["device-7"] = &models.Cart{Lines: []models.CartLine{
		{ProductID: 1, ProductName: "Burger", UnitPrice: price("100.00"), Quantity: 1},
	}}

	registry := NewRegistry(store, logger.New("test"))

	mgr := registry.Manager(context.Background(), "device-7")
	assert.False(t, mgr.IsEmpty())

	// Same manager instance on subsequent calls
	again := registry.Manager(context.Background(), "device-7")
	assert.Same(t, mgr, again)
}
