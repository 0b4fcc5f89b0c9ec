package catalog

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

type mockCatalogRepo struct {
	mu       sync.Mutex
	products map[int]*models.Product
	gets     int
	inserts  int
	updates  int
	failNext error
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{products: make(map[int]*models.Product)}
}

func (m *mockCatalogRepo) ListProducts(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockCatalogRepo) ListAvailableProducts(_ context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.Available {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) ListProductsByCategory(_ context.Context, categoryID int) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.Available && p.CategoryID == categoryID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockCatalogRepo) GetProduct(_ context.Context, id int) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockCatalogRepo) InsertProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.inserts++
	p.ID = m.inserts
	clone := *p
	m.products[p.ID] = &clone
	return nil
}

func (m *mockCatalogRepo) UpdateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	clone := *p
	m.products[p.ID] = &clone
	return nil
}

func (m *mockCatalogRepo) DeleteProduct(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *mockCatalogRepo) ListCategories(_ context.Context) ([]models.Category, error) {
	return nil, nil
}

func (m *mockCatalogRepo) InsertCategory(_ context.Context, c *models.Category) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	c.ID = 1
	return nil
}

func (m *mockCatalogRepo) DeleteCategory(_ context.Context, _ int) error { return nil }

type mockCache struct {
	mu      sync.Mutex
	entries map[int]*models.Product
	getErr  error
	sets    int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[int]*models.Product)}
}

func (m *mockCache) Get(_ context.Context, id int) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.entries[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	clone := *p
	return &clone, nil
}

func (m *mockCache) Set(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	clone := *p
	m.entries[p.ID] = &clone
	return nil
}

func (m *mockCache) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.entries, id)
	return nil
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func burger() *models.Product {
	return &models.Product{
		Name:       "Burger",
		Price:      price("100.00"),
		CategoryID: 1,
		Available:  true,
	}
}

func newTestService(t *testing.T) (*Service, *mockCatalogRepo, *mockCache) {
	t.Helper()
	repo := newMockCatalogRepo()
	cache := newMockCache()
	return NewService(repo, cache, logger.New("test")), repo, cache
}

func TestGetProduct_CacheMissFillsCache(t *testing.T) {
	service, repo, cache := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.CreateProduct(ctx, burger()))

	product, err := service.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Burger", product.Name)
	assert.Equal(t, 1, repo.gets)
	assert.Equal(t, 1, cache.sets)

	// Second read is served from cache
	_, err = service.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets)
}

func TestGetProduct_CacheFailureFallsThrough(t *testing.T) {
	service, repo, cache := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.CreateProduct(ctx, burger()))
	cache.getErr = errors.New("redis down")

	product, err := service.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Burger", product.Name)
	assert.Equal(t, 1, repo.gets)
}

func TestGetProduct_NotFound(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.GetProduct(context.Background(), 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateProduct_ConfirmsAfterInsert(t *testing.T) {
	service, _, _ := newTestService(t)

	p := burger()
	require.NoError(t, service.CreateProduct(context.Background(), p))

	assert.Equal(t, models.EntityConfirmed, p.State)
	assert.NotZero(t, p.ID)
}

func TestCreateProduct_StaysPendingOnFailure(t *testing.T) {
	service, repo, _ := newTestService(t)
	repo.failNext = errors.New("connection refused")

	p := burger()
	err := service.CreateProduct(context.Background(), p)
	assert.Error(t, err)
	assert.Equal(t, models.EntityPending, p.State)
}

func TestCreateProduct_Invalid(t *testing.T) {
	service, repo, _ := newTestService(t)

	p := burger()
	p.Price = price("-1.00")

	err := service.CreateProduct(context.Background(), p)
	assert.Error(t, err)
	assert.Equal(t, 0, repo.inserts)
}

func TestUpdateProduct_InvalidatesCache(t *testing.T) {
	service, _, cache := newTestService(t)
	ctx := context.Background()

	p := burger()
	require.NoError(t, service.CreateProduct(ctx, p))

	// Warm the cache
	_, err := service.GetProduct(ctx, p.ID)
	require.NoError(t, err)

	p.Price = price("120.00")
	require.NoError(t, service.UpdateProduct(ctx, p))
	assert.Equal(t, 1, cache.deletes)

	// Next read sees the new price
	got, err := service.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price("120.00")))
}

func TestUpdateProduct_RequiresID(t *testing.T) {
	service, _, _ := newTestService(t)

	err := service.UpdateProduct(context.Background(), burger())
	assert.Error(t, err)
}

func TestDeleteProduct_InvalidatesCache(t *testing.T) {
	service, _, cache := newTestService(t)
	ctx := context.Background()

	p := burger()
	require.NoError(t, service.CreateProduct(ctx, p))
	_, err := service.GetProduct(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, service.DeleteProduct(ctx, p.ID))
	assert.Equal(t, 1, cache.deletes)

	_, err = service.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMenu_OnlyAvailableProducts(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.CreateProduct(ctx, burger()))

	hidden := burger()
	hidden.Name = "Secret Burger"
	hidden.Available = false
	require.NoError(t, service.CreateProduct(ctx, hidden))

	menu, err := service.Menu(ctx)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "Burger", menu[0].Name)

	all, err := service.AllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateCategory_Lifecycle(t *testing.T) {
	service, _, _ := newTestService(t)

	c := &models.Category{Name: "Burgers"}
	require.NoError(t, service.CreateCategory(context.Background(), c))
	assert.Equal(t, models.EntityConfirmed, c.State)

	invalid := &models.Category{}
	assert.Error(t, service.CreateCategory(context.Background(), invalid))
}
