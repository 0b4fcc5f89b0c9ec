package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"pos-system/internal/logger"
	"pos-system/internal/models"
)

// Repo is the persistence surface the service needs
type Repo interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListAvailableProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID int) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (*models.Product, error)
	InsertProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]models.Category, error)
	InsertCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int) error
}

// Service owns the product catalog. Prices and identifiers are treated as
// immutable for the duration of a cart session; product reads go through the
// cache with concurrent misses collapsed.
type Service struct {
	repo   Repo
	cache  ProductCache
	logger *logger.Logger
	sfg    singleflight.Group
}

// NewService creates the catalog service
func NewService(repo Repo, cache ProductCache, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// GetProduct returns one product, served from cache when possible
func (s *Service) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	v, err, _ := s.sfg.Do(strconv.Itoa(id), func() (interface{}, error) {
		product, err := s.cache.Get(ctx, id)
		if err == nil {
			return product, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Error("product_cache_get_failed", "Cache read failed, falling through to database", "", err, map[string]interface{}{
				"product_id": id,
			})
		}

		product, err = s.repo.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := s.cache.Set(ctx, product); err != nil {
			s.logger.Error("product_cache_set_failed", "Failed to cache product", "", err, map[string]interface{}{
				"product_id": id,
			})
		}

		return product, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*models.Product), nil
}

// Menu returns the customer-facing list of available products
func (s *Service) Menu(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListAvailableProducts(ctx)
}

// MenuByCategory returns the available products in one category
func (s *Service) MenuByCategory(ctx context.Context, categoryID int) ([]models.Product, error) {
	return s.repo.ListProductsByCategory(ctx, categoryID)
}

// AllProducts returns every product for admin views
func (s *Service) AllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListProducts(ctx)
}

// CreateProduct persists an admin-created product. The product stays pending
// until the insert round-trips and the assigned ID is known.
func (s *Service) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	p.State = models.EntityPending
	if err := s.repo.InsertProduct(ctx, p); err != nil {
		return err
	}
	p.State = models.EntityConfirmed

	s.logger.Info("product_created", "Product added to catalog", "", map[string]interface{}{
		"product_id": p.ID,
		"name":       p.Name,
	})
	return nil
}

// UpdateProduct overwrites an existing product and invalidates its cache entry
func (s *Service) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	if p.ID <= 0 {
		return fmt.Errorf("product id is required")
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, p.ID)
	return nil
}

// DeleteProduct removes a product and invalidates its cache entry
func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Categories returns all menu categories
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// CreateCategory persists an admin-created category with the same
// pending/confirmed lifecycle as products
func (s *Service) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}

	c.State = models.EntityPending
	if err := s.repo.InsertCategory(ctx, c); err != nil {
		return err
	}
	c.State = models.EntityConfirmed
	return nil
}

// DeleteCategory removes a category
func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) invalidate(ctx context.Context, id int) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Error("product_cache_invalidate_failed", "Failed to invalidate cached product", "", err, map[string]interface{}{
			"product_id": id,
		})
	}
}
