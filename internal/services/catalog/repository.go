package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pos-system/internal/database"
	"pos-system/internal/models"
)

// ErrProductNotFound is returned when the requested product does not exist
var ErrProductNotFound = errors.New("product not found")

// Repository persists the product catalog in PostgreSQL
type Repository struct {
	db *database.DB
}

// NewRepository creates a catalog repository on the given database
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// ListProducts returns every product, including unavailable ones, for admin
// views
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	return r.queryProducts(ctx, database.ListProductsSQL)
}

// ListAvailableProducts returns the customer-facing menu
func (r *Repository) ListAvailableProducts(ctx context.Context) ([]models.Product, error) {
	return r.queryProducts(ctx, database.ListAvailableProductsSQL)
}

// ListProductsByCategory returns the available products in one category
func (r *Repository) ListProductsByCategory(ctx context.Context, categoryID int) ([]models.Product, error) {
	return r.queryProducts(ctx, database.ListProductsByCategorySQL, categoryID)
}

// GetProduct fetches one product by ID
func (r *Repository) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	var p models.Product
	err := r.db.QueryRow(ctx, database.GetProductSQL, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.ImageURL,
		&p.Available, &p.NotesRequired, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	p.State = models.EntityConfirmed
	return &p, nil
}

// InsertProduct persists a new product and fills in its assigned ID
func (r *Repository) InsertProduct(ctx context.Context, p *models.Product) error {
	err := r.db.QueryRow(ctx, database.InsertProductSQL,
		p.Name, p.Description, p.Price, p.CategoryID, p.ImageURL, p.Available, p.NotesRequired,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// UpdateProduct overwrites an existing product
func (r *Repository) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := r.db.Exec(ctx, database.UpdateProductSQL,
		p.Name, p.Description, p.Price, p.CategoryID, p.ImageURL,
		p.Available, p.NotesRequired, p.ID,
	); err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes a product from the catalog
func (r *Repository) DeleteProduct(ctx context.Context, id int) error {
	if err := r.db.Exec(ctx, database.DeleteProductSQL, id); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// ListCategories returns all menu categories
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, database.ListCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.State = models.EntityConfirmed
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// InsertCategory persists a new category and fills in its assigned ID
func (r *Repository) InsertCategory(ctx context.Context, c *models.Category) error {
	err := r.db.QueryRow(ctx, database.InsertCategorySQL, c.Name, c.Icon).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category
func (r *Repository) DeleteCategory(ctx context.Context, id int) error {
	if err := r.db.Exec(ctx, database.DeleteCategorySQL, id); err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	return nil
}

func (r *Repository) queryProducts(ctx context.Context, sql string, args ...interface{}) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.ImageURL,
			&p.Available, &p.NotesRequired, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.State = models.EntityConfirmed
		products = append(products, p)
	}

	return products, rows.Err()
}
