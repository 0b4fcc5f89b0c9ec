package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntityState tracks whether a catalog entity has been confirmed by the database.
// Admin-created entities are pending until the insert round-trips and the
// service-assigned ID is known.
type EntityState string

const (
	EntityPending   EntityState = "pending"
	EntityConfirmed EntityState = "confirmed"
)

// Product represents a menu item in the catalog
type Product struct {
	ID            int             `json:"id,omitempty" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	CategoryID    int             `json:"category_id" db:"category_id"`
	ImageURL      string          `json:"image_url,omitempty" db:"image_url"`
	Available     bool            `json:"available" db:"available"`
	NotesRequired bool            `json:"notes_required" db:"notes_required"`
	State         EntityState     `json:"state,omitempty" db:"-"`
	CreatedAt     time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// Category groups products on the menu
type Category struct {
	ID        int         `json:"id,omitempty" db:"id"`
	Name      string      `json:"name" db:"name"`
	Icon      string      `json:"icon,omitempty" db:"icon"`
	State     EntityState `json:"state,omitempty" db:"-"`
	CreatedAt time.Time   `json:"created_at,omitempty" db:"created_at"`
}

// Validate checks a product before it is written to the catalog
func (p *Product) Validate() error {
	if len(p.Name) == 0 {
		return fmt.Errorf("name is required")
	}
	if len(p.Name) > 100 {
		return fmt.Errorf("name must not exceed 100 characters")
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must not be negative")
	}
	if p.Price.Exponent() < -2 {
		return fmt.Errorf("price must have at most two decimal places")
	}
	if p.CategoryID <= 0 {
		return fmt.Errorf("category_id is required")
	}
	return nil
}

// Validate checks a category before it is written to the catalog
func (c *Category) Validate() error {
	if len(c.Name) == 0 {
		return fmt.Errorf("name is required")
	}
	if len(c.Name) > 50 {
		return fmt.Errorf("name must not exceed 50 characters")
	}
	return nil
}
