package cart

import (
	"context"
	"errors"

	"pos-system/internal/models"
)

// Store is the device-scoped persistence slot for serialized carts. It is a
// plain get/set keyed by device ID, not a queryable database.
type Store interface {
	Load(ctx context.Context, deviceID string) (*models.Cart, error)
	Save(ctx context.Context, deviceID string, cart *models.Cart) error
	Delete(ctx context.Context, deviceID string) error
}

// ErrCartNotFound is returned by Load when no cart is stored for the device
var ErrCartNotFound = errors.New("cart not found")
