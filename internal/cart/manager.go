package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"pos-system/internal/logger"
	"pos-system/internal/models"
)

var (
	// ErrInvalidQuantity is returned when a caller passes a quantity below 1
	// to Add. This is a programming error on the caller's side, not a user
	// input condition.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrProductUnavailable is returned when adding a product that is marked
	// unavailable in the catalog
	ErrProductUnavailable = errors.New("product is not available")

	// ErrNoteRequired is returned when adding a product that requires a
	// preparation note without one
	ErrNoteRequired = errors.New("product requires a note")
)

// EventKind identifies what a cart mutation did
type EventKind string

const (
	EventLineAdded       EventKind = "line_added"
	EventLineRemoved     EventKind = "line_removed"
	EventQuantityChanged EventKind = "quantity_changed"
	EventCartCleared     EventKind = "cart_cleared"
	EventNoChange        EventKind = "no_change"
)

// Event describes the outcome of a cart mutation. Managers return events
// instead of performing notifications themselves; a notification layer
// observes and renders them.
type Event struct {
	Kind        EventKind
	ProductID   int
	ProductName string
	Quantity    int
	Note        string
}

// Manager holds the authoritative in-memory cart for one device and keeps it
// consistent with the persistent store. Every mutation persists synchronously
// so a racing clear and save resolve in issue order.
type Manager struct {
	mu       sync.Mutex
	deviceID string
	cart     *models.Cart
	store    Store
	logger   *logger.Logger
}

// NewManager creates a manager with an empty cart for the device
func NewManager(deviceID string, store Store, log *logger.Logger) *Manager {
	return &Manager{
		deviceID: deviceID,
		cart:     &models.Cart{},
		store:    store,
		logger:   log,
	}
}

// Restore loads the persisted cart for the device. A missing or undecodable
// stored cart falls back to an empty cart; that is a recoverable local
// condition and is only logged.
func (m *Manager) Restore(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.store.Load(ctx, m.deviceID)
	if err != nil {
		if !errors.Is(err, ErrCartNotFound) {
			m.logger.Error("cart_restore_failed", "Falling back to empty cart", "", err, map[string]interface{}{
				"device_id": m.deviceID,
			})
		}
		m.cart = &models.Cart{}
		return
	}

	// Drop any lines that were persisted in an invalid state
	lines := stored.Lines[:0]
	for _, line := range stored.Lines {
		if line.Quantity >= 1 {
			lines = append(lines, line)
		}
	}
	stored.Lines = lines
	m.cart = stored
}

// Add appends a new line or merges into the existing (product, note) line.
// Quantity must be at least 1.
func (m *Manager) Add(ctx context.Context, product models.Product, quantity int, note string) (Event, error) {
	if quantity < 1 {
		return Event{}, ErrInvalidQuantity
	}
	if !product.Available {
		return Event{}, ErrProductUnavailable
	}
	if product.NotesRequired && note == "" {
		return Event{}, ErrNoteRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.cart.Lines {
		if m.cart.Lines[i].Matches(product.ID, note) {
			m.cart.Lines[i].Quantity += quantity
			m.persist(ctx)
			return Event{
				Kind:        EventQuantityChanged,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    m.cart.Lines[i].Quantity,
				Note:        note,
			}, nil
		}
	}

	m.cart.Lines = append(m.cart.Lines, models.CartLine{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		Note:        note,
	})
	m.persist(ctx)

	return Event{
		Kind:        EventLineAdded,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Note:        note,
	}, nil
}

// Remove deletes the matching line. Removing an absent line is a no-op.
func (m *Manager) Remove(ctx context.Context, productID int, note string) Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.removeLocked(ctx, productID, note)
}

func (m *Manager) removeLocked(ctx context.Context, productID int, note string) Event {
	for i, line := range m.cart.Lines {
		if line.Matches(productID, note) {
			m.cart.Lines = append(m.cart.Lines[:i], m.cart.Lines[i+1:]...)
			m.persist(ctx)
			return Event{
				Kind:        EventLineRemoved,
				ProductID:   productID,
				ProductName: line.ProductName,
				Note:        note,
			}
		}
	}
	return Event{Kind: EventNoChange, ProductID: productID, Note: note}
}

// SetQuantity sets the line's quantity to an absolute value. A quantity of
// zero or below removes the line.
func (m *Manager) SetQuantity(ctx context.Context, productID, quantity int, note string) Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	if quantity <= 0 {
		return m.removeLocked(ctx, productID, note)
	}

	for i := range m.cart.Lines {
		if m.cart.Lines[i].Matches(productID, note) {
			m.cart.Lines[i].Quantity = quantity
			m.persist(ctx)
			return Event{
				Kind:        EventQuantityChanged,
				ProductID:   productID,
				ProductName: m.cart.Lines[i].ProductName,
				Quantity:    quantity,
				Note:        note,
			}
		}
	}
	return Event{Kind: EventNoChange, ProductID: productID, Note: note}
}

// Clear empties the cart and deletes the stored copy. Deletion failures are
// logged like any other persistence failure.
func (m *Manager) Clear(ctx context.Context) Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cart = &models.Cart{}
	if err := m.store.Delete(ctx, m.deviceID); err != nil {
		m.logger.Error("cart_delete_failed", "Failed to delete stored cart", "", err, map[string]interface{}{
			"device_id": m.deviceID,
		})
	}
	return Event{Kind: EventCartCleared}
}

// Total recomputes the cart total from its lines on every call
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cart.Total()
}

// IsEmpty reports whether checkout is currently allowed
func (m *Manager) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cart.IsEmpty()
}

// Snapshot returns a deep copy of the current cart
func (m *Manager) Snapshot() *models.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cart.Clone()
}

// persist writes the cart through to the store. Persistence failures are
// local and recoverable; they are logged, never surfaced to the caller.
func (m *Manager) persist(ctx context.Context) {
	if err := m.store.Save(ctx, m.deviceID, m.cart); err != nil {
		m.logger.Error("cart_persist_failed", "Failed to persist cart", "", err, map[string]interface{}{
			"device_id": m.deviceID,
			"lines":     len(m.cart.Lines),
		})
	}
}
