package models

import (
	"github.com/shopspring/decimal"
)

// CartLine is one entry in a cart: a product, a quantity, and an optional
// free-text note for the kitchen. Lines are unique per (product id, note).
type CartLine struct {
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Note        string          `json:"note,omitempty"`
}

// Subtotal returns unit price times quantity for this line
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Matches reports whether the line belongs to the given (product, note) pair
func (l CartLine) Matches(productID int, note string) bool {
	return l.ProductID == productID && l.Note == note
}

// Cart is the customer's in-progress selection, in insertion order
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// IsEmpty reports whether the cart holds no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total sums unit price times quantity over all lines. It is recomputed on
// every call rather than cached.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Clone returns a deep copy of the cart so a snapshot survives later mutation
func (c *Cart) Clone() *Cart {
	clone := &Cart{Lines: make([]CartLine, len(c.Lines))}
	copy(clone.Lines, c.Lines)
	return clone
}
