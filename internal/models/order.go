package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how an order was paid
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
)

// PaymentStatus represents the settlement state of an order
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
)

// OrderStatus represents the fulfillment state of an order
type OrderStatus string

const (
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderLineItem is one purchased line, derived 1:1 from a cart line
type OrderLineItem struct {
	ID        int             `json:"id,omitempty" db:"id"`
	OrderID   int             `json:"order_id,omitempty" db:"order_id"`
	ProductID int             `json:"product_id" db:"product_id"`
	Name      string          `json:"name" db:"name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// OrderRequest is an immutable snapshot of a cart plus payment details,
// handed to the order service at submission time
type OrderRequest struct {
	UserID        string          `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	CashTendered  decimal.Decimal `json:"cash_tendered"`
	Change        decimal.Decimal `json:"change"`
	Items         []OrderLineItem `json:"items"`
}

// OrderResult carries the service-assigned order number back for receipts
type OrderResult struct {
	OrderID     int             `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Change      decimal.Decimal `json:"change"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Order is the persisted record, as read back for sales reporting
type Order struct {
	ID            int             `json:"id" db:"id"`
	Number        string          `json:"order_number" db:"number"`
	UserID        string          `json:"user_id" db:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" db:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status" db:"payment_status"`
	CashTendered  decimal.Decimal `json:"cash_tendered" db:"cash_tendered"`
	Change        decimal.Decimal `json:"change" db:"change"`
	Status        OrderStatus     `json:"status" db:"status"`
	Items         []OrderLineItem `json:"items"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// OrderCreatedMessage is published to RabbitMQ after an order is persisted
type OrderCreatedMessage struct {
	OrderNumber string          `json:"order_number"`
	QueueNumber string          `json:"queue_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks an order request before it is persisted
func (r *OrderRequest) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}
	for i, item := range r.Items {
		if item.ProductID <= 0 {
			return fmt.Errorf("items[%d]: product_id is required", i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("items[%d]: quantity must be at least 1", i)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("items[%d]: unit_price must not be negative", i)
		}
		if !item.Subtotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))) {
			return fmt.Errorf("items[%d]: subtotal does not match unit_price * quantity", i)
		}
	}
	sum := decimal.Zero
	for _, item := range r.Items {
		sum = sum.Add(item.Subtotal)
	}
	if !sum.Equal(r.TotalAmount) {
		return fmt.Errorf("total_amount does not match sum of item subtotals")
	}
	if r.CashTendered.IsNegative() {
		return fmt.Errorf("cash_tendered must not be negative")
	}
	if !r.Change.Equal(r.CashTendered.Sub(r.TotalAmount)) {
		return fmt.Errorf("change does not match cash_tendered - total_amount")
	}
	return nil
}

// GenerateOrderNumber formats an order number as ORD_YYYYMMDD_NNN
func GenerateOrderNumber(date time.Time, sequence int) string {
	return fmt.Sprintf("ORD_%s_%03d", date.Format("20060102"), sequence)
}

// QueueNumberFromOrder derives the MMDD-NNN queue ticket number from an
// ORD_YYYYMMDD_NNN order number. Returns the order number unchanged if it
// does not have the expected shape.
func QueueNumberFromOrder(orderNumber string) string {
	if len(orderNumber) != len("ORD_20060102_000") {
		return orderNumber
	}
	return orderNumber[8:12] + "-" + orderNumber[13:]
}
