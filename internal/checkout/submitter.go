package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pos-system/internal/cart"
	"pos-system/internal/logger"
	"pos-system/internal/models"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no lines
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInsufficientPayment is returned when the tendered cash does not
	// cover the cart total. Checked before any service call.
	ErrInsufficientPayment = errors.New("insufficient payment amount")

	// ErrInvalidAmount is returned when the tendered cash is negative or has
	// more than two fractional digits
	ErrInvalidAmount = errors.New("invalid cash amount")

	// ErrNotAuthenticated is returned when no user is attached to the request
	ErrNotAuthenticated = errors.New("no authenticated user")

	// ErrSubmissionFailed wraps order service failures. The cart is left
	// untouched, so a retry with the same state is safe from the caller's
	// perspective.
	ErrSubmissionFailed = errors.New("order submission failed")
)

// OrderService is the external system of record. CreateOrder must persist
// the order header and every line item as a single unit.
type OrderService interface {
	CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.OrderResult, error)
}

// Submitter converts a cart snapshot plus tendered cash into a durable order
type Submitter struct {
	orders OrderService
	logger *logger.Logger
}

// NewSubmitter creates an order submitter delegating to the given service
func NewSubmitter(orders OrderService, log *logger.Logger) *Submitter {
	return &Submitter{
		orders: orders,
		logger: log,
	}
}

// SubmitCashOrder validates payment sufficiency against the cart total,
// creates the order through the order service, and clears the cart on
// success. On failure the cart is preserved and the error is retryable.
func (s *Submitter) SubmitCashOrder(ctx context.Context, mgr *cart.Manager, userID string, cashTendered decimal.Decimal) (*models.OrderResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if cashTendered.IsNegative() || cashTendered.Exponent() < -2 {
		return nil, ErrInvalidAmount
	}

	snapshot := mgr.Snapshot()
	if snapshot.IsEmpty() {
		return nil, ErrEmptyCart
	}

	total := snapshot.Total()
	if cashTendered.LessThan(total) {
		return nil, ErrInsufficientPayment
	}

	req := buildOrderRequest(snapshot, userID, cashTendered, total)

	result, err := s.orders.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("order_submission_failed", "Order service rejected the order", "", err, map[string]interface{}{
			"user_id":      userID,
			"total_amount": total.String(),
			"line_count":   len(req.Items),
		})
		return nil, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	mgr.Clear(ctx)

	s.logger.Info("order_submitted", "Cash order created", "", map[string]interface{}{
		"order_number": result.OrderNumber,
		"total_amount": total.String(),
		"change":       cashTendered.Sub(total).String(),
	})

	return result, nil
}

// buildOrderRequest derives an immutable order request 1:1 from the cart
func buildOrderRequest(snapshot *models.Cart, userID string, cashTendered, total decimal.Decimal) *models.OrderRequest {
	items := make([]models.OrderLineItem, 0, len(snapshot.Lines))
	for _, line := range snapshot.Lines {
		items = append(items, models.OrderLineItem{
			ProductID: line.ProductID,
			Name:      line.ProductName,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal(),
		})
	}

	return &models.OrderRequest{
		UserID:        userID,
		TotalAmount:   total,
		PaymentMethod: models.PaymentCash,
		PaymentStatus: models.PaymentPaid,
		CashTendered:  cashTendered,
		Change:        cashTendered.Sub(total),
		Items:         items,
	}
}
