package order

import (
	"context"
	"fmt"
	"time"

	"pos-system/internal/database"
	"pos-system/internal/models"
)

// Repository persists orders in PostgreSQL
type Repository struct {
	db *database.DB
}

// NewRepository creates an order repository on the given database
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts the order header and every line item in one
// transaction. Either the whole order persists or none of it does. The order
// number is assigned inside the transaction from the daily sequence.
func (r *Repository) CreateOrder(ctx context.Context, req *models.OrderRequest, now time.Time) (*models.OrderResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Next sequence number for today, scanned from existing order numbers
	prefix := fmt.Sprintf("ORD_%s_%%", now.Format("20060102"))
	var sequence int
	if err := tx.QueryRow(ctx, database.GetNextOrderNumberSQL, prefix).Scan(&sequence); err != nil {
		return nil, fmt.Errorf("failed to get next order number: %w", err)
	}

	number := models.GenerateOrderNumber(now, sequence)

	var orderID int
	var createdAt time.Time
	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		number, req.UserID, req.TotalAmount, req.PaymentMethod, req.PaymentStatus,
		req.CashTendered, req.Change, models.StatusCompleted,
	).Scan(&orderID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range req.Items {
		_, err := tx.Exec(ctx, database.InsertOrderItemSQL,
			orderID, item.ProductID, item.Name, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &models.OrderResult{
		OrderID:     orderID,
		OrderNumber: number,
		TotalAmount: req.TotalAmount,
		Change:      req.Change,
		CreatedAt:   createdAt,
	}, nil
}

// GetOrderByNumber fetches one order with its line items
func (r *Repository) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	err := r.db.QueryRow(ctx, database.GetOrderByNumberSQL, number).Scan(
		&o.ID, &o.Number, &o.UserID, &o.TotalAmount, &o.PaymentMethod, &o.PaymentStatus,
		&o.CashTendered, &o.Change, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", number, err)
	}

	items, err := r.getOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// GetTodayOrders returns today's completed orders, newest first
func (r *Repository) GetTodayOrders(ctx context.Context, since time.Time) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, database.GetTodayOrdersSQL, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query today's orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.Number, &o.UserID, &o.TotalAmount, &o.PaymentMethod, &o.PaymentStatus,
			&o.CashTendered, &o.Change, &o.Status, &o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.getOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *Repository) getOrderItems(ctx context.Context, orderID int) ([]models.OrderLineItem, error) {
	rows, err := r.db.Query(ctx, database.GetOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderLineItem
	for rows.Next() {
		var item models.OrderLineItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name,
			&item.Quantity, &item.UnitPrice, &item.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
