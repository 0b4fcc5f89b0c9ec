package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pos-system/internal/logger"
	"pos-system/internal/models"
)

// Repo is the persistence surface the service needs
type Repo interface {
	CreateOrder(ctx context.Context, req *models.OrderRequest, now time.Time) (*models.OrderResult, error)
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	GetTodayOrders(ctx context.Context, since time.Time) ([]models.Order, error)
}

// EventPublisher publishes order lifecycle events
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, msg interface{}) error
	PublishNotification(ctx context.Context, msg interface{}) error
}

// SalesReport summarizes one day of completed orders
type SalesReport struct {
	Orders  []models.Order  `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
}

// Service is the system of record for orders
type Service struct {
	repo      Repo
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewService creates the order service
func NewService(repo Repo, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder validates and persists an order atomically, then publishes the
// order-created event to the orders topic and fans it out on the
// notifications exchange. Both publishes are best-effort; a failure does not
// undo the order.
func (s *Service) CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.OrderResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid order request: %w", err)
	}

	result, err := s.repo.CreateOrder(ctx, req, s.now())
	if err != nil {
		return nil, err
	}

	msg := &models.OrderCreatedMessage{
		OrderNumber: result.OrderNumber,
		QueueNumber: models.QueueNumberFromOrder(result.OrderNumber),
		TotalAmount: req.TotalAmount,
		ItemCount:   len(req.Items),
		CreatedAt:   result.CreatedAt,
	}
	if err := s.publisher.PublishOrderCreated(ctx, msg); err != nil {
		s.logger.Error("order_event_publish_failed", "Order persisted but event not published", "", err, map[string]interface{}{
			"order_number": result.OrderNumber,
		})
	}
	if err := s.publisher.PublishNotification(ctx, msg); err != nil {
		s.logger.Error("order_notification_publish_failed", "Order persisted but notification not fanned out", "", err, map[string]interface{}{
			"order_number": result.OrderNumber,
		})
	}

	return result, nil
}

// GetOrder fetches one order by its number for receipt re-printing
func (s *Service) GetOrder(ctx context.Context, number string) (*models.Order, error) {
	return s.repo.GetOrderByNumber(ctx, number)
}

// TodaySales returns today's completed orders and their revenue total
func (s *Service) TodaySales(ctx context.Context) (*SalesReport, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	orders, err := s.repo.GetTodayOrders(ctx, midnight)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
	}

	return &SalesReport{
		Orders:  orders,
		Revenue: revenue,
		Count:   len(orders),
	}, nil
}
