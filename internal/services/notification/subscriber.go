package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"pos-system/internal/logger"
	"pos-system/internal/messaging"
	"pos-system/internal/models"
	"pos-system/internal/receipt"
)

// consumer is the messaging surface a subscriber needs
type consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber consumes order-created events. It observes events published by
// the order service; nothing here mutates cart or order state.
type Subscriber struct {
	consumer consumer
	renderer *receipt.Renderer
	logger   *logger.Logger
	out      io.Writer
	handle   messaging.MessageHandler
}

// NewTicketSubscriber creates a subscriber that prints a queue ticket for
// every order arriving on the receipt print queue
func NewTicketSubscriber(c consumer, renderer *receipt.Renderer, log *logger.Logger) *Subscriber {
	s := &Subscriber{
		consumer: c,
		renderer: renderer,
		logger:   log,
		out:      os.Stdout,
	}
	s.handle = s.handleOrderCreated
	return s
}

// NewAlertSubscriber creates a subscriber that logs an acknowledgment for
// every order fanned out on the notifications exchange
func NewAlertSubscriber(c consumer, log *logger.Logger) *Subscriber {
	s := &Subscriber{
		consumer: c,
		logger:   log,
		out:      os.Stdout,
	}
	s.handle = s.handleNotification
	return s
}

// Start consumes messages until the context is cancelled. Shutdown is driven
// by context cancellation from the entrypoint; the subscriber installs no
// signal handler of its own.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()

	s.logger.Info("service_started", "Subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	s.logger.Info("graceful_shutdown", "Subscriber stopped", requestID, nil)
	return s.consumer.Close()
}

// handleOrderCreated prints the queue ticket for one order-created event
func (s *Subscriber) handleOrderCreated(_ context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var msg models.OrderCreatedMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse order event", requestID, err, nil)
		return fmt.Errorf("failed to parse order event: %w", err)
	}

	// Queue ticket goes to the console printer feed
	fmt.Fprintln(s.out, s.renderer.RenderQueueTicket(msg.OrderNumber, msg.CreatedAt))

	s.logger.Info("queue_ticket_printed", "Queue ticket printed for new order", requestID, map[string]interface{}{
		"order_number": msg.OrderNumber,
		"queue_number": msg.QueueNumber,
		"total_amount": msg.TotalAmount.String(),
	})

	return nil
}

// handleNotification logs the acknowledgment for one fanned-out order event
func (s *Subscriber) handleNotification(_ context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var msg models.OrderCreatedMessage
	if err := messaging.ParseMessage(body, &msg); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	s.logger.Info("order_acknowledged",
		fmt.Sprintf("Order %s received, queue number %s", msg.OrderNumber, msg.QueueNumber),
		requestID, map[string]interface{}{
			"order_number": msg.OrderNumber,
			"queue_number": msg.QueueNumber,
			"total_amount": msg.TotalAmount.String(),
			"item_count":   msg.ItemCount,
		})

	return nil
}
