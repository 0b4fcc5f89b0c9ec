package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"pos-system/internal/cart"
	"pos-system/internal/checkout"
	"pos-system/internal/config"
	"pos-system/internal/database"
	"pos-system/internal/logger"
	"pos-system/internal/messaging"
	"pos-system/internal/receipt"
	"pos-system/internal/services/catalog"
	"pos-system/internal/services/notification"
	"pos-system/internal/services/order"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (pos-service, receipt-printer, notification-subscriber)")
		port       = flag.Int("port", 3000, "HTTP port")
		configPath = flag.String("config", "config.yaml", "Path to config file")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": *port,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "pos-service":
		if err := runPOSService(ctx, cfg, log, *port); err != nil {
			log.Error("service_failed", "POS service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "receipt-printer", "notification-subscriber":
		if err := runSubscriber(ctx, cfg, log, *mode, *prefetch); err != nil {
			log.Error("service_failed", "Subscriber failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runPOSService runs the HTTP API serving catalog, cart, checkout, and sales
func runPOSService(ctx context.Context, cfg *config.Config, log *logger.Logger, port int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis_connected", "Connected to Redis", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)

	// Catalog
	catalogRepo := catalog.NewRepository(db)
	productCache := catalog.NewRedisProductCache(redisClient)
	catalogService := catalog.NewService(catalogRepo, productCache, log)
	catalogHandler := catalog.NewHandler(catalogService, log)

	// Orders and checkout
	orderRepo := order.NewRepository(db)
	orderService := order.NewService(orderRepo, publisher, log)
	submitter := checkout.NewSubmitter(orderService, log)

	// Carts
	cartStore := cart.NewRedisStore(redisClient)
	carts := cart.NewRegistry(cartStore, log)

	renderer := receipt.NewRenderer(cfg.Store.Name, cfg.Store.Branch, cfg.Store.Currency)
	orderHandler := order.NewHandler(orderService, catalogService, carts, submitter, renderer, db, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	orderHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		log.Info("service_started", fmt.Sprintf("POS service started on port %d", port), requestID, map[string]interface{}{
			"port": port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

// runSubscriber consumes order-created events. The receipt printer drains the
// receipt print queue off the orders topic; the notification subscriber
// drains the queue bound to the notifications fanout.
func runSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, mode string, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	var subscriber *notification.Subscriber
	if mode == "receipt-printer" {
		consumer := messaging.NewConsumer(conn, log, messaging.ReceiptQueue, mode, prefetch)
		renderer := receipt.NewRenderer(cfg.Store.Name, cfg.Store.Branch, cfg.Store.Currency)
		subscriber = notification.NewTicketSubscriber(consumer, renderer, log)
	} else {
		consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, mode, prefetch)
		subscriber = notification.NewAlertSubscriber(consumer, log)
	}

	return subscriber.Start(ctx)
}
