package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"pos-system/internal/cart"
	"pos-system/internal/checkout"
	"pos-system/internal/logger"
	"pos-system/internal/models"
	"pos-system/internal/receipt"
	"pos-system/internal/services/catalog"
)

// Pinger reports backend health
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the cart, checkout, sales, and receipt endpoints
type Handler struct {
	service   *Service
	catalog   *catalog.Service
	carts     *cart.Registry
	submitter *checkout.Submitter
	renderer  *receipt.Renderer
	health    Pinger
	logger    *logger.Logger
}

// NewHandler creates the order HTTP handler
func NewHandler(service *Service, catalogSvc *catalog.Service, carts *cart.Registry,
	submitter *checkout.Submitter, renderer *receipt.Renderer, health Pinger, log *logger.Logger) *Handler {
	return &Handler{
		service:   service,
		catalog:   catalogSvc,
		carts:     carts,
		submitter: submitter,
		renderer:  renderer,
		health:    health,
		logger:    log,
	}
}

// RegisterRoutes mounts the order routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items", h.UpdateItem)
			r.Delete("/items", h.RemoveItem)
		})
		r.Post("/checkout", h.Checkout)
		r.Get("/sales/today", h.TodaySales)
		r.Get("/orders/{number}/receipt", h.OrderReceipt)
	})
}

type cartItemRequest struct {
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note,omitempty"`
}

type cartResponse struct {
	Lines []models.CartLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
	Empty bool              `json:"empty"`
	Event cart.EventKind    `json:"event,omitempty"`
}

type checkoutRequest struct {
	CashTendered decimal.Decimal `json:"cash_tendered"`
}

type checkoutResponse struct {
	OrderNumber  string          `json:"order_number"`
	QueueNumber  string          `json:"queue_number"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CashTendered decimal.Decimal `json:"cash_tendered"`
	Change       decimal.Decimal `json:"change"`
	CreatedAt    time.Time       `json:"created_at"`
}

// GetCart handles GET /api/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	deviceID, ok := h.deviceID(w, r, requestID)
	if !ok {
		return
	}

	mgr := h.carts.Manager(r.Context(), deviceID)
	h.writeCart(w, mgr, cart.Event{})
}

// AddItem handles POST /api/cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	deviceID, ok := h.deviceID(w, r, requestID)
	if !ok {
		return
	}

	var req cartItemRequest
	if !h.decodeJSON(w, r, &req, requestID) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Product not found", requestID)
			return
		}
		h.logger.Error("cart_add_failed", "Failed to load product", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	mgr := h.carts.Manager(r.Context(), deviceID)
	event, err := mgr.Add(r.Context(), *product, req.Quantity, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity),
			errors.Is(err, cart.ErrProductUnavailable),
			errors.Is(err, cart.ErrNoteRequired):
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		default:
			h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		}
		return
	}

	h.writeCart(w, mgr, event)
}

// UpdateItem handles PUT /api/cart/items. Quantity is an absolute set; zero
// or below removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	deviceID, ok := h.deviceID(w, r, requestID)
	if !ok {
		return
	}

	var req cartItemRequest
	if !h.decodeJSON(w, r, &req, requestID) {
		return
	}

	mgr := h.carts.Manager(r.Context(), deviceID)
	event := mgr.SetQuantity(r.Context(), req.ProductID, req.Quantity, req.Note)
	h.writeCart(w, mgr, event)
}

// RemoveItem handles DELETE /api/cart/items
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	deviceID, ok := h.deviceID(w, r, requestID)
	if !ok {
		return
	}

	var req cartItemRequest
	if !h.decodeJSON(w, r, &req, requestID) {
		return
	}

	mgr := h.carts.Manager(r.Context(), deviceID)
	event := mgr.Remove(r.Context(), req.ProductID, req.Note)
	h.writeCart(w, mgr, event)
}

// ClearCart handles DELETE /api/cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	deviceID, ok := h.deviceID(w, r, requestID)
	if !ok {
		return
	}

	mgr := h.carts.Manager(r.Context(), deviceID)
	event := mgr.Clear(r.Context())
	h.writeCart(w, mgr, event)
}

// Checkout handles POST /api/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	deviceID, ok := h.deviceID(w, r, requestID)
	if !ok {
		return
	}

	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeErrorResponse(w, http.StatusUnauthorized, "Authentication required", requestID)
		return
	}

	var req checkoutRequest
	if !h.decodeJSON(w, r, &req, requestID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	mgr := h.carts.Manager(ctx, deviceID)
	result, err := h.submitter.SubmitCashOrder(ctx, mgr, userID, req.CashTendered)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart),
			errors.Is(err, checkout.ErrInsufficientPayment),
			errors.Is(err, checkout.ErrInvalidAmount):
			h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		case errors.Is(err, checkout.ErrNotAuthenticated):
			h.writeErrorResponse(w, http.StatusUnauthorized, "Authentication required", requestID)
		default:
			// Retryable: the cart is preserved, the client may submit again
			h.logger.Error("checkout_failed", "Order submission failed", requestID, err, map[string]interface{}{
				"device_id": deviceID,
			})
			h.writeErrorResponse(w, http.StatusBadGateway, "Order submission failed, please retry", requestID)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderNumber:  result.OrderNumber,
		QueueNumber:  models.QueueNumberFromOrder(result.OrderNumber),
		TotalAmount:  result.TotalAmount,
		CashTendered: req.CashTendered,
		Change:       result.Change,
		CreatedAt:    result.CreatedAt,
	})
}

// TodaySales handles GET /api/sales/today
func (h *Handler) TodaySales(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Header.Get("X-User-ID") == "" {
		h.writeErrorResponse(w, http.StatusUnauthorized, "Authentication required", requestID)
		return
	}

	report, err := h.service.TodaySales(r.Context())
	if err != nil {
		h.logger.Error("sales_query_failed", "Failed to load today's sales", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// OrderReceipt handles GET /api/orders/{number}/receipt
func (h *Handler) OrderReceipt(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	number := chi.URLParam(r, "number")
	order, err := h.service.GetOrder(r.Context(), number)
	if err != nil {
		h.logger.Error("receipt_lookup_failed", "Failed to load order for receipt", requestID, err, map[string]interface{}{
			"order_number": number,
		})
		h.writeErrorResponse(w, http.StatusNotFound, "Order not found", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, h.renderer.RenderReceipt(order))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.health.Ping(ctx) == nil

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "pos-service",
		"healthy":   healthy,
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		response["status"] = "unhealthy"
	}

	h.writeJSON(w, status, response)
}

func (h *Handler) deviceID(w http.ResponseWriter, r *http.Request, requestID string) (string, bool) {
	deviceID := r.Header.Get("X-Device-ID")
	if deviceID == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "X-Device-ID header is required", requestID)
		return "", false
	}
	return deviceID, true
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, requestID string) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return false
	}
	return true
}

func (h *Handler) writeCart(w http.ResponseWriter, mgr *cart.Manager, event cart.Event) {
	snapshot := mgr.Snapshot()
	h.writeJSON(w, http.StatusOK, cartResponse{
		Lines: snapshot.Lines,
		Total: snapshot.Total(),
		Empty: snapshot.IsEmpty(),
		Event: event.Kind,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", "", err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}
