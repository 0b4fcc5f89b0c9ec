package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pos-system/internal/logger"
	"pos-system/internal/models"
)

// Handler serves the product and category endpoints
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates the catalog HTTP handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes mounts the catalog routes on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)
		r.Post("/products", h.CreateProduct)
		r.Put("/products/{id}", h.UpdateProduct)
		r.Delete("/products/{id}", h.DeleteProduct)

		r.Get("/categories", h.ListCategories)
		r.Post("/categories", h.CreateCategory)
		r.Delete("/categories/{id}", h.DeleteCategory)
	})
}

// ListProducts handles GET /api/products. Staff (identified by X-User-ID)
// see the full catalog; customers see only available products. An optional
// category query filters the menu.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if categoryParam := r.URL.Query().Get("category"); categoryParam != "" {
		categoryID, err := strconv.Atoi(categoryParam)
		if err != nil {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid category id", requestID)
			return
		}
		products, err := h.service.MenuByCategory(r.Context(), categoryID)
		if err != nil {
			h.logger.Error("catalog_query_failed", "Failed to list products by category", requestID, err, nil)
			h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
			return
		}
		h.writeJSON(w, http.StatusOK, products)
		return
	}

	var products []models.Product
	var err error
	if r.Header.Get("X-User-ID") != "" {
		products, err = h.service.AllProducts(r.Context())
	} else {
		products, err = h.service.Menu(r.Context())
	}
	if err != nil {
		h.logger.Error("catalog_query_failed", "Failed to list products", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			h.writeErrorResponse(w, http.StatusNotFound, "Product not found", requestID)
			return
		}
		h.logger.Error("catalog_query_failed", "Failed to get product", requestID, err, map[string]interface{}{
			"product_id": id,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/products (admin only)
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if !h.requireUser(w, r, requestID) {
		return
	}

	var product models.Product
	if !h.decodeJSON(w, r, &product, requestID) {
		return
	}

	if err := h.service.CreateProduct(r.Context(), &product); err != nil {
		h.logger.Error("product_create_failed", "Failed to create product", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	h.writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/products/{id} (admin only)
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if !h.requireUser(w, r, requestID) {
		return
	}

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	var product models.Product
	if !h.decodeJSON(w, r, &product, requestID) {
		return
	}
	product.ID = id

	if err := h.service.UpdateProduct(r.Context(), &product); err != nil {
		h.logger.Error("product_update_failed", "Failed to update product", requestID, err, map[string]interface{}{
			"product_id": id,
		})
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/products/{id} (admin only)
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if !h.requireUser(w, r, requestID) {
		return
	}

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.logger.Error("product_delete_failed", "Failed to delete product", requestID, err, map[string]interface{}{
			"product_id": id,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.Error("catalog_query_failed", "Failed to list categories", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories (admin only)
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if !h.requireUser(w, r, requestID) {
		return
	}

	var category models.Category
	if !h.decodeJSON(w, r, &category, requestID) {
		return
	}

	if err := h.service.CreateCategory(r.Context(), &category); err != nil {
		h.logger.Error("category_create_failed", "Failed to create category", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
		return
	}

	h.writeJSON(w, http.StatusCreated, category)
}

// DeleteCategory handles DELETE /api/categories/{id} (admin only)
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if !h.requireUser(w, r, requestID) {
		return
	}

	id, ok := h.pathID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.logger.Error("category_delete_failed", "Failed to delete category", requestID, err, map[string]interface{}{
			"category_id": id,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request, requestID string) bool {
	if r.Header.Get("X-User-ID") == "" {
		h.writeErrorResponse(w, http.StatusUnauthorized, "Authentication required", requestID)
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, requestID string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid id", requestID)
		return 0, false
	}
	return id, true
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
