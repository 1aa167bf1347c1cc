package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/leafmarket/internal/adapter/api/middleware"
	"github.com/user/leafmarket/internal/adapter/metrics"
	"github.com/user/leafmarket/internal/domain"
	"github.com/user/leafmarket/internal/usecase"
)

// ShopHandler handles the customer-facing browse and checkout endpoints.
type ShopHandler struct {
	catalog  usecase.CatalogUseCase
	orders   usecase.OrderUseCase
	checkout usecase.CheckoutUseCase
	logger   *slog.Logger
	metrics  *metrics.StoreMetrics
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(
	catalog usecase.CatalogUseCase,
	orders usecase.OrderUseCase,
	checkout usecase.CheckoutUseCase,
	logger *slog.Logger,
	m *metrics.StoreMetrics,
) *ShopHandler {
	return &ShopHandler{
		catalog:  catalog,
		orders:   orders,
		checkout: checkout,
		logger:   logger,
		metrics:  m,
	}
}

// ListProducts handles GET /api/shop/products?category=&q=. Only active
// products are visible here; the category predicate runs remotely, the
// search term is applied to the fetched list.
func (h *ShopHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	searchTerm := r.URL.Query().Get("q")

	var (
		products []domain.Product
		err      error
	)
	if category == "" || category == usecase.AllCategories {
		products, err = h.catalog.ListActive(r.Context())
	} else {
		products, err = h.catalog.ListByCategory(r.Context(), category)
	}
	if err != nil {
		respondWithError(w, catalogErrorStatus(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, usecase.FilterProducts(products, usecase.AllCategories, searchTerm))
}

// ListCategories handles GET /api/shop/categories.
func (h *ShopHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, domain.Categories)
}

// ListOrders handles GET /api/shop/orders, scoped to the session's
// customer.
func (h *ShopHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orders, err := h.orders.ListByCustomer(r.Context(), session.Email)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

type checkoutRequest struct {
	Items []domain.CartItem `json:"items"`
}

// Checkout handles POST /api/shop/checkout. The cart lives with the
// client; the server only computes totals and builds the external
// checkout link. No order is created.
func (h *ShopHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkout.Checkout(req.Items)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.CheckoutLinksTotal.Inc()
	}
	respondWithJSON(w, http.StatusOK, result)
}
