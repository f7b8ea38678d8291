package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/swordshop/internal/cart"
	"github.com/fjod/swordshop/internal/catalog"
	"github.com/fjod/swordshop/internal/domain"
	"github.com/fjod/swordshop/internal/pricing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxQuantityPerRequest = 99

// CartStore is the cart surface the API drives.
type CartStore interface {
	Snapshot() cart.Snapshot
	AddItem(ctx context.Context, product *domain.Product, quantity int) (cart.Snapshot, error)
	SetQuantity(ctx context.Context, productID int64, quantity int) cart.Snapshot
	RemoveItem(ctx context.Context, productID int64) cart.Snapshot
	Clear(ctx context.Context) cart.Snapshot
	Degraded() bool
}

type CartHandler struct {
	cart    CartStore
	catalog catalog.Provider
	log     *zap.Logger
	timeout time.Duration
}

func NewCartHandler(c CartStore, provider catalog.Provider, log *zap.Logger, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cart:    c,
		catalog: provider,
		log:     log,
		timeout: timeout,
	}
}

type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartResponse carries the cart plus a preview of the totals at the default
// shipping and payment choices.
type CartResponse struct {
	cart.Snapshot
	SubtotalFormatted string              `json:"subtotal_formatted"`
	Preview           domain.OrderSummary `json:"preview"`
	// Advance is the 50% of the subtotal paid up front when checking out with an advance.
	Advance          int64  `json:"advance"`
	AdvanceFormatted string `json:"advance_formatted"`
	Degraded         bool   `json:"storage_degraded"`
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int, snap cart.Snapshot) {
	defaults := domain.NewDraft()
	advance := pricing.Advance(snap.Subtotal)
	if snap.Items == nil {
		snap.Items = []domain.LineItem{}
	}
	respondJSON(w, status, CartResponse{
		Snapshot:          snap,
		SubtotalFormatted: pricing.FormatPKR(snap.Subtotal),
		Preview:           pricing.ComputeSummary(snap.Items, defaults.ShippingMethod, defaults.PaymentMethod),
		Advance:           advance,
		AdvanceFormatted:  pricing.FormatPKR(advance),
		Degraded:          h.cart.Degraded(),
	})
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, http.StatusOK, h.cart.Snapshot())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 || req.Quantity > maxQuantityPerRequest {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}

	snap, err := h.cart.AddItem(ctx, product, req.Quantity)
	if err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	h.respondCart(w, http.StatusCreated, snap)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity > maxQuantityPerRequest {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}
	// Zero or less removes the line.
	h.respondCart(w, http.StatusOK, h.cart.SetQuantity(r.Context(), productID, req.Quantity))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}
	h.respondCart(w, http.StatusOK, h.cart.RemoveItem(r.Context(), productID))
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, http.StatusOK, h.cart.Clear(r.Context()))
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return 0, false
	}
	return id, true
}
