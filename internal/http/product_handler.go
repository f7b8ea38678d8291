package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/swordshop/internal/catalog"
	"github.com/fjod/swordshop/internal/domain"
	"github.com/fjod/swordshop/internal/pricing"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ProductHandler struct {
	catalog catalog.Provider
	log     *zap.Logger
	timeout time.Duration
}

func NewProductHandler(provider catalog.Provider, log *zap.Logger, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: provider,
		log:     log,
		timeout: timeout,
	}
}

type ProductResponse struct {
	*domain.Product
	PriceFormatted string `json:"price_formatted"`
	InStock        bool   `json:"in_stock"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		Product:        p,
		PriceFormatted: pricing.FormatPKR(p.Price),
		InStock:        p.InStock(),
	}
}

// List handles GET /products?price_range=&in_stock=&on_sale=&category=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	priceRange, err := catalog.ParsePriceRange(q.Get("price_range"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price_range", err.Error())
		return
	}
	filter := catalog.Filter{
		PriceRange:  priceRange,
		InStockOnly: q.Get("in_stock") == "true",
		OnSaleOnly:  q.Get("on_sale") == "true",
		Category:    q.Get("category"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}

	res := ProductsResponse{Products: make([]ProductResponse, len(products))}
	for i, p := range products {
		res.Products[i] = toProductResponse(p)
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	p, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductResponse(p))
}

type ShippingOptionResponse struct {
	domain.ShippingOption
	FeeFormatted string `json:"fee_formatted"`
}

func ShippingOptions(w http.ResponseWriter, r *http.Request) {
	options := domain.ShippingOptions()
	res := make([]ShippingOptionResponse, len(options))
	for i, o := range options {
		res[i] = ShippingOptionResponse{ShippingOption: o, FeeFormatted: pricing.FormatPKR(o.Fee)}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"shipping_options": res})
}
