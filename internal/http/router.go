package http

import (
	"net/http"
	"time"

	"github.com/fjod/swordshop/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimiter    *RateLimiter
}

// NewRouter mounts the storefront API. A nil RateLimiter disables limiting.
func NewRouter(cfg RouterConfig, products catalog.Provider, c CartStore, sessions SessionManager, log *zap.Logger) http.Handler {
	productHandler := NewProductHandler(products, log, cfg.RequestTimeout)
	cartHandler := NewCartHandler(c, products, log, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(sessions, log)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestContext)
	r.Use(RequestLogger(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if c.Degraded() {
			status = "degraded"
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": status})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/shipping-options", ShippingOptions)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.Begin)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", checkoutHandler.Get)
				r.Delete("/", checkoutHandler.Discard)
				r.Put("/shipping", checkoutHandler.UpdateShipping)
				r.Put("/payment", checkoutHandler.UpdatePayment)
				r.Put("/review", checkoutHandler.UpdateReview)
				r.Post("/advance", checkoutHandler.Advance)
				r.Post("/back", checkoutHandler.Back)
				r.Post("/submit", checkoutHandler.Submit)
			})
		})
	})

	return otelhttp.NewHandler(r, "swordshop")
}
