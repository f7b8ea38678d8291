package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/fjod/swordshop/internal/checkout"
	"github.com/fjod/swordshop/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SessionManager interface {
	Begin(ctx context.Context) (*checkout.Session, error)
	Get(id string) (*checkout.Session, error)
	Discard(id string) error
}

type CheckoutHandler struct {
	sessions SessionManager
	log      *zap.Logger
}

func NewCheckoutHandler(sessions SessionManager, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		log:      log,
	}
}

type ShippingRequest struct {
	Contact        domain.Contact        `json:"contact"`
	Address        domain.Address        `json:"address"`
	ShippingMethod domain.ShippingMethod `json:"shipping_method"`
}

type PaymentRequest struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Card          *domain.CardDetails  `json:"card,omitempty"`
}

type ReviewRequest struct {
	Notes    string `json:"notes"`
	Consent  bool   `json:"consent"`
	SaveInfo bool   `json:"save_info"`
}

type BackRequest struct {
	Step string `json:"step"`
}

type SubmitResponse struct {
	Order   *domain.CompletedOrder `json:"order"`
	Session checkout.View          `json:"session"`
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, r, h.log, err)
		return nil, false
	}
	return s, true
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Begin(r.Context())
	if err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.View())
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

func (h *CheckoutHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ShippingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.UpdateShipping(req.Contact, req.Address, req.ShippingMethod); err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

func (h *CheckoutHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.UpdatePayment(req.PaymentMethod, req.Card); err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

func (h *CheckoutHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.UpdateReview(req.Notes, req.Consent, req.SaveInfo); err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

func (h *CheckoutHandler) Advance(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if _, err := s.Advance(); err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req BackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	step, valid := checkout.ParseStep(strings.ToUpper(strings.TrimSpace(req.Step)))
	if !valid {
		respondError(w, http.StatusBadRequest, "invalid_step", "unknown checkout step")
		return
	}
	if err := s.GoTo(step); err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, s.View())
}

// Submit blocks until the order is processed or the request is cancelled.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	order, err := s.Submit(r.Context())
	if err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, SubmitResponse{Order: order, Session: s.View()})
}

func (h *CheckoutHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Discard(chi.URLParam(r, "id")); err != nil {
		handleDomainError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
