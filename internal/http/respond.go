package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/swordshop/internal/cart"
	"github.com/fjod/swordshop/internal/catalog"
	"github.com/fjod/swordshop/internal/checkout"
	"github.com/fjod/swordshop/internal/logger"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string                `json:"error"`
	Code   string                `json:"code"`
	Step   checkout.Step         `json:"step"`
	Fields []checkout.FieldError `json:"fields"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleDomainError maps cart, catalog and checkout errors to HTTP responses.
func handleDomainError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Code:   "validation_failed",
			Step:   verr.Step,
			Fields: verr.Fields,
		})
	case errors.Is(err, cart.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", err.Error())
	case errors.Is(err, cart.ErrInvalidProduct):
		respondError(w, http.StatusUnprocessableEntity, "invalid_product", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrAlreadyProcessing):
		respondError(w, http.StatusConflict, "already_processing", err.Error())
	case errors.Is(err, checkout.ErrSessionCompleted):
		respondError(w, http.StatusConflict, "session_completed", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, checkout.ErrWrongStep):
		respondError(w, http.StatusConflict, "wrong_step", err.Error())
	case errors.Is(err, checkout.ErrSessionNotFound), errors.Is(err, checkout.ErrSessionClosed):
		respondError(w, http.StatusNotFound, "session_not_found", "checkout session not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, checkout.ErrProcessingFailed):
		logger.FromCtx(r.Context(), log).Warn("order processing failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "processing_failed", err.Error())
	default:
		logger.FromCtx(r.Context(), log).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
