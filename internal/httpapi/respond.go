package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NidinaKoirala/artisan-market/internal/cart"
	"github.com/NidinaKoirala/artisan-market/internal/catalog"
	"github.com/NidinaKoirala/artisan-market/internal/checkout"
	"github.com/NidinaKoirala/artisan-market/internal/payment"
	"github.com/NidinaKoirala/artisan-market/internal/user"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps domain errors onto HTTP statuses. Messages are
// passed through so the client sees the backend's wording verbatim.
func handleServiceError(w http.ResponseWriter, err error) {
	var shortfall *catalog.ShortfallError

	switch {
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, checkout.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingIdempotencyKey),
		errors.Is(err, checkout.ErrUnsupportedMethod):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, checkout.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, "submit_in_flight", err.Error())
	case errors.Is(err, user.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email_taken", err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, payment.ErrGatewayUnavailable):
		respondError(w, http.StatusServiceUnavailable, "gateway_unavailable", err.Error())
	case errors.As(err, &shortfall):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
