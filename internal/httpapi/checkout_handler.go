package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/NidinaKoirala/artisan-market/internal/checkout"
	"github.com/NidinaKoirala/artisan-market/internal/domain"
	"github.com/NidinaKoirala/artisan-market/internal/session"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	timeout      time.Duration
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator, timeout: timeout}
}

type quoteRequestDTO struct {
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Items         []domain.LineItem    `json:"items,omitempty"`
}

// Quote prices the cart (or a buy-now selection) under a payment method.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req quoteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !req.PaymentMethod.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", "payment_method must be COD or CARD")
		return
	}

	if len(req.Items) > 0 {
		respondJSON(w, http.StatusOK, h.orchestrator.Quote(req.Items, req.PaymentMethod))
		return
	}

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	quote, err := h.orchestrator.QuoteCart(ctx, userID, req.PaymentMethod)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

type placeOrderRequestDTO struct {
	Items          []domain.LineItem    `json:"orderItems,omitempty"`
	PaymentMethod  domain.PaymentMethod `json:"paymentMethod"`
	IdempotencyKey string               `json:"idempotency_key"`
	CardToken      string               `json:"card_token,omitempty"`
}

type placeOrderResponseDTO struct {
	Outcome    checkout.Outcome `json:"outcome"`
	CheckoutID string           `json:"checkout_id,omitempty"`
	Order      *domain.Order    `json:"order,omitempty"`
	Quote      domain.Quote     `json:"quote"`
	Error      string           `json:"error,omitempty"`
}

// PlaceOrder is the "Confirm Order" endpoint. Anonymous visitors get a
// login-required response and a saved snapshot instead of an order.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req placeOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.orchestrator.Submit(ctx, checkout.SubmitRequest{
		UserID:         getUserIDFromContext(r.Context()),
		VisitorID:      visitorID(r),
		Items:          req.Items,
		Method:         req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
		CardToken:      req.CardToken,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := placeOrderResponseDTO{
		Outcome: result.Outcome,
		Quote:   result.Quote,
		Order:   result.Order,
		Error:   result.FailureReason,
	}
	if result.CheckoutID != uuid.Nil {
		resp.CheckoutID = result.CheckoutID.String()
	}

	switch result.Outcome {
	case checkout.OutcomePlaced:
		respondJSON(w, http.StatusCreated, resp)
	case checkout.OutcomeLoginRequired:
		respondJSON(w, http.StatusUnauthorized, resp)
	default:
		respondJSON(w, http.StatusUnprocessableEntity, resp)
	}
}

type paymentIntentRequestDTO struct {
	Amount int64 `json:"amount"`
}

// CreatePaymentIntent proxies the gateway's client-secret issuance.
func (h *CheckoutHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req paymentIntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Amount <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_amount", "amount must be positive")
		return
	}

	secret, err := h.orchestrator.CreatePaymentIntent(ctx, req.Amount)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}

// Resume hands back the snapshot saved before a login redirect. The
// snapshot is consumed: a second call returns 404.
func (h *CheckoutHandler) Resume(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	snap, err := h.orchestrator.Resume(ctx, visitorID(r))
	if err != nil {
		if errors.Is(err, session.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "no saved checkout")
			return
		}
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// ListOrders returns the caller's placed orders, newest first.
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orchestrator.Orders(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}
