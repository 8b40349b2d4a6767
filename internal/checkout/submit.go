package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
	"github.com/NidinaKoirala/artisan-market/internal/payment"
)

// SubmitRequest is one "Confirm Order" attempt. Items carries a buy-now
// selection; when nil the user's whole cart is submitted and cleared on
// success. VisitorID keys the pre-login snapshot when UserID is empty.
type SubmitRequest struct {
	UserID         string
	VisitorID      string
	Items          []domain.LineItem
	Method         domain.PaymentMethod
	IdempotencyKey string
	CardToken      string
}

// Outcome is the orchestrator's answer to a submit attempt.
type Outcome string

const (
	// OutcomePlaced means the order was persisted.
	OutcomePlaced Outcome = "PLACED"
	// OutcomeLoginRequired means no session user was present; a snapshot
	// was saved and no placement request was made.
	OutcomeLoginRequired Outcome = "LOGIN_REQUIRED"
	// OutcomeFailed means the attempt failed retryably; the session is back
	// in payment selection.
	OutcomeFailed Outcome = "FAILED"
)

type SubmitResult struct {
	Outcome       Outcome
	CheckoutID    uuid.UUID
	Order         *domain.Order
	Quote         domain.Quote
	FailureReason string
}

// Submit runs one checkout attempt end to end.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if !req.Method.Valid() {
		return nil, ErrUnsupportedMethod
	}

	items, fromCart, err := o.resolveItems(ctx, req)
	if err != nil {
		return nil, err
	}

	quote := o.Quote(items, req.Method)

	// Login gate: without a session user, save the attempt and stop before
	// any placement request is made.
	if req.UserID == "" {
		snap := domain.SnapshotFromQuote(items, quote)
		if err := o.snapshots.SaveSnapshot(ctx, req.VisitorID, snap); err != nil {
			return nil, fmt.Errorf("failed to save checkout snapshot: %w", err)
		}
		return &SubmitResult{Outcome: OutcomeLoginRequired, Quote: quote}, nil
	}

	if req.IdempotencyKey == "" {
		return nil, ErrMissingIdempotencyKey
	}

	acquired, err := o.locks.AcquireSubmitLock(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	if !acquired {
		return nil, ErrSubmitInFlight
	}
	defer func() {
		if errRelease := o.locks.ReleaseSubmitLock(context.Background(), req.UserID); errRelease != nil {
			o.logger.Warn("failed to release submit lock",
				zap.String("user_id", req.UserID), zap.Error(errRelease))
		}
	}()

	// Duplicate request? Return the stored outcome instead of re-placing.
	existing, err := o.store.GetSessionByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil && !errors.Is(err, ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		o.logger.Info("duplicate checkout request",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.String("checkout_id", existing.ID.String()),
			zap.String("status", existing.Status.String()))
		return o.resultFromSession(ctx, existing, quote)
	}

	if err := o.stock.CheckStock(ctx, items); err != nil {
		return &SubmitResult{
			Outcome:       OutcomeFailed,
			Quote:         quote,
			FailureReason: err.Error(),
		}, nil
	}

	sess, err := o.openSession(ctx, req, items, quote)
	if err != nil {
		return nil, err
	}

	if req.Method == domain.PaymentMethodCard {
		result, capErr := o.captureCard(ctx, quote, req.CardToken)
		if capErr != nil || !result.Succeeded() {
			reason := captureFailureReason(result.Reason, capErr)
			o.failBackToSelection(ctx, sess.ID, reason)
			return &SubmitResult{
				Outcome:       OutcomeFailed,
				CheckoutID:    sess.ID,
				Quote:         quote,
				FailureReason: reason,
			}, nil
		}
		sess.PaymentID = result.PaymentID
	}

	order := &domain.Order{
		ID:               uuid.New(),
		CheckoutID:       sess.ID,
		UserID:           req.UserID,
		Items:            items,
		PaymentMethod:    req.Method,
		AmountMinorUnits: quote.AmountMinorUnits,
		Currency:         quote.Currency,
		PaymentID:        sess.PaymentID,
		Status:           domain.OrderStatusConfirmed,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := o.store.PlaceOrder(ctx, sess.ID, order); err != nil {
		// surface the message verbatim; the attempt stays retryable
		o.failBackToSelection(ctx, sess.ID, err.Error())
		return &SubmitResult{
			Outcome:       OutcomeFailed,
			CheckoutID:    sess.ID,
			Quote:         quote,
			FailureReason: err.Error(),
		}, nil
	}

	o.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("checkout_id", sess.ID.String()),
		zap.String("payment_method", string(req.Method)),
		zap.Int64("amount_minor", quote.AmountMinorUnits))

	if fromCart {
		if errClear := o.carts.Clear(ctx, req.UserID); errClear != nil {
			o.logger.Warn("failed to clear cart after placement",
				zap.String("user_id", req.UserID), zap.Error(errClear))
		}
	}

	// a pre-login snapshot for this visitor is stale once an order lands
	if req.VisitorID != "" {
		if errClear := o.snapshots.ClearSnapshot(ctx, req.VisitorID); errClear != nil {
			o.logger.Warn("failed to clear checkout snapshot",
				zap.String("visitor_id", req.VisitorID), zap.Error(errClear))
		}
	}

	return &SubmitResult{
		Outcome:    OutcomePlaced,
		CheckoutID: sess.ID,
		Order:      order,
		Quote:      quote,
	}, nil
}

// resolveItems picks the buy-now selection when present, else the cart.
func (o *Orchestrator) resolveItems(ctx context.Context, req SubmitRequest) ([]domain.LineItem, bool, error) {
	if len(req.Items) > 0 {
		for _, item := range req.Items {
			if item.Quantity < 1 {
				return nil, false, fmt.Errorf("invalid quantity %d for product %d", item.Quantity, item.ProductID)
			}
		}
		return req.Items, false, nil
	}

	if req.UserID == "" {
		return nil, false, ErrEmptyCart
	}
	c, err := o.carts.Get(ctx, req.UserID)
	if err != nil {
		return nil, false, err
	}
	if c.IsEmpty() {
		return nil, false, ErrEmptyCart
	}
	return c.Items, true, nil
}

func (o *Orchestrator) openSession(ctx context.Context, req SubmitRequest, items []domain.LineItem, quote domain.Quote) (*Session, error) {
	draft := domain.OrderDraft{
		UserID:           req.UserID,
		Items:            items,
		PaymentMethod:    req.Method,
		AmountMinorUnits: quote.AmountMinorUnits,
		Currency:         quote.Currency,
	}
	snapJSON, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order draft: %w", err)
	}

	sess := &Session{
		ID:             uuid.New(),
		UserID:         req.UserID,
		IdempotencyKey: req.IdempotencyKey,
		Status:         domain.CheckoutStatusSubmitting,
		Method:         req.Method,
		AmountMinor:    quote.AmountMinorUnits,
		Currency:       quote.Currency,
		CartSnapshot:   snapJSON,
	}
	if err := o.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// captureCard runs the gateway sub-flow: secret for the exact amount, then
// capture confirmation.
func (o *Orchestrator) captureCard(ctx context.Context, quote domain.Quote, cardToken string) (payment.CaptureResult, error) {
	secret, err := o.gateway.CreateIntent(ctx, quote.AmountMinorUnits, quote.Currency)
	if err != nil {
		return payment.CaptureResult{}, err
	}
	return o.gateway.ConfirmCapture(ctx, secret, cardToken)
}

func captureFailureReason(reason string, err error) string {
	if err != nil {
		return err.Error()
	}
	if reason != "" {
		return reason
	}
	return "payment was declined"
}

// failBackToSelection returns the session to PAYMENT_SELECTION so the user
// can retry, honoring the transition table.
func (o *Orchestrator) failBackToSelection(ctx context.Context, sessionID uuid.UUID, reason string) {
	if !domain.CanTransitionTo(domain.CheckoutStatusSubmitting, domain.CheckoutStatusPaymentSelection) {
		o.logger.Error("refusing checkout transition",
			zap.String("checkout_id", sessionID.String()),
			zap.Error(ErrIllegalTransition))
		return
	}
	if err := o.store.UpdateSessionStatus(ctx, sessionID, domain.CheckoutStatusPaymentSelection, reason); err != nil {
		o.logger.Error("failed to mark checkout retryable",
			zap.String("checkout_id", sessionID.String()), zap.Error(err))
	}
}

func (o *Orchestrator) resultFromSession(ctx context.Context, sess *Session, quote domain.Quote) (*SubmitResult, error) {
	result := &SubmitResult{
		CheckoutID:    sess.ID,
		Quote:         quote,
		FailureReason: sess.FailureReason,
	}

	switch {
	case sess.Status == domain.CheckoutStatusSucceeded && sess.OrderID != nil:
		order, err := o.store.GetOrder(ctx, *sess.OrderID)
		if err != nil {
			return nil, err
		}
		result.Outcome = OutcomePlaced
		result.Order = order
	case sess.Status == domain.CheckoutStatusSubmitting:
		return nil, ErrSubmitInFlight
	default:
		result.Outcome = OutcomeFailed
		if result.FailureReason == "" {
			result.FailureReason = "previous attempt failed"
		}
	}
	return result, nil
}
