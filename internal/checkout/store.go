package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

// Session is one checkout attempt, keyed by the caller's idempotency key.
// A duplicate submit with the same key returns the stored outcome instead
// of placing a second order.
type Session struct {
	ID             uuid.UUID
	UserID         string
	IdempotencyKey string
	Status         domain.CheckoutStatus
	Method         domain.PaymentMethod
	AmountMinor    int64
	Currency       string
	CartSnapshot   json.RawMessage
	OrderID        *uuid.UUID
	PaymentID      string
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OutboxEvent is a placed-order event awaiting publication.
type OutboxEvent struct {
	ID        int64
	EventType string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Store persists checkout sessions, placed orders, and their outbox rows.
type Store interface {
	GetSessionByIdempotencyKey(ctx context.Context, key string) (*Session, error)
	CreateSession(ctx context.Context, s *Session) error
	UpdateSessionStatus(ctx context.Context, id uuid.UUID, status domain.CheckoutStatus, reason string) error

	// PlaceOrder writes the order, its outbox event, and the session's
	// terminal SUCCEEDED state in a single transaction.
	PlaceOrder(ctx context.Context, sessionID uuid.UUID, order *domain.Order) error

	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)

	GetUnprocessedEvents(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	GetStuckSessions(ctx context.Context) ([]Session, error)
}
