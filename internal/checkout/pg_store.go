package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

type pgStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) GetSessionByIdempotencyKey(ctx context.Context, key string) (*Session, error) {
	query := `
		SELECT id, user_id, idempotency_key, status, payment_method, amount_minor,
		       currency, cart_snapshot, order_id, payment_id, failure_reason,
		       created_at, updated_at
		FROM checkout_sessions
		WHERE idempotency_key = $1
	`

	sess, err := scanSession(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdempotencyKeyNotFound
		}
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}
	return sess, nil
}

func (s *pgStore) CreateSession(ctx context.Context, sess *Session) error {
	query := `
		INSERT INTO checkout_sessions
			(id, user_id, idempotency_key, status, payment_method, amount_minor,
			 currency, cart_snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`

	_, err := s.db.ExecContext(ctx, query,
		sess.ID,
		sess.UserID,
		sess.IdempotencyKey,
		sess.Status,
		sess.Method,
		sess.AmountMinor,
		sess.Currency,
		sess.CartSnapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to create checkout session: %w", err)
	}
	return nil
}

func (s *pgStore) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status domain.CheckoutStatus, reason string) error {
	query := `
		UPDATE checkout_sessions
		SET status = $2, failure_reason = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id, status, reason)
	if err != nil {
		return fmt.Errorf("failed to update checkout session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *pgStore) PlaceOrder(ctx context.Context, sessionID uuid.UUID, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_id":       order.ID,
		"checkout_id":    sessionID,
		"user_id":        order.UserID,
		"items":          order.Items,
		"payment_method": order.PaymentMethod,
		"amount_minor":   order.AmountMinorUnits,
		"currency":       order.Currency,
		"placed_at":      time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
			(id, checkout_id, user_id, items, payment_method, amount_minor,
			 currency, payment_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`,
		order.ID,
		sessionID,
		order.UserID,
		itemsJSON,
		order.PaymentMethod,
		order.AmountMinorUnits,
		order.Currency,
		order.PaymentID,
		order.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkout_outbox (event_type, payload, processed, created_at)
		VALUES ('OrderPlaced', $1, FALSE, NOW())`,
		payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE checkout_sessions
		SET status = $2, order_id = $3, payment_id = $4, updated_at = NOW()
		WHERE id = $1`,
		sessionID,
		domain.CheckoutStatusSucceeded,
		order.ID,
		order.PaymentID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete checkout session: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}

	return tx.Commit()
}

func (s *pgStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, checkout_id, user_id, items, payment_method, amount_minor,
		       currency, payment_id, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

func (s *pgStore) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `
		SELECT id, checkout_id, user_id, items, payment_method, amount_minor,
		       currency, payment_id, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

func (s *pgStore) GetUnprocessedEvents(ctx context.Context, limit int) ([]OutboxEvent, error) {
	query := `
		SELECT id, event_type, payload, created_at
		FROM checkout_outbox
		WHERE processed = FALSE
		ORDER BY id
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (s *pgStore) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE checkout_outbox SET processed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event: %w", err)
	}
	return nil
}

// GetStuckSessions returns sessions left SUBMITTING longer than the submit
// lock allows, which means the process died mid-submit.
func (s *pgStore) GetStuckSessions(ctx context.Context) ([]Session, error) {
	query := `
		SELECT id, user_id, idempotency_key, status, payment_method, amount_minor,
		       currency, cart_snapshot, order_id, payment_id, failure_reason,
		       created_at, updated_at
		FROM checkout_sessions
		WHERE status = $1 AND updated_at < NOW() - INTERVAL '1 minute'
	`

	rows, err := s.db.QueryContext(ctx, query, domain.CheckoutStatusSubmitting)
	if err != nil {
		return nil, fmt.Errorf("failed to query stuck sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var orderID sql.NullString
	err := row.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.IdempotencyKey,
		&sess.Status,
		&sess.Method,
		&sess.AmountMinor,
		&sess.Currency,
		&sess.CartSnapshot,
		&orderID,
		&sess.PaymentID,
		&sess.FailureReason,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if orderID.Valid {
		id, err := uuid.Parse(orderID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid order id on session: %w", err)
		}
		sess.OrderID = &id
	}
	return &sess, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON []byte
	err := row.Scan(
		&order.ID,
		&order.CheckoutID,
		&order.UserID,
		&itemsJSON,
		&order.PaymentMethod,
		&order.AmountMinorUnits,
		&order.Currency,
		&order.PaymentID,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	return &order, nil
}
