package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

// OrderDraft is the transient submission payload: a snapshot of the items at
// submit time plus the amount in currency minor units. It is superseded by
// the persisted Order once placement succeeds.
type OrderDraft struct {
	UserID           string        `json:"user_id"`
	Items            []LineItem    `json:"order_items"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	AmountMinorUnits int64         `json:"amount"`
	Currency         string        `json:"currency"`
}

// Order is a placed order as persisted by the checkout store.
type Order struct {
	ID               uuid.UUID     `json:"id"`
	CheckoutID       uuid.UUID     `json:"checkout_id"`
	UserID           string        `json:"user_id"`
	Items            []LineItem    `json:"items"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	AmountMinorUnits int64         `json:"amount_minor_units"`
	Currency         string        `json:"currency"`
	PaymentID        string        `json:"payment_id,omitempty"`
	Status           OrderStatus   `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
