package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionSnapshot preserves cart contents and totals across a forced login
// redirect. It is written only when checkout is attempted without an
// authenticated session and is consumed on the first load after login.
type SessionSnapshot struct {
	Items       []LineItem      `json:"items"`
	Method      PaymentMethod   `json:"payment_method"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	SavedAt     time.Time       `json:"saved_at"`
}

// SnapshotFromQuote captures the items and totals of a blocked submission.
func SnapshotFromQuote(items []LineItem, q Quote) SessionSnapshot {
	return SessionSnapshot{
		Items:       items,
		Method:      q.Method,
		Subtotal:    q.Subtotal,
		ShippingFee: q.ShippingFee,
		GrandTotal:  q.GrandTotal,
		SavedAt:     time.Now(),
	}
}
