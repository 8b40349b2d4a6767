package domain

import "github.com/shopspring/decimal"

// PaymentMethod selects the fee rule and the submission path.
type PaymentMethod string

const (
	PaymentMethodCOD  PaymentMethod = "COD"
	PaymentMethodCard PaymentMethod = "CARD"
)

// Valid reports whether the method is one of the supported variants.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodCard
}

// CheckoutStatus is the orchestrator state persisted with a checkout session.
type CheckoutStatus string

const (
	CheckoutStatusIdle             CheckoutStatus = "IDLE"
	CheckoutStatusAddressReview    CheckoutStatus = "ADDRESS_REVIEW"
	CheckoutStatusPaymentSelection CheckoutStatus = "PAYMENT_SELECTION"
	CheckoutStatusSubmitting       CheckoutStatus = "SUBMITTING"
	CheckoutStatusSucceeded        CheckoutStatus = "SUCCEEDED"
	CheckoutStatusFailed           CheckoutStatus = "FAILED"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSucceeded || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

// legal transitions; a failed submit returns to PAYMENT_SELECTION so the
// user can retry.
var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:             {CheckoutStatusAddressReview},
	CheckoutStatusAddressReview:    {CheckoutStatusPaymentSelection},
	CheckoutStatusPaymentSelection: {CheckoutStatusSubmitting},
	CheckoutStatusSubmitting:       {CheckoutStatusSucceeded, CheckoutStatusFailed, CheckoutStatusPaymentSelection},
}

// CanTransitionTo reports whether moving from one checkout status to another
// is legal.
func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Quote is the priced view of a set of items under a payment method.
// COD carries a fixed delivery surcharge; card carries none.
type Quote struct {
	Method           PaymentMethod   `json:"payment_method"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingFee      decimal.Decimal `json:"shipping_fee"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
	AmountMinorUnits int64           `json:"amount_minor_units"`
	Currency         string          `json:"currency"`
}

// NewQuote prices the items under the given method. codFee is the fixed
// delivery surcharge applied to cash-on-delivery orders.
func NewQuote(items []LineItem, method PaymentMethod, codFee decimal.Decimal, currency string) Quote {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal())
	}

	fee := decimal.Zero
	if method == PaymentMethodCOD {
		fee = codFee
	}

	grand := subtotal.Add(fee)
	return Quote{
		Method:           method,
		Subtotal:         subtotal,
		ShippingFee:      fee,
		GrandTotal:       grand,
		AmountMinorUnits: grand.Shift(2).IntPart(),
		Currency:         currency,
	}
}
