package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewQuote_CODCarriesFlatFee(t *testing.T) {
	items := []LineItem{
		{ProductID: 6, Title: "Oak Candle Holder", UnitPrice: decimal.RequireFromString("20.00"), Quantity: 2},
	}
	codFee := decimal.RequireFromString("1.25")

	q := NewQuote(items, PaymentMethodCOD, codFee, "USD")

	assert.True(t, q.Subtotal.Equal(decimal.RequireFromString("40.00")), "got %s", q.Subtotal)
	assert.True(t, q.ShippingFee.Equal(codFee))
	assert.True(t, q.GrandTotal.Equal(decimal.RequireFromString("41.25")), "got %s", q.GrandTotal)
	assert.Equal(t, int64(4125), q.AmountMinorUnits)
	assert.Equal(t, "USD", q.Currency)
}

func TestNewQuote_CardHasNoFee(t *testing.T) {
	items := []LineItem{
		{ProductID: 6, Title: "Oak Candle Holder", UnitPrice: decimal.RequireFromString("20.00"), Quantity: 2},
	}

	q := NewQuote(items, PaymentMethodCard, decimal.RequireFromString("1.25"), "USD")

	assert.True(t, q.ShippingFee.IsZero())
	assert.True(t, q.GrandTotal.Equal(decimal.RequireFromString("40.00")), "got %s", q.GrandTotal)
	assert.Equal(t, int64(4000), q.AmountMinorUnits)
}

func TestNewQuote_EmptyItems(t *testing.T) {
	q := NewQuote(nil, PaymentMethodCOD, decimal.RequireFromString("1.25"), "USD")

	assert.True(t, q.Subtotal.IsZero())
	assert.True(t, q.GrandTotal.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, int64(125), q.AmountMinorUnits)
}

func TestPaymentMethod_Valid(t *testing.T) {
	assert.True(t, PaymentMethodCOD.Valid())
	assert.True(t, PaymentMethodCard.Valid())
	assert.False(t, PaymentMethod("PAYPAL").Valid())
	assert.False(t, PaymentMethod("").Valid())
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from CheckoutStatus
		to   CheckoutStatus
		want bool
	}{
		{"idle to address review", CheckoutStatusIdle, CheckoutStatusAddressReview, true},
		{"address review to payment selection", CheckoutStatusAddressReview, CheckoutStatusPaymentSelection, true},
		{"payment selection to submitting", CheckoutStatusPaymentSelection, CheckoutStatusSubmitting, true},
		{"submitting to succeeded", CheckoutStatusSubmitting, CheckoutStatusSucceeded, true},
		{"submitting to failed", CheckoutStatusSubmitting, CheckoutStatusFailed, true},
		{"failed submit retries payment selection", CheckoutStatusSubmitting, CheckoutStatusPaymentSelection, true},
		{"idle cannot skip to submitting", CheckoutStatusIdle, CheckoutStatusSubmitting, false},
		{"succeeded is terminal", CheckoutStatusSucceeded, CheckoutStatusSubmitting, false},
		{"failed is terminal", CheckoutStatusFailed, CheckoutStatusPaymentSelection, false},
		{"no backwards from payment selection", CheckoutStatusPaymentSelection, CheckoutStatusAddressReview, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestCheckoutStatus_IsTerminal(t *testing.T) {
	assert.True(t, CheckoutStatusSucceeded.IsTerminal())
	assert.True(t, CheckoutStatusFailed.IsTerminal())
	assert.False(t, CheckoutStatusSubmitting.IsTerminal())
	assert.False(t, CheckoutStatusIdle.IsTerminal())
}
