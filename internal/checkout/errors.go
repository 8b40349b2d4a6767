package checkout

import "errors"

var (
	ErrEmptyCart              = errors.New("cart is empty, nothing to checkout")
	ErrSubmitInFlight         = errors.New("an order submission is already in flight")
	ErrIllegalTransition      = errors.New("illegal transition of checkout status")
	ErrMissingIdempotencyKey  = errors.New("idempotency key is required")
	ErrUnsupportedMethod      = errors.New("unsupported payment method")
	ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")
	ErrSessionNotFound        = errors.New("checkout session not found")
	ErrOrderNotFound          = errors.New("order not found")
)
