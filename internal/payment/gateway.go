package payment

import (
	"context"
	"errors"
)

// CaptureStatus is one of the gateway's two terminal outcomes.
type CaptureStatus string

const (
	CaptureSucceeded CaptureStatus = "succeeded"
	CaptureFailed    CaptureStatus = "failed"
)

// CaptureResult reports the outcome of a card capture. Reason is set only
// on failure and is safe to surface to the user.
type CaptureResult struct {
	Status    CaptureStatus
	PaymentID string
	Reason    string
}

func (r CaptureResult) Succeeded() bool {
	return r.Status == CaptureSucceeded
}

// Gateway is the card-payment collaborator. CreateIntent issues a one-time
// client secret authorizing capture of exactly the given amount;
// ConfirmCapture resolves that secret plus a card token into a terminal
// outcome. Order placement must not proceed on anything but a succeeded
// capture.
type Gateway interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (clientSecret string, err error)
	ConfirmCapture(ctx context.Context, clientSecret, cardToken string) (CaptureResult, error)
}

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")
