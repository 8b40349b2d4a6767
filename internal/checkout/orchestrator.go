package checkout

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
	"github.com/NidinaKoirala/artisan-market/internal/payment"
)

// CartAccess is the slice of the cart service the orchestrator needs.
type CartAccess interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

// SnapshotStore preserves checkout state across a forced login redirect.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, visitorID string, snap domain.SessionSnapshot) error
	ConsumeSnapshot(ctx context.Context, visitorID string) (*domain.SessionSnapshot, error)
	ClearSnapshot(ctx context.Context, visitorID string) error
}

// SubmitLocker guards against double submits of the same user's order.
type SubmitLocker interface {
	AcquireSubmitLock(ctx context.Context, userID string) (bool, error)
	ReleaseSubmitLock(ctx context.Context, userID string) error
}

// StockChecker validates requested quantities against live stock.
type StockChecker interface {
	CheckStock(ctx context.Context, items []domain.LineItem) error
}

// Orchestrator drives the checkout flow: quote, login gate, payment-method
// branch, order placement.
type Orchestrator struct {
	store     Store
	carts     CartAccess
	snapshots SnapshotStore
	locks     SubmitLocker
	stock     StockChecker
	gateway   payment.Gateway
	logger    *zap.Logger

	codFee   decimal.Decimal
	currency string
}

type OrchestratorConfig struct {
	// CODFee is the fixed delivery surcharge on cash-on-delivery orders.
	CODFee   decimal.Decimal
	Currency string
}

func NewOrchestrator(
	store Store,
	carts CartAccess,
	snapshots SnapshotStore,
	locks SubmitLocker,
	stock StockChecker,
	gateway payment.Gateway,
	logger *zap.Logger,
	cfg OrchestratorConfig,
) *Orchestrator {
	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}
	return &Orchestrator{
		store:     store,
		carts:     carts,
		snapshots: snapshots,
		locks:     locks,
		stock:     stock,
		gateway:   gateway,
		logger:    logger,
		codFee:    cfg.CODFee,
		currency:  currency,
	}
}

// Quote prices a set of items under a payment method without side effects.
func (o *Orchestrator) Quote(items []domain.LineItem, method domain.PaymentMethod) domain.Quote {
	return domain.NewQuote(items, method, o.codFee, o.currency)
}

// QuoteCart prices the user's whole cart.
func (o *Orchestrator) QuoteCart(ctx context.Context, userID string, method domain.PaymentMethod) (domain.Quote, error) {
	c, err := o.carts.Get(ctx, userID)
	if err != nil {
		return domain.Quote{}, err
	}
	if c.IsEmpty() {
		return domain.Quote{}, ErrEmptyCart
	}
	return o.Quote(c.Items, method), nil
}

// Resume returns (and consumes) the snapshot saved when an unauthenticated
// visitor hit the login gate, so checkout can pick up where it left off.
func (o *Orchestrator) Resume(ctx context.Context, visitorID string) (*domain.SessionSnapshot, error) {
	return o.snapshots.ConsumeSnapshot(ctx, visitorID)
}

// CreatePaymentIntent asks the gateway for a client secret bound to the
// given amount.
func (o *Orchestrator) CreatePaymentIntent(ctx context.Context, amountMinorUnits int64) (string, error) {
	return o.gateway.CreateIntent(ctx, amountMinorUnits, o.currency)
}

// Orders exposes placed-order reads for the account screens.
func (o *Orchestrator) Orders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return o.store.ListOrdersByUser(ctx, userID)
}
