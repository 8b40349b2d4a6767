package httpapi

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NidinaKoirala/artisan-market/internal/cart"
	"github.com/NidinaKoirala/artisan-market/internal/catalog"
	"github.com/NidinaKoirala/artisan-market/internal/checkout"
	"github.com/NidinaKoirala/artisan-market/internal/domain"
	"github.com/NidinaKoirala/artisan-market/internal/payment"
	"github.com/NidinaKoirala/artisan-market/internal/session"
)

// mockCartRepo implements cart.Repository over a single in-memory cart.
type mockCartRepo struct {
	cart *domain.Cart
	err  error
}

func (m *mockCartRepo) GetCart(context.Context, string) (*domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cart.ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockCartRepo) UpsertCart(_ context.Context, c *domain.Cart) error {
	if m.err != nil {
		return m.err
	}
	m.cart = c
	return nil
}

func (m *mockCartRepo) DeleteCart(context.Context, string) error {
	m.cart = nil
	return m.err
}

// nopCache implements cart.Cache and always misses.
type nopCache struct{}

func (nopCache) Get(context.Context, string) (*domain.Cart, error) { return nil, cart.ErrCacheMiss }
func (nopCache) Set(context.Context, string, *domain.Cart) error   { return nil }
func (nopCache) Delete(context.Context, string) error              { return nil }

// mockCatalog implements catalog.Repository over a fixed product map.
type mockCatalog struct {
	products map[int64]*domain.Product
	stockErr error
}

func (m *mockCatalog) ListProducts(context.Context) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalog) ListCategories(context.Context) ([]*domain.Category, error) {
	return []*domain.Category{{ID: 1, Name: "Woodwork"}}, nil
}

func (m *mockCatalog) CheckStock(context.Context, []domain.LineItem) error {
	return m.stockErr
}

// mockCheckoutStore implements checkout.Store, just enough for handler tests.
type mockCheckoutStore struct {
	sessions map[string]*checkout.Session
	orders   map[string]*domain.Order
}

func newMockCheckoutStore() *mockCheckoutStore {
	return &mockCheckoutStore{
		sessions: make(map[string]*checkout.Session),
		orders:   make(map[string]*domain.Order),
	}
}

func (m *mockCheckoutStore) GetSessionByIdempotencyKey(_ context.Context, key string) (*checkout.Session, error) {
	sess, ok := m.sessions[key]
	if !ok {
		return nil, checkout.ErrIdempotencyKeyNotFound
	}
	return sess, nil
}

func (m *mockCheckoutStore) CreateSession(_ context.Context, s *checkout.Session) error {
	m.sessions[s.IdempotencyKey] = s
	return nil
}

func (m *mockCheckoutStore) UpdateSessionStatus(_ context.Context, id uuid.UUID, status domain.CheckoutStatus, reason string) error {
	for _, sess := range m.sessions {
		if sess.ID == id {
			sess.Status = status
			sess.FailureReason = reason
		}
	}
	return nil
}

func (m *mockCheckoutStore) PlaceOrder(_ context.Context, sessionID uuid.UUID, order *domain.Order) error {
	m.orders[order.ID.String()] = order
	for _, sess := range m.sessions {
		if sess.ID == sessionID {
			sess.Status = domain.CheckoutStatusSucceeded
			id := order.ID
			sess.OrderID = &id
		}
	}
	return nil
}

func (m *mockCheckoutStore) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.orders[id.String()]
	if !ok {
		return nil, checkout.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockCheckoutStore) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *mockCheckoutStore) GetUnprocessedEvents(context.Context, int) ([]checkout.OutboxEvent, error) {
	return nil, nil
}

func (m *mockCheckoutStore) MarkEventAsProcessed(context.Context, int64) error { return nil }

func (m *mockCheckoutStore) GetStuckSessions(context.Context) ([]checkout.Session, error) {
	return nil, nil
}

// mockSnapshots implements checkout.SnapshotStore.
type mockSnapshots struct {
	saved map[string]domain.SessionSnapshot
}

func newMockSnapshots() *mockSnapshots {
	return &mockSnapshots{saved: make(map[string]domain.SessionSnapshot)}
}

func (m *mockSnapshots) SaveSnapshot(_ context.Context, visitorID string, snap domain.SessionSnapshot) error {
	m.saved[visitorID] = snap
	return nil
}

func (m *mockSnapshots) ConsumeSnapshot(_ context.Context, visitorID string) (*domain.SessionSnapshot, error) {
	snap, ok := m.saved[visitorID]
	if !ok {
		return nil, session.ErrSnapshotNotFound
	}
	delete(m.saved, visitorID)
	return &snap, nil
}

func (m *mockSnapshots) ClearSnapshot(_ context.Context, visitorID string) error {
	delete(m.saved, visitorID)
	return nil
}

// mockLocks implements checkout.SubmitLocker and always grants the lock.
type mockLocks struct{}

func (mockLocks) AcquireSubmitLock(context.Context, string) (bool, error) { return true, nil }
func (mockLocks) ReleaseSubmitLock(context.Context, string) error         { return nil }

// mockGateway implements payment.Gateway.
type mockGateway struct {
	result payment.CaptureResult
}

func (m *mockGateway) CreateIntent(context.Context, int64, string) (string, error) {
	return "secret_test", nil
}

func (m *mockGateway) ConfirmCapture(context.Context, string, string) (payment.CaptureResult, error) {
	return m.result, nil
}

// newTestCheckoutHandler wires a real orchestrator over the mocks above.
func newTestCheckoutHandler(cat *mockCatalog, snaps *mockSnapshots) *CheckoutHandler {
	cartSvc := cart.NewService(&mockCartRepo{}, nopCache{}, zap.NewNop())
	orch := checkout.NewOrchestrator(
		newMockCheckoutStore(),
		cartSvc,
		snaps,
		mockLocks{},
		cat,
		&mockGateway{result: payment.CaptureResult{Status: payment.CaptureSucceeded, PaymentID: "pay_test"}},
		zap.NewNop(),
		checkout.OrchestratorConfig{CODFee: decimal.RequireFromString("1.25"), Currency: "USD"},
	)
	return NewCheckoutHandler(orch, 5*time.Second)
}
