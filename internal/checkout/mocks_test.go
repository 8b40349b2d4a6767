package checkout

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NidinaKoirala/artisan-market/internal/domain"
	"github.com/NidinaKoirala/artisan-market/internal/payment"
)

// mockStore implements Store for testing.
type mockStore struct {
	m sync.Mutex

	sessions map[string]*Session // by idempotency key
	orders   map[uuid.UUID]*domain.Order
	events   []OutboxEvent

	placeOrderErr error
	placedCount   int
	stuck         []Session
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions: make(map[string]*Session),
		orders:   make(map[uuid.UUID]*domain.Order),
	}
}

func (m *mockStore) GetSessionByIdempotencyKey(_ context.Context, key string) (*Session, error) {
	m.m.Lock()
	defer m.m.Unlock()
	sess, ok := m.sessions[key]
	if !ok {
		return nil, ErrIdempotencyKeyNotFound
	}
	copied := *sess
	return &copied, nil
}

func (m *mockStore) CreateSession(_ context.Context, s *Session) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.sessions[s.IdempotencyKey] = s
	return nil
}

func (m *mockStore) UpdateSessionStatus(_ context.Context, id uuid.UUID, status domain.CheckoutStatus, reason string) error {
	m.m.Lock()
	defer m.m.Unlock()
	for _, sess := range m.sessions {
		if sess.ID == id {
			sess.Status = status
			sess.FailureReason = reason
			return nil
		}
	}
	return ErrSessionNotFound
}

func (m *mockStore) PlaceOrder(_ context.Context, sessionID uuid.UUID, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.placeOrderErr != nil {
		return m.placeOrderErr
	}
	m.placedCount++
	m.orders[order.ID] = order
	m.events = append(m.events, OutboxEvent{
		ID:        int64(len(m.events) + 1),
		EventType: "OrderPlaced",
	})
	for _, sess := range m.sessions {
		if sess.ID == sessionID {
			sess.Status = domain.CheckoutStatusSucceeded
			id := order.ID
			sess.OrderID = &id
			sess.PaymentID = order.PaymentID
			return nil
		}
	}
	return ErrSessionNotFound
}

func (m *mockStore) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (m *mockStore) ListOrdersByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*domain.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *mockStore) GetUnprocessedEvents(context.Context, int) ([]OutboxEvent, error) {
	m.m.Lock()
	defer m.m.Unlock()
	return m.events, nil
}

func (m *mockStore) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockStore) GetStuckSessions(context.Context) ([]Session, error) {
	return m.stuck, nil
}

func (m *mockStore) placed() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.placedCount
}

// mockCarts implements CartAccess.
type mockCarts struct {
	cart    *domain.Cart
	getErr  error
	cleared bool
}

func (m *mockCarts) Get(context.Context, string) (*domain.Cart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.cart, nil
}

func (m *mockCarts) Clear(context.Context, string) error {
	m.cleared = true
	return nil
}

// mockSnapshots implements SnapshotStore.
type mockSnapshots struct {
	saved   map[string]domain.SessionSnapshot
	saveErr error
}

func newMockSnapshots() *mockSnapshots {
	return &mockSnapshots{saved: make(map[string]domain.SessionSnapshot)}
}

func (m *mockSnapshots) SaveSnapshot(_ context.Context, visitorID string, snap domain.SessionSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[visitorID] = snap
	return nil
}

func (m *mockSnapshots) ConsumeSnapshot(_ context.Context, visitorID string) (*domain.SessionSnapshot, error) {
	snap, ok := m.saved[visitorID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	delete(m.saved, visitorID)
	return &snap, nil
}

func (m *mockSnapshots) ClearSnapshot(_ context.Context, visitorID string) error {
	delete(m.saved, visitorID)
	return nil
}

// mockLocks implements SubmitLocker.
type mockLocks struct {
	held       bool
	acquireErr error
	releases   int
}

func (m *mockLocks) AcquireSubmitLock(context.Context, string) (bool, error) {
	if m.acquireErr != nil {
		return false, m.acquireErr
	}
	if m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *mockLocks) ReleaseSubmitLock(context.Context, string) error {
	m.held = false
	m.releases++
	return nil
}

// mockStock implements StockChecker.
type mockStock struct {
	err error
}

func (m *mockStock) CheckStock(context.Context, []domain.LineItem) error {
	return m.err
}

// mockGateway implements payment.Gateway.
type mockGateway struct {
	intentErr  error
	confirmErr error
	result     payment.CaptureResult

	intents  int
	confirms int
}

func (m *mockGateway) CreateIntent(context.Context, int64, string) (string, error) {
	m.intents++
	if m.intentErr != nil {
		return "", m.intentErr
	}
	return "secret_test_123", nil
}

func (m *mockGateway) ConfirmCapture(context.Context, string, string) (payment.CaptureResult, error) {
	m.confirms++
	if m.confirmErr != nil {
		return payment.CaptureResult{}, m.confirmErr
	}
	return m.result, nil
}

type testFixture struct {
	store     *mockStore
	carts     *mockCarts
	snapshots *mockSnapshots
	locks     *mockLocks
	stock     *mockStock
	gateway   *mockGateway
	sut       *Orchestrator
}

// newTestOrchestrator wires an Orchestrator over all mocks with a 1.25 COD
// fee, the fixture used by most tests.
func newTestOrchestrator() *testFixture {
	f := &testFixture{
		store:     newMockStore(),
		carts:     &mockCarts{cart: &domain.Cart{UserID: "123"}},
		snapshots: newMockSnapshots(),
		locks:     &mockLocks{},
		stock:     &mockStock{},
		gateway:   &mockGateway{result: payment.CaptureResult{Status: payment.CaptureSucceeded, PaymentID: "pay_abc"}},
	}
	f.sut = NewOrchestrator(
		f.store, f.carts, f.snapshots, f.locks, f.stock, f.gateway,
		zap.NewNop(),
		OrchestratorConfig{CODFee: decimal.RequireFromString("1.25"), Currency: "USD"},
	)
	return f
}

func candleHolders(qty int) []domain.LineItem {
	return []domain.LineItem{{
		ProductID: 6,
		Title:     "Oak Candle Holder",
		UnitPrice: decimal.RequireFromString("20.00"),
		Quantity:  qty,
	}}
}
