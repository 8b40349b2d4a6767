package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NidinaKoirala/artisan-market/internal/catalog"
	"github.com/NidinaKoirala/artisan-market/internal/checkout"
	"github.com/NidinaKoirala/artisan-market/internal/domain"
)

func buyNowBody(t *testing.T, method domain.PaymentMethod, key string) []byte {
	t.Helper()
	body, err := json.Marshal(placeOrderRequestDTO{
		Items: []domain.LineItem{{
			ProductID: 6,
			Title:     "Oak Candle Holder",
			UnitPrice: decimal.RequireFromString("20.00"),
			Quantity:  2,
		}},
		PaymentMethod:  method,
		IdempotencyKey: key,
	})
	require.NoError(t, err)
	return body
}

func TestQuote_BuyNowCOD(t *testing.T) {
	handler := newTestCheckoutHandler(&mockCatalog{}, newMockSnapshots())

	body, _ := json.Marshal(quoteRequestDTO{
		PaymentMethod: domain.PaymentMethodCOD,
		Items: []domain.LineItem{{
			ProductID: 6,
			UnitPrice: decimal.RequireFromString("20.00"),
			Quantity:  2,
		}},
	})
	recorder := httptest.NewRecorder()
	handler.Quote(recorder, httptest.NewRequest("POST", "/checkout/quote", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, recorder.Code)

	var quote domain.Quote
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&quote))
	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("40.00")), "got %s", quote.Subtotal)
	assert.True(t, quote.ShippingFee.Equal(decimal.RequireFromString("1.25")))
	assert.True(t, quote.GrandTotal.Equal(decimal.RequireFromString("41.25")), "got %s", quote.GrandTotal)
}

func TestQuote_InvalidMethod(t *testing.T) {
	handler := newTestCheckoutHandler(&mockCatalog{}, newMockSnapshots())

	recorder := httptest.NewRecorder()
	handler.Quote(recorder, httptest.NewRequest("POST", "/checkout/quote",
		bytes.NewReader([]byte(`{"payment_method":"PAYPAL"}`))))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestPlaceOrder_Authenticated_COD(t *testing.T) {
	handler := newTestCheckoutHandler(&mockCatalog{}, newMockSnapshots())

	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/order/place",
		buyNowBody(t, domain.PaymentMethodCOD, "key-1")))

	require.Equal(t, http.StatusCreated, recorder.Code)

	var resp placeOrderResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, checkout.OutcomePlaced, resp.Outcome)
	assert.NotEmpty(t, resp.CheckoutID)
	require.NotNil(t, resp.Order)
	assert.Equal(t, int64(4125), resp.Order.AmountMinorUnits)
}

func TestPlaceOrder_Anonymous_LoginRequired(t *testing.T) {
	snaps := newMockSnapshots()
	handler := newTestCheckoutHandler(&mockCatalog{}, snaps)

	request := httptest.NewRequest("POST", "/order/place", bytes.NewReader(buyNowBody(t, domain.PaymentMethodCOD, "")))
	request.Header.Set("X-Visitor-ID", "visitor-7")

	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, request)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	var resp placeOrderResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, checkout.OutcomeLoginRequired, resp.Outcome)
	assert.Nil(t, resp.Order)

	_, saved := snaps.saved["visitor-7"]
	assert.True(t, saved, "snapshot was not saved for the visitor")
}

func TestPlaceOrder_StockShortfall(t *testing.T) {
	cat := &mockCatalog{stockErr: &catalog.ShortfallError{ProductIDs: []int64{6}}}
	handler := newTestCheckoutHandler(cat, newMockSnapshots())

	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/order/place",
		buyNowBody(t, domain.PaymentMethodCOD, "key-1")))

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	var resp placeOrderResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, checkout.OutcomeFailed, resp.Outcome)
	assert.Contains(t, resp.Error, "insufficient stock")
}

func TestPlaceOrder_MissingIdempotencyKey(t *testing.T) {
	handler := newTestCheckoutHandler(&mockCatalog{}, newMockSnapshots())

	recorder := httptest.NewRecorder()
	handler.PlaceOrder(recorder, authedRequest("POST", "/order/place",
		buyNowBody(t, domain.PaymentMethodCOD, "")))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestResume_ReturnsSnapshotOnce(t *testing.T) {
	snaps := newMockSnapshots()
	snaps.saved["visitor-7"] = domain.SessionSnapshot{
		Items:      []domain.LineItem{{ProductID: 6, Quantity: 2}},
		Method:     domain.PaymentMethodCOD,
		GrandTotal: decimal.RequireFromString("41.25"),
	}
	handler := newTestCheckoutHandler(&mockCatalog{}, snaps)

	request := httptest.NewRequest("GET", "/checkout/resume", nil)
	request.Header.Set("X-Visitor-ID", "visitor-7")

	recorder := httptest.NewRecorder()
	handler.Resume(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var snap domain.SessionSnapshot
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&snap))
	assert.Len(t, snap.Items, 1)

	recorder = httptest.NewRecorder()
	handler.Resume(recorder, request)
	assert.Equal(t, http.StatusNotFound, recorder.Code, "snapshot is single use")
}

func TestCreatePaymentIntent_RequiresAuth(t *testing.T) {
	handler := newTestCheckoutHandler(&mockCatalog{}, newMockSnapshots())

	recorder := httptest.NewRecorder()
	handler.CreatePaymentIntent(recorder, httptest.NewRequest("POST", "/create-payment-intent",
		bytes.NewReader([]byte(`{"amount":4125}`))))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreatePaymentIntent_Success(t *testing.T) {
	handler := newTestCheckoutHandler(&mockCatalog{}, newMockSnapshots())

	recorder := httptest.NewRecorder()
	handler.CreatePaymentIntent(recorder, authedRequest("POST", "/create-payment-intent",
		[]byte(`{"amount":4125}`)))

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "secret_test", resp["clientSecret"])
}
