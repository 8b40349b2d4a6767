package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPGateway talks to the card gateway's REST API. Calls run through a
// circuit breaker so a dead gateway fails fast instead of holding every
// checkout for a full timeout.
type HTTPGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewHTTPGateway(cfg Config) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &HTTPGateway{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

type createIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	Error        string `json:"error,omitempty"`
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string) (string, error) {
	body, err := g.post(ctx, "/v1/payment-intents", createIntentRequest{
		Amount:   amountMinorUnits,
		Currency: currency,
	})
	if err != nil {
		return "", err
	}

	var resp createIntentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode intent response: %w", err)
	}
	if resp.ClientSecret == "" {
		if resp.Error != "" {
			return "", fmt.Errorf("create payment intent: %s", resp.Error)
		}
		return "", fmt.Errorf("create payment intent: empty client secret")
	}

	return resp.ClientSecret, nil
}

type confirmRequest struct {
	ClientSecret string `json:"client_secret"`
	CardToken    string `json:"card_token"`
}

type confirmResponse struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason,omitempty"`
}

func (g *HTTPGateway) ConfirmCapture(ctx context.Context, clientSecret, cardToken string) (CaptureResult, error) {
	body, err := g.post(ctx, "/v1/payment-intents/confirm", confirmRequest{
		ClientSecret: clientSecret,
		CardToken:    cardToken,
	})
	if err != nil {
		return CaptureResult{}, err
	}

	var resp confirmResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return CaptureResult{}, fmt.Errorf("decode confirm response: %w", err)
	}

	result := CaptureResult{
		PaymentID: resp.PaymentID,
		Reason:    resp.Reason,
	}
	switch resp.Status {
	case string(CaptureSucceeded):
		result.Status = CaptureSucceeded
	default:
		// anything the gateway does not call succeeded blocks placement
		result.Status = CaptureFailed
		if result.Reason == "" {
			result.Reason = fmt.Sprintf("capture returned status %q", resp.Status)
		}
	}

	return result, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload any) ([]byte, error) {
	return g.breaker.Execute(func() ([]byte, error) {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if g.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.apiKey)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
		}

		return body, nil
	})
}
