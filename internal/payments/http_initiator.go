package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/gmchicks/storefront-backend/pkg/config"
)

const (
	maxGatewayAttempts = 3
	gatewayBackoffBase = 200 * time.Millisecond
	maxResponseBytes   = 1 << 20
)

// HTTPInitiator posts collection requests to a JSON payment gateway.
type HTTPInitiator struct {
	client      *http.Client
	url         string
	apiKey      string
	callbackURL string
	backoff     func() retry.Backoff
}

type gatewayRequest struct {
	Reference   string `json:"reference"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	PhoneNumber string `json:"phone_number"`
	CallbackURL string `json:"callback_url,omitempty"`
	Description string `json:"description"`
}

type gatewayResponse struct {
	Accepted  bool   `json:"accepted"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

func NewHTTPInitiator(cfg config.PaymentsConfig) (*HTTPInitiator, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("payments url required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPInitiator{
		client:      &http.Client{Timeout: timeout},
		url:         cfg.URL,
		apiKey:      cfg.APIKey,
		callbackURL: cfg.CallbackURL,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(maxGatewayAttempts-1, retry.NewExponential(gatewayBackoffBase))
		},
	}, nil
}

// Initiate retries transport failures and 5xx answers. A 4xx answer is a
// rejection, not an error.
func (h *HTTPInitiator) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	body, err := json.Marshal(gatewayRequest{
		Reference:   req.OrderNumber,
		Amount:      req.AmountKES,
		Currency:    "KES",
		PhoneNumber: req.PayerPhone,
		CallbackURL: h.callbackURL,
		Description: "Order " + req.OrderNumber,
	})
	if err != nil {
		return InitiateResult{}, fmt.Errorf("encode gateway request: %w", err)
	}

	var result InitiateResult
	err = retry.Do(ctx, h.backoff(), func(ctx context.Context) error {
		res, err := h.post(ctx, body)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return InitiateResult{}, err
	}
	return result, nil
}

func (h *HTTPInitiator) post(ctx context.Context, body []byte) (InitiateResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return InitiateResult{}, fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return InitiateResult{}, err
		}
		return InitiateResult{}, retry.RetryableError(fmt.Errorf("call payment gateway: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return InitiateResult{}, retry.RetryableError(fmt.Errorf("read gateway response: %w", err))
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return InitiateResult{}, retry.RetryableError(fmt.Errorf("payment gateway returned %d", resp.StatusCode))
	}

	var decoded gatewayResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil && resp.StatusCode < http.StatusBadRequest {
			return InitiateResult{}, fmt.Errorf("decode gateway response: %w", err)
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		msg := decoded.Message
		if msg == "" {
			msg = fmt.Sprintf("payment gateway rejected the request (%d)", resp.StatusCode)
		}
		return InitiateResult{Accepted: false, Message: msg}, nil
	}
	return InitiateResult{
		Accepted:  decoded.Accepted,
		Reference: decoded.Reference,
		Message:   decoded.Message,
	}, nil
}
