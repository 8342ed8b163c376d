// Package payment talks to the external payment processor that captures
// card and digital payments.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Charge asks the processor to capture an amount.
type Charge struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Reference string  `json:"reference"`
	Method    string  `json:"method"`
}

// Processor captures payments. The returned reference is opaque.
type Processor interface {
	Capture(ctx context.Context, charge Charge) (string, error)
}

// ChargeResponse is the processor's reply.
type ChargeResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the processor's error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Client is an HTTP Processor.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a processor client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// Capture implements Processor.
func (c *Client) Capture(ctx context.Context, charge Charge) (string, error) {
	c.Logger.Info("Capturing payment",
		zap.String("reference", charge.Reference),
		zap.String("method", charge.Method),
		zap.Float64("amount", charge.Amount))

	payload, err := json.Marshal(charge)
	if err != nil {
		return "", errors.Trace(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/charges", c.BaseURL), bytes.NewReader(payload))
	if err != nil {
		return "", errors.Trace(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", charge.Reference)
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Payment request failed", zap.Error(err))
		return "", errors.Annotate(err, "calling payment processor")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.Logger.Error("Failed to read payment response", zap.Error(err))
		return "", errors.Trace(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
			c.Logger.Error("Payment processor error",
				zap.Int("status_code", resp.StatusCode),
				zap.String("response", string(body)))
			return "", errors.Errorf("payment processor returned %d", resp.StatusCode)
		}
		c.Logger.Error("Payment rejected",
			zap.String("error", errorResp.Error),
			zap.String("description", errorResp.ErrorDescription))
		return "", errors.Errorf("payment rejected: %s - %s", errorResp.Error, errorResp.ErrorDescription)
	}

	var chargeResp ChargeResponse
	if err := json.Unmarshal(body, &chargeResp); err != nil {
		return "", errors.Annotate(err, "decoding payment response")
	}
	if chargeResp.Status != "succeeded" {
		return "", errors.Errorf("payment %s: %s", chargeResp.Status, chargeResp.Message)
	}
	if chargeResp.ID == "" {
		return "", errors.New("payment processor returned no reference")
	}
	return chargeResp.ID, nil
}
