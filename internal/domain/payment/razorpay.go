// internal/domain/payment/razorpay.go

// Package payment integrates the Razorpay Orders API for online checkout.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
)

// RazorpayClient talks to the Razorpay REST API. It implements the checkout
// payment gateway interface.
type RazorpayClient struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayClient creates a Razorpay client from configuration.
func NewRazorpayClient(cfg *config.Config) *RazorpayClient {
	baseURL := cfg.External.Razorpay.BaseURL
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}
	return &RazorpayClient{
		keyID:     cfg.External.Razorpay.KeyID,
		keySecret: cfg.External.Razorpay.KeySecret,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateIntent creates a Razorpay order for the given amount and returns the
// gateway order ID the frontend hands to the Razorpay checkout widget.
func (c *RazorpayClient) CreateIntent(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	payload, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode razorpay order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build razorpay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Description != "" {
			return "", fmt.Errorf("razorpay order creation failed: %s (%s)", apiErr.Error.Description, apiErr.Error.Code)
		}
		return "", fmt.Errorf("razorpay order creation failed: status %d", resp.StatusCode)
	}

	var order createOrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return "", fmt.Errorf("failed to decode razorpay response: %w", err)
	}
	return order.ID, nil
}

// VerifySignature checks the HMAC-SHA256 signature Razorpay sends with a
// payment callback: hex(HMAC(keySecret, "<order_id>|<payment_id>")).
func (c *RazorpayClient) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
