// internal/domain/payment/razorpay_test.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetcrumbs/bakery-backend/internal/config"
)

func newTestClient(baseURL string) *RazorpayClient {
	return NewRazorpayClient(&config.Config{External: config.ExternalConfig{
		Razorpay: config.RazorpayConfig{
			KeyID:     "rzp_test_key",
			KeySecret: "secret",
			BaseURL:   baseURL,
		},
	}})
}

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		username, password, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", username)
		assert.Equal(t, "secret", password)

		var req createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(123900), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "ORD-20260830-00001", req.Receipt)

		json.NewEncoder(w).Encode(createOrderResponse{
			ID:       "order_abc123",
			Amount:   req.Amount,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	ref, err := newTestClient(srv.URL).CreateIntent(context.Background(), 123900, "INR", "ORD-20260830-00001")
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", ref)
}

func TestCreateIntentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least 100"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateIntent(context.Background(), 1, "INR", "ORD-X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be at least 100")
}

func TestVerifySignature(t *testing.T) {
	client := newTestClient("")

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_abc123|pay_xyz789"))
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifySignature("order_abc123", "pay_xyz789", signature))
	assert.False(t, client.VerifySignature("order_abc123", "pay_xyz789", "deadbeef"))
	assert.False(t, client.VerifySignature("order_other", "pay_xyz789", signature))
}
