// internal/domain/pricing/engine_test.go
package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
)

func testEngine() *Engine {
	return NewEngine(&config.Config{Pricing: config.PricingConfig{
		DeliveryFee:  5000,
		TaxRate:      0.18,
		CODSurcharge: 2000,
		Currency:     "INR",
	}})
}

func TestQuoteOnline(t *testing.T) {
	q := testEngine().Quote(100000, order.PaymentMethodRazorpay)

	assert.Equal(t, int64(100000), q.Subtotal)
	assert.Equal(t, int64(5000), q.DeliveryFee)
	assert.Equal(t, int64(18900), q.TaxAmount) // 18% of 1050.00
	assert.Equal(t, int64(0), q.CODSurcharge)
	assert.Equal(t, int64(123900), q.GrandTotal)
	assert.Equal(t, "INR", q.Currency)
}

func TestQuoteCOD(t *testing.T) {
	q := testEngine().Quote(100000, order.PaymentMethodCOD)

	assert.Equal(t, int64(2000), q.CODSurcharge)
	assert.Equal(t, int64(125900), q.GrandTotal)
}

func TestQuoteZeroSubtotal(t *testing.T) {
	// Fee and tax apply even to a zero subtotal; callers guard empties.
	q := testEngine().Quote(0, order.PaymentMethodRazorpay)

	assert.Equal(t, int64(5000), q.DeliveryFee)
	assert.Equal(t, int64(900), q.TaxAmount)
	assert.Equal(t, int64(5900), q.GrandTotal)
}

func TestQuoteRoundsTax(t *testing.T) {
	// 18% of (33 + 5000) = 905.94 paise, rounds to 906.
	q := testEngine().Quote(33, order.PaymentMethodRazorpay)
	assert.Equal(t, int64(906), q.TaxAmount)
}

func TestQuoteTotalsAddUp(t *testing.T) {
	for _, subtotal := range []int64{1, 8999, 17998, 100000, 4599900} {
		for _, method := range []order.PaymentMethod{order.PaymentMethodRazorpay, order.PaymentMethodCOD} {
			q := testEngine().Quote(subtotal, method)
			assert.Equal(t, q.Subtotal+q.DeliveryFee+q.TaxAmount+q.CODSurcharge, q.GrandTotal,
				"subtotal=%d method=%s", subtotal, method)
		}
	}
}
