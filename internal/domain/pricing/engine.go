// internal/domain/pricing/engine.go

// Package pricing is the single source of the checkout total formula.
// Both the checkout summary endpoint and order placement call Quote so the
// two can never drift apart.
package pricing

import (
	"math"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
)

// Quote is a full pricing breakdown for a cart subtotal. All amounts in paise.
type Quote struct {
	Subtotal     int64  `json:"subtotal"`
	DeliveryFee  int64  `json:"delivery_fee"`
	TaxAmount    int64  `json:"tax_amount"`
	CODSurcharge int64  `json:"cod_surcharge"`
	GrandTotal   int64  `json:"grand_total"`
	Currency     string `json:"currency"`
}

// Engine derives order totals from a cart subtotal and payment method.
// It holds only configuration and has no side effects.
type Engine struct {
	deliveryFee  int64
	taxRate      float64
	codSurcharge int64
	currency     string
}

// NewEngine creates a pricing engine from the configured constants.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		deliveryFee:  cfg.Pricing.DeliveryFee,
		taxRate:      cfg.Pricing.TaxRate,
		codSurcharge: cfg.Pricing.CODSurcharge,
		currency:     cfg.Pricing.Currency,
	}
}

// Quote computes the pricing breakdown:
//
//	tax        = (subtotal + deliveryFee) * taxRate
//	grandTotal = subtotal + deliveryFee + tax [+ codSurcharge for COD]
func (e *Engine) Quote(subtotal int64, method order.PaymentMethod) Quote {
	q := Quote{
		Subtotal:    subtotal,
		DeliveryFee: e.deliveryFee,
		Currency:    e.currency,
	}

	q.TaxAmount = int64(math.Round(float64(subtotal+e.deliveryFee) * e.taxRate))
	if method == order.PaymentMethodCOD {
		q.CODSurcharge = e.codSurcharge
	}
	q.GrandTotal = q.Subtotal + q.DeliveryFee + q.TaxAmount + q.CODSurcharge

	return q
}
