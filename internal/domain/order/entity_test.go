// internal/domain/order/entity_test.go
package order

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, StatusPaymentPending, InitialStatus(PaymentMethodRazorpay))
	assert.Equal(t, StatusPending, InitialStatus(PaymentMethodCOD))
}

func TestPaymentMethodValid(t *testing.T) {
	assert.True(t, PaymentMethodRazorpay.Valid())
	assert.True(t, PaymentMethodCOD.Valid())
	assert.False(t, PaymentMethod("bank_transfer").Valid())
	assert.False(t, PaymentMethod("").Valid())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusPaymentPending, StatusConfirmed, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("shipped").Valid())
}

func TestCanTransition(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:        {StatusConfirmed, StatusCancelled},
		StatusPaymentPending: {StatusConfirmed, StatusCancelled},
		StatusConfirmed:      {StatusPreparing, StatusCancelled},
		StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
		StatusOutForDelivery: {StatusDelivered, StatusCancelled},
		StatusDelivered:      nil,
		StatusCancelled:      nil,
	}

	all := []Status{
		StatusPending, StatusPaymentPending, StatusConfirmed, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled,
	}

	for from, targets := range allowed {
		ok := make(map[Status]bool, len(targets))
		for _, to := range targets {
			ok[to] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusOutForDelivery.IsTerminal())
}

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, (&Order{Status: StatusPreparing}).CanBeCancelled())
	assert.False(t, (&Order{Status: StatusDelivered}).CanBeCancelled())
	assert.False(t, (&Order{Status: StatusCancelled}).CanBeCancelled())
}

func TestGenerateOrderNumber(t *testing.T) {
	o := &Order{ID: 42}
	expected := fmt.Sprintf("ORD-%s-00042", time.Now().Format("20060102"))
	assert.Equal(t, expected, o.GenerateOrderNumber())
}
