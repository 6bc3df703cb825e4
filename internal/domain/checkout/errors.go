// internal/domain/checkout/errors.go
package checkout

import (
	"errors"
	"fmt"

	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
)

// Sentinel errors surfaced by the checkout pipeline.
var (
	ErrCartEmpty                 = errors.New("cart is empty")
	ErrMissingAddress            = errors.New("delivery address required")
	ErrUnauthorized              = errors.New("order does not belong to user")
	ErrInvalidPaymentMethod      = errors.New("invalid payment method")
	ErrPaymentVerificationFailed = errors.New("payment signature verification failed")
)

// InsufficientStockError names the cart line that failed the live stock
// re-check at order placement.
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested %d)", e.Name, e.Requested)
}

// Unwrap links the error to the catalog store's sentinel so callers can use
// errors.Is across both layers.
func (e *InsufficientStockError) Unwrap() error {
	return product.ErrInsufficientStock
}
