// internal/domain/checkout/service.go

// Package checkout drives the cart-to-order pipeline: live stock validation
// and reservation, pricing, order creation, and the pending-payment to
// confirmed transition.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/cart"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/pricing"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/user"
)

// CatalogStore is the catalog surface the orchestrator depends on.
// DecrementStock must be guarded (stock >= requested) so concurrent
// checkouts cannot both succeed against the same stock.
type CatalogStore interface {
	Get(ctx context.Context, productID uint) (*product.Product, error)
	DecrementStock(ctx context.Context, productID uint, quantity int) error
	RestoreStock(ctx context.Context, productID uint, quantity int) error
}

// OrderStore persists orders and drives validated status transitions.
type OrderStore interface {
	Create(ctx context.Context, o *order.Order) error
	Get(ctx context.Context, orderID uint) (*order.Order, error)
	Transition(ctx context.Context, orderID uint, to order.Status, comment string, actor uint) (*order.Order, error)
}

// AddressBook resolves a user's saved addresses.
type AddressBook interface {
	Get(ctx context.Context, userID, addressID uint) (*user.Address, error)
}

// Notifier sends order notifications. Failures are logged, never propagated.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, recipient string, o *order.Order) error
}

// PaymentGateway creates payment intents and verifies gateway signatures.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, receipt string) (string, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

// Service orchestrates checkout.
type Service struct {
	catalog   CatalogStore
	orders    OrderStore
	carts     *cart.Service
	addresses AddressBook
	pricer    *pricing.Engine
	gateway   PaymentGateway
	notifier  Notifier
	logger    *logrus.Logger
}

// NewService creates a new checkout orchestrator. gateway and notifier may be
// nil when the corresponding integration is not configured.
func NewService(
	catalog CatalogStore,
	orders OrderStore,
	carts *cart.Service,
	addresses AddressBook,
	pricer *pricing.Engine,
	gateway PaymentGateway,
	notifier Notifier,
	logger *logrus.Logger,
) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		catalog:   catalog,
		orders:    orders,
		carts:     carts,
		addresses: addresses,
		pricer:    pricer,
		gateway:   gateway,
		notifier:  notifier,
		logger:    logger,
	}
}

// PlaceOrderRequest represents checkout submission data. Either AddressID
// (a saved address) or Address (freeform) selects the delivery address.
type PlaceOrderRequest struct {
	AddressID     *uint               `json:"address_id"`
	Address       string              `json:"address"`
	PaymentMethod order.PaymentMethod `json:"payment_method" binding:"required"`
}

// PaymentSession is what an online-payment caller needs to proceed to the
// gateway. GatewayOrderID is empty when intent creation failed; the order
// still exists and payment can be retried.
type PaymentSession struct {
	OrderID        uint   `json:"order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
}

// PlaceOrderResult is the outcome of a successful checkout.
type PlaceOrderResult struct {
	Order   *order.Order    `json:"order"`
	Payment *PaymentSession `json:"payment,omitempty"`
}

// PaymentVerification carries gateway callback parameters for signature
// verification.
type PaymentVerification struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
	PaymentID      string `json:"payment_id" binding:"required"`
	Signature      string `json:"signature" binding:"required"`
}

// Summary is the checkout-page view: the cart plus the pricing breakdown,
// computed by the same engine that order placement uses.
type Summary struct {
	Cart  *cart.Cart    `json:"cart"`
	Quote pricing.Quote `json:"quote"`
}

// GetSummary computes the checkout summary for a session and payment method.
func (s *Service) GetSummary(ctx context.Context, sessionID string, method order.PaymentMethod) (*Summary, error) {
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	quote := s.pricer.Quote(c.Subtotal(), method)
	return &Summary{Cart: c, Quote: quote}, nil
}

// PlaceOrder converts the session cart into a persisted order:
//
//  1. resolve the delivery address (saved or freeform)
//  2. re-check live stock and decrement it per line, all-or-nothing
//  3. price the cart through the pricing engine
//  4. create the order with items frozen at their add-time prices
//  5. clear the cart and send the confirmation email best-effort
//
// For online payment methods the result carries a payment session for the
// caller to complete gateway confirmation.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, email, sessionID string, req *PlaceOrderRequest) (*PlaceOrderResult, error) {
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrCartEmpty
	}

	shippingAddress, err := s.resolveAddress(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	// Reserve stock against live values, not the cart's add-time view.
	// Compensating restores keep the operation all-or-nothing: no path
	// leaves stock decremented without an order, or vice versa.
	reserved, err := s.reserveStock(ctx, c)
	if err != nil {
		return nil, err
	}

	quote := s.pricer.Quote(c.Subtotal(), req.PaymentMethod)

	o := &order.Order{
		UserID:          userID,
		Status:          order.InitialStatus(req.PaymentMethod),
		PaymentMethod:   req.PaymentMethod,
		SubtotalAmount:  quote.Subtotal,
		DeliveryFee:     quote.DeliveryFee,
		TaxAmount:       quote.TaxAmount,
		CODSurcharge:    quote.CODSurcharge,
		TotalAmount:     quote.GrandTotal,
		ShippingAddress: shippingAddress,
		Items:           orderItems(c),
	}

	if err := s.orders.Create(ctx, o); err != nil {
		s.releaseStock(ctx, reserved)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).
			Warn("failed to clear cart after order placement")
	}

	s.notifyAsync(email, o)

	result := &PlaceOrderResult{Order: o}
	if req.PaymentMethod.IsOnline() {
		result.Payment = s.createPaymentSession(ctx, o, quote.Currency)
	}
	return result, nil
}

// ConfirmPayment transitions an order from payment_pending to confirmed.
// Re-confirming an already-confirmed order is a no-op. When verification
// data is supplied and a gateway is configured, the signature is checked
// before the transition.
func (s *Service) ConfirmPayment(ctx context.Context, userID, orderID uint, verification *PaymentVerification) (*order.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrUnauthorized
	}

	if o.Status == order.StatusConfirmed {
		return o, nil
	}
	if o.Status != order.StatusPaymentPending {
		return nil, fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, o.Status, order.StatusConfirmed)
	}

	if verification != nil && s.gateway != nil {
		if !s.gateway.VerifySignature(verification.GatewayOrderID, verification.PaymentID, verification.Signature) {
			return nil, ErrPaymentVerificationFailed
		}
	}

	return s.orders.Transition(ctx, orderID, order.StatusConfirmed, "Payment confirmed", userID)
}

// resolveAddress picks the saved address when an ID was supplied, otherwise
// the freeform string. A blank freeform address is rejected.
func (s *Service) resolveAddress(ctx context.Context, userID uint, req *PlaceOrderRequest) (string, error) {
	if req.AddressID != nil {
		addr, err := s.addresses.Get(ctx, userID, *req.AddressID)
		if err != nil {
			return "", err
		}
		return addr.Format(), nil
	}

	freeform := strings.TrimSpace(req.Address)
	if freeform == "" {
		return "", ErrMissingAddress
	}
	return freeform, nil
}

// reserveStock decrements stock for every cart line, rolling back prior
// decrements when any line fails the guarded update.
func (s *Service) reserveStock(ctx context.Context, c *cart.Cart) ([]cart.Item, error) {
	reserved := make([]cart.Item, 0, len(c.Items))
	for _, item := range c.Items {
		if err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseStock(ctx, reserved)
			if errors.Is(err, product.ErrInsufficientStock) || errors.Is(err, product.ErrNotFound) {
				return nil, &InsufficientStockError{
					ProductID: item.ProductID,
					Name:      item.Name,
					Requested: item.Quantity,
				}
			}
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

func (s *Service) releaseStock(ctx context.Context, reserved []cart.Item) {
	for _, item := range reserved {
		if err := s.catalog.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.WithError(err).WithField("product_id", item.ProductID).
				Error("failed to restore stock after aborted checkout")
		}
	}
}

// notifyAsync fires the confirmation email without blocking the request and
// without letting a slow or failing mailer affect the placed order.
func (s *Service) notifyAsync(email string, o *order.Order) {
	if s.notifier == nil || email == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.notifier.SendOrderConfirmation(ctx, email, o); err != nil {
			s.logger.WithError(err).WithField("order_id", o.ID).
				Warn("failed to send order confirmation email")
		}
	}()
}

// createPaymentSession asks the gateway for a payment intent. Gateway
// failures are logged only; the order stands and payment can be retried.
func (s *Service) createPaymentSession(ctx context.Context, o *order.Order, currency string) *PaymentSession {
	session := &PaymentSession{
		OrderID:  o.ID,
		Amount:   o.TotalAmount,
		Currency: currency,
	}

	if s.gateway == nil {
		return session
	}

	ref, err := s.gateway.CreateIntent(ctx, o.TotalAmount, currency, o.OrderNumber)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).
			Warn("failed to create payment intent")
		return session
	}
	session.GatewayOrderID = ref
	return session
}

func orderItems(c *cart.Cart) []order.Item {
	items := make([]order.Item, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, order.Item{
			ProductID:  line.ProductID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			Price:      line.UnitPrice,
			TotalPrice: line.Total(),
		})
	}
	return items
}
