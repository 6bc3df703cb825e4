// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/cart"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/pricing"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/user"
)

// --- fakes ---

type fakeCatalog struct {
	mu       sync.Mutex
	products map[uint]*product.Product
}

func newFakeCatalog(products ...*product.Product) *fakeCatalog {
	m := make(map[uint]*product.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return &fakeCatalog{products: m}
}

func (f *fakeCatalog) Get(ctx context.Context, productID uint) (*product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) DecrementStock(ctx context.Context, productID uint, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return product.ErrNotFound
	}
	if p.Stock < quantity {
		return product.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeCatalog) RestoreStock(ctx context.Context, productID uint, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return product.ErrNotFound
	}
	p.Stock += quantity
	return nil
}

func (f *fakeCatalog) stock(productID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[productID].Stock
}

type fakeOrders struct {
	mu        sync.Mutex
	nextID    uint
	orders    map[uint]*order.Order
	createErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{nextID: 1, orders: make(map[uint]*order.Order)}
}

func (f *fakeOrders) Create(ctx context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	o.ID = f.nextID
	o.OrderNumber = fmt.Sprintf("ORD-20260830-%05d", o.ID)
	f.nextID++
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) Get(ctx context.Context, orderID uint) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) Transition(ctx context.Context, orderID uint, to order.Status, comment string, actor uint) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return nil, order.ErrNotFound
	}
	if !o.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	cp := *o
	return &cp, nil
}

type fakeAddresses struct {
	addresses map[uint]*user.Address // keyed by address ID, owner in struct
}

func (f *fakeAddresses) Get(ctx context.Context, userID, addressID uint) (*user.Address, error) {
	addr, ok := f.addresses[addressID]
	if !ok || addr.UserID != userID {
		return nil, user.ErrAddressNotFound
	}
	return addr, nil
}

type fakeGateway struct {
	intentErr error
	intents   []string
	valid     bool
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	if f.intentErr != nil {
		return "", f.intentErr
	}
	ref := "rzp_order_" + receipt
	f.intents = append(f.intents, ref)
	return ref, nil
}

func (f *fakeGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return f.valid
}

type memoryCartStore struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{carts: make(map[string]*cart.Cart)}
}

func (m *memoryCartStore) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[sessionID]; ok {
		cp := *c
		cp.Items = append([]cart.Item(nil), c.Items...)
		return &cp, nil
	}
	return cart.New(sessionID), nil
}

func (m *memoryCartStore) Save(ctx context.Context, c *cart.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	m.carts[c.SessionID] = &cp
	return nil
}

func (m *memoryCartStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

// --- harness ---

type harness struct {
	service   *Service
	catalog   *fakeCatalog
	orders    *fakeOrders
	carts     *cart.Service
	store     *memoryCartStore
	gateway   *fakeGateway
	addresses *fakeAddresses
}

func newHarness(t *testing.T, products ...*product.Product) *harness {
	t.Helper()

	catalog := newFakeCatalog(products...)
	store := newMemoryCartStore()
	carts := cart.NewService(store, catalog)
	orders := newFakeOrders()
	gateway := &fakeGateway{valid: true}
	addresses := &fakeAddresses{addresses: map[uint]*user.Address{
		1: {ID: 1, UserID: 42, Name: "Asha Rao", Street: "14 MG Road", City: "Bengaluru", State: "Karnataka", ZipCode: "560001"},
	}}

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	engine := pricing.NewEngine(&config.Config{Pricing: config.PricingConfig{
		DeliveryFee:  5000,
		TaxRate:      0.18,
		CODSurcharge: 2000,
		Currency:     "INR",
	}})

	return &harness{
		service:   NewService(catalog, orders, carts, addresses, engine, gateway, nil, logger),
		catalog:   catalog,
		orders:    orders,
		carts:     carts,
		store:     store,
		gateway:   gateway,
		addresses: addresses,
	}
}

func (h *harness) fillCart(t *testing.T, sessionID string, productID uint, quantity int) {
	t.Helper()
	_, err := h.carts.AddItem(context.Background(), sessionID, productID, quantity)
	require.NoError(t, err)
}

func croissant(stock int) *product.Product {
	return &product.Product{ID: 1, Name: "Butter Croissant", Slug: "butter-croissant", Price: 8999, Stock: stock}
}

func codRequest() *PlaceOrderRequest {
	return &PlaceOrderRequest{
		Address:       "Asha Rao, 14 MG Road, Bengaluru, Karnataka 560001",
		PaymentMethod: order.PaymentMethodCOD,
	}
}

// --- tests ---

func TestPlaceOrder_COD(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 2)

	result, err := h.service.PlaceOrder(context.Background(), 42, "asha@example.com", "sess-1", codRequest())
	require.NoError(t, err)

	o := result.Order
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentMethodCOD, o.PaymentMethod)
	assert.Equal(t, int64(17998), o.SubtotalAmount)
	assert.Equal(t, int64(5000), o.DeliveryFee)
	assert.Equal(t, int64(2000), o.CODSurcharge)
	assert.Nil(t, result.Payment)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "Butter Croissant", o.Items[0].Name)
	assert.Equal(t, int64(8999), o.Items[0].Price)
	assert.Equal(t, int64(17998), o.Items[0].TotalPrice)

	// Stock reserved, cart cleared.
	assert.Equal(t, 8, h.catalog.stock(1))
	c, err := h.carts.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestPlaceOrder_OnlineReturnsPaymentSession(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 1)

	req := &PlaceOrderRequest{Address: "22 Park St, Kolkata", PaymentMethod: order.PaymentMethodRazorpay}
	result, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", req)
	require.NoError(t, err)

	assert.Equal(t, order.StatusPaymentPending, result.Order.Status)
	require.NotNil(t, result.Payment)
	assert.Equal(t, result.Order.ID, result.Payment.OrderID)
	assert.Equal(t, result.Order.TotalAmount, result.Payment.Amount)
	assert.NotEmpty(t, result.Payment.GatewayOrderID)
}

func TestPlaceOrder_GatewayIntentFailureStillPlacesOrder(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.gateway.intentErr = errors.New("gateway unreachable")
	h.fillCart(t, "sess-1", 1, 1)

	req := &PlaceOrderRequest{Address: "22 Park St, Kolkata", PaymentMethod: order.PaymentMethodRazorpay}
	result, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", req)
	require.NoError(t, err)

	require.NotNil(t, result.Payment)
	assert.Empty(t, result.Payment.GatewayOrderID)
	assert.Equal(t, order.StatusPaymentPending, result.Order.Status)
}

func TestPlaceOrder_SavedAddress(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 1)

	addressID := uint(1)
	req := &PlaceOrderRequest{AddressID: &addressID, PaymentMethod: order.PaymentMethodCOD}
	result, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", req)
	require.NoError(t, err)

	assert.Equal(t, "Asha Rao, 14 MG Road, Bengaluru, Karnataka 560001", result.Order.ShippingAddress)
}

func TestPlaceOrder_SavedAddressOtherUser(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 1)

	addressID := uint(1)
	req := &PlaceOrderRequest{AddressID: &addressID, PaymentMethod: order.PaymentMethodCOD}
	_, err := h.service.PlaceOrder(context.Background(), 7, "", "sess-1", req)
	assert.ErrorIs(t, err, user.ErrAddressNotFound)
	assert.Equal(t, 10, h.catalog.stock(1))
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	h := newHarness(t, croissant(10))

	_, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", codRequest())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestPlaceOrder_MissingAddress(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 1)

	req := &PlaceOrderRequest{Address: "   ", PaymentMethod: order.PaymentMethodCOD}
	_, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", req)
	assert.ErrorIs(t, err, ErrMissingAddress)
	assert.Equal(t, 10, h.catalog.stock(1))
}

func TestPlaceOrder_InvalidPaymentMethod(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 1)

	req := &PlaceOrderRequest{Address: "somewhere", PaymentMethod: "bank_transfer"}
	_, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", req)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	h := newHarness(t, croissant(5))
	h.fillCart(t, "sess-1", 1, 3)

	// Stock drops between add-to-cart and checkout.
	require.NoError(t, h.catalog.DecrementStock(context.Background(), 1, 4))

	_, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", codRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Butter Croissant", stockErr.Name)
	assert.Equal(t, 3, stockErr.Requested)

	// Untouched: the failed line never decremented.
	assert.Equal(t, 1, h.catalog.stock(1))
}

func TestPlaceOrder_PartialReservationRolledBack(t *testing.T) {
	scone := &product.Product{ID: 2, Name: "Cranberry Scone", Slug: "cranberry-scone", Price: 6500, Stock: 0}
	h := newHarness(t, croissant(10), scone)

	h.fillCart(t, "sess-1", 1, 2)
	// Add the scone directly to the stored cart; the cart service would
	// reject an out-of-stock add, but checkout must still cope with stock
	// that vanished after the add.
	c, err := h.store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	c.Items = append(c.Items, cart.Item{ProductID: 2, Name: "Cranberry Scone", UnitPrice: 6500, Quantity: 1})
	require.NoError(t, h.store.Save(context.Background(), c))

	_, err = h.service.PlaceOrder(context.Background(), 42, "", "sess-1", codRequest())
	assert.ErrorIs(t, err, product.ErrInsufficientStock)

	// The croissant reservation was compensated.
	assert.Equal(t, 10, h.catalog.stock(1))
	assert.Equal(t, 0, h.catalog.stock(2))
}

func TestPlaceOrder_OrderCreateFailureRestoresStock(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 2)
	h.orders.createErr = errors.New("db down")

	_, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", codRequest())
	require.Error(t, err)
	assert.Equal(t, 10, h.catalog.stock(1))

	// Cart survives the failure.
	c, err := h.carts.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, c.IsEmpty())
}

// Two checkouts racing for the last unit: exactly one wins.
func TestPlaceOrder_ConcurrentLastUnit(t *testing.T) {
	h := newHarness(t, croissant(1))
	h.fillCart(t, "sess-a", 1, 1)
	h.fillCart(t, "sess-b", 1, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, sess := range []string{"sess-a", "sess-b"} {
		wg.Add(1)
		go func(i int, sess string) {
			defer wg.Done()
			_, errs[i] = h.service.PlaceOrder(context.Background(), 42, "", sess, codRequest())
		}(i, sess)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, product.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, h.catalog.stock(1))
}

func TestConfirmPayment(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 1)

	req := &PlaceOrderRequest{Address: "22 Park St, Kolkata", PaymentMethod: order.PaymentMethodRazorpay}
	result, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", req)
	require.NoError(t, err)

	verification := &PaymentVerification{
		GatewayOrderID: result.Payment.GatewayOrderID,
		PaymentID:      "pay_123",
		Signature:      "sig",
	}
	o, err := h.service.ConfirmPayment(context.Background(), 42, result.Order.ID, verification)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, o.Status)

	// Re-confirming is a no-op, not an error.
	again, err := h.service.ConfirmPayment(context.Background(), 42, result.Order.ID, verification)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, again.Status)
}

func TestConfirmPayment_BadSignature(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.gateway.valid = false
	h.fillCart(t, "sess-1", 1, 1)

	req := &PlaceOrderRequest{Address: "22 Park St, Kolkata", PaymentMethod: order.PaymentMethodRazorpay}
	result, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", req)
	require.NoError(t, err)

	_, err = h.service.ConfirmPayment(context.Background(), 42, result.Order.ID, &PaymentVerification{
		GatewayOrderID: "x", PaymentID: "y", Signature: "forged",
	})
	assert.ErrorIs(t, err, ErrPaymentVerificationFailed)
}

func TestConfirmPayment_WrongUser(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 1)

	req := &PlaceOrderRequest{Address: "22 Park St, Kolkata", PaymentMethod: order.PaymentMethodRazorpay}
	result, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", req)
	require.NoError(t, err)

	_, err = h.service.ConfirmPayment(context.Background(), 7, result.Order.ID, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestConfirmPayment_CODOrder(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 1)

	result, err := h.service.PlaceOrder(context.Background(), 42, "", "sess-1", codRequest())
	require.NoError(t, err)

	// A COD order starts at pending, not payment_pending.
	_, err = h.service.ConfirmPayment(context.Background(), 42, result.Order.ID, nil)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestGetSummary(t *testing.T) {
	h := newHarness(t, croissant(10))
	h.fillCart(t, "sess-1", 1, 2)

	summary, err := h.service.GetSummary(context.Background(), "sess-1", order.PaymentMethodCOD)
	require.NoError(t, err)
	assert.Equal(t, int64(17998), summary.Quote.Subtotal)
	assert.Equal(t, int64(2000), summary.Quote.CODSurcharge)
	assert.Equal(t, summary.Quote.Subtotal+summary.Quote.DeliveryFee+summary.Quote.TaxAmount+summary.Quote.CODSurcharge, summary.Quote.GrandTotal)
}

func TestGetSummary_EmptyCart(t *testing.T) {
	h := newHarness(t, croissant(10))

	_, err := h.service.GetSummary(context.Background(), "sess-1", order.PaymentMethodCOD)
	assert.ErrorIs(t, err, ErrCartEmpty)
}
