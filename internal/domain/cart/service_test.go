// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
)

type stubCatalog struct {
	products map[uint]*product.Product
}

func (s *stubCatalog) Get(ctx context.Context, productID uint) (*product.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type mapStore struct {
	carts map[string]*Cart
}

func newMapStore() *mapStore {
	return &mapStore{carts: make(map[string]*Cart)}
}

func (m *mapStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if c, ok := m.carts[sessionID]; ok {
		return c, nil
	}
	return New(sessionID), nil
}

func (m *mapStore) Save(ctx context.Context, c *Cart) error {
	m.carts[c.SessionID] = c
	return nil
}

func (m *mapStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

func newTestService(products ...*product.Product) (*Service, *stubCatalog) {
	catalog := &stubCatalog{products: make(map[uint]*product.Product)}
	for _, p := range products {
		catalog.products[p.ID] = p
	}
	return NewService(newMapStore(), catalog), catalog
}

func sourdough(stock int) *product.Product {
	return &product.Product{ID: 1, Name: "Sourdough Loaf", Slug: "sourdough-loaf", Price: 24999, Stock: stock}
}

func TestAddItem(t *testing.T) {
	svc, _ := newTestService(sourdough(10))

	c, err := svc.AddItem(context.Background(), "sess", 1, 2)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, "Sourdough Loaf", c.Items[0].Name)
	assert.Equal(t, int64(24999), c.Items[0].UnitPrice)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, int64(49998), c.Subtotal())
	assert.Equal(t, 2, c.ItemCount())
}

func TestAddItemMergesLines(t *testing.T) {
	svc, _ := newTestService(sourdough(10))

	_, err := svc.AddItem(context.Background(), "sess", 1, 2)
	require.NoError(t, err)
	c, err := svc.AddItem(context.Background(), "sess", 1, 3)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAddItemMergedQuantityOverStock(t *testing.T) {
	svc, _ := newTestService(sourdough(5))

	_, err := svc.AddItem(context.Background(), "sess", 1, 3)
	require.NoError(t, err)

	// 3 already in cart; adding 3 more would exceed stock of 5.
	_, err = svc.AddItem(context.Background(), "sess", 1, 3)
	assert.ErrorIs(t, err, ErrOutOfStock)

	c, err := svc.Get(context.Background(), "sess")
	require.NoError(t, err)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestAddItemSnapshotsPriceOnce(t *testing.T) {
	svc, catalog := newTestService(sourdough(10))

	_, err := svc.AddItem(context.Background(), "sess", 1, 1)
	require.NoError(t, err)

	// Price change after the first add must not touch the cart line.
	catalog.products[1].Price = 29999
	catalog.products[1].Name = "Sourdough Loaf (Large)"

	c, err := svc.AddItem(context.Background(), "sess", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(24999), c.Items[0].UnitPrice)
	assert.Equal(t, "Sourdough Loaf", c.Items[0].Name)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "sess", 99, 1)
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestAddItemInvalidQuantity(t *testing.T) {
	svc, _ := newTestService(sourdough(10))

	_, err := svc.AddItem(context.Background(), "sess", 1, 0)
	assert.Error(t, err)
	_, err = svc.AddItem(context.Background(), "sess", 1, -2)
	assert.Error(t, err)
}

func TestUpdateQuantity(t *testing.T) {
	svc, _ := newTestService(sourdough(10))
	_, err := svc.AddItem(context.Background(), "sess", 1, 2)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(context.Background(), "sess", 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Items[0].Quantity)
}

func TestUpdateQuantityOverStock(t *testing.T) {
	svc, _ := newTestService(sourdough(5))
	_, err := svc.AddItem(context.Background(), "sess", 1, 2)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(context.Background(), "sess", 1, 6)
	assert.ErrorIs(t, err, ErrOutOfStock)

	c, err := svc.Get(context.Background(), "sess")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	svc, _ := newTestService(sourdough(10))
	_, err := svc.AddItem(context.Background(), "sess", 1, 2)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(context.Background(), "sess", 1, 0)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	svc, _ := newTestService(sourdough(10))

	_, err := svc.UpdateQuantity(context.Background(), "sess", 1, 2)
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestService(sourdough(10))
	_, err := svc.AddItem(context.Background(), "sess", 1, 2)
	require.NoError(t, err)

	c, removed, err := svc.RemoveItem(context.Background(), "sess", 1)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.True(t, c.IsEmpty())

	// Removing again is a silent no-op.
	_, removed, err = svc.RemoveItem(context.Background(), "sess", 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestClear(t *testing.T) {
	svc, _ := newTestService(sourdough(10))
	_, err := svc.AddItem(context.Background(), "sess", 1, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "sess"))

	c, err := svc.Get(context.Background(), "sess")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
