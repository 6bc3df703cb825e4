// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
)

// Catalog is the slice of the catalog store the cart needs for stock and
// price lookups.
type Catalog interface {
	Get(ctx context.Context, productID uint) (*product.Product, error)
}

// Service handles cart business logic
type Service struct {
	store   Store
	catalog Catalog
}

// NewService creates a new cart service
func NewService(store Store, catalog Catalog) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
	}
}

// Get retrieves the cart for a session.
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	return s.store.Load(ctx, sessionID)
}

// AddItem adds quantity of a product to the cart, merging into an existing
// line. The merged line quantity is validated against live catalog stock.
// Price and name are snapshotted only when the line is first created.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID uint, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	prod, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := quantity
	if line := c.Line(productID); line != nil {
		merged += line.Quantity
	}
	if !prod.InStock(merged) {
		return nil, fmt.Errorf("%w: %d available for %s", ErrOutOfStock, prod.Stock, prod.Name)
	}

	if line := c.Line(productID); line != nil {
		line.Quantity = merged
	} else {
		c.Items = append(c.Items, Item{
			ProductID: productID,
			Name:      prod.Name,
			UnitPrice: prod.Price,
			Quantity:  quantity,
			AddedAt:   time.Now().UTC(),
		})
	}

	c.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateQuantity overwrites the quantity of a cart line. A quantity of zero
// or less removes the line; a quantity exceeding live stock fails leaving the
// cart unchanged.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID uint, quantity int) (*Cart, error) {
	if quantity <= 0 {
		c, _, err := s.RemoveItem(ctx, sessionID, productID)
		return c, err
	}

	prod, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line := c.Line(productID)
	if line == nil {
		return nil, ErrLineNotFound
	}
	if !prod.InStock(quantity) {
		return nil, fmt.Errorf("%w: %d available for %s", ErrOutOfStock, prod.Stock, prod.Name)
	}

	line.Quantity = quantity
	c.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem deletes a cart line. Removing a line that does not exist is a
// no-op; the boolean reports whether a line was actually removed.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID uint) (*Cart, bool, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	removed := c.removeLine(productID)
	if removed {
		c.UpdatedAt = time.Now().UTC()
		if err := s.store.Save(ctx, c); err != nil {
			return nil, false, err
		}
	}
	return c, removed, nil
}

// Clear empties the cart, called after a successful checkout or on logout.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
