// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by cart operations.
var (
	ErrOutOfStock   = errors.New("requested quantity exceeds available stock")
	ErrLineNotFound = errors.New("item not in cart")
)

// Item is one cart line. UnitPrice and Name are snapshotted from the catalog
// when the line is first created and never refreshed afterwards, so the cart
// reflects price-at-add-time.
type Item struct {
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// Total returns the line total in paise.
func (i Item) Total() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// Cart is the session-scoped shopping cart value object. It is serialized
// as a whole to the session store; it holds no references to live catalog
// state beyond the snapshots in its lines.
type Cart struct {
	SessionID string    `json:"session_id"`
	UserID    *uint     `json:"user_id,omitempty"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an empty cart for the given session.
func New(sessionID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		SessionID: sessionID,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Subtotal returns the sum of quantity x unit price over all lines.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Total()
	}
	return total
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Line returns a pointer to the line for productID, or nil.
func (c *Cart) Line(productID uint) *Item {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// removeLine deletes the line for productID, reporting whether one existed.
func (c *Cart) removeLine(productID uint) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}
