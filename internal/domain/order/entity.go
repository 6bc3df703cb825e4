// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"time"
)

// Status represents the order status
type Status string

const (
	StatusPending        Status = "pending"         // COD order placed, awaiting confirmation
	StatusPaymentPending Status = "payment_pending" // online order awaiting payment confirmation
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
)

// PaymentMethod represents how the customer pays
type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCOD      PaymentMethod = "cash_on_delivery"
)

// ErrInvalidTransition is returned for status changes the state machine
// does not allow.
var ErrInvalidTransition = errors.New("invalid order status transition")

// ErrNotFound is returned when an order lookup misses.
var ErrNotFound = errors.New("order not found")

// Valid reports whether the payment method is one we accept.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodRazorpay || m == PaymentMethodCOD
}

// IsOnline reports whether the method requires gateway payment confirmation.
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodRazorpay
}

// InitialStatus returns the status a freshly placed order starts in for the
// given payment method.
func InitialStatus(method PaymentMethod) Status {
	if method.IsOnline() {
		return StatusPaymentPending
	}
	return StatusPending
}

// validTransitions is the allowed status graph. Cancellation is reachable
// from every non-terminal status.
var validTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusPaymentPending: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaymentPending, StatusConfirmed, StatusPreparing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether the state machine allows moving from s to to.
func (s Status) CanTransition(to Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Order represents a placed order. Items are immutable after creation; only
// the status (and UpdatedAt) changes afterwards, via validated transitions.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Status        Status        `gorm:"not null;default:'pending'" json:"status"`
	PaymentMethod PaymentMethod `gorm:"not null;size:50" json:"payment_method"`

	// Financial information, all in paise. TotalAmount is computed once by
	// the pricing engine at placement time and never re-derived.
	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"`
	DeliveryFee    int64 `gorm:"default:0" json:"delivery_fee"`
	TaxAmount      int64 `gorm:"default:0" json:"tax_amount"`
	CODSurcharge   int64 `gorm:"default:0" json:"cod_surcharge"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	// ShippingAddress is denormalized to a single string at placement time.
	ShippingAddress string `gorm:"not null;size:500" json:"shipping_address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items         []Item          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// Item is a denormalized order line. Price is captured at order time, so
// historical orders are immune to later catalog price changes.
type Item struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	Price      int64     `gorm:"not null" json:"price"`       // unit price at order time
	TotalPrice int64     `gorm:"not null" json:"total_price"` // Quantity * Price
	CreatedAt  time.Time `json:"created_at"`
}

// StatusHistory records every status an order has passed through.
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedBy uint      `gorm:"index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (Item) TableName() string          { return "order_items" }
func (StatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber generates the order number for a persisted order.
func (o *Order) GenerateOrderNumber() string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), o.ID)
}

// CanBeCancelled reports whether the order is still cancellable.
func (o *Order) CanBeCancelled() bool {
	return !o.Status.IsTerminal()
}
