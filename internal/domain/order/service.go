// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
	"gorm.io/gorm"
)

// Service is the gorm-backed order store.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListRequest represents admin order list query parameters
type ListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Status Status `form:"status"`
	UserID uint   `form:"user_id"`
}

// ListResponse represents an order page with pagination info
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Create persists a new order with its items, assigns the order number and
// records the initial status history entry. The caller has already decremented
// stock; persistence happens in one transaction.
func (s *Service) Create(ctx context.Context, o *Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		o.OrderNumber = o.GenerateOrderNumber()
		if err := tx.Model(o).Update("order_number", o.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to set order number: %w", err)
		}

		history := StatusHistory{
			OrderID:   o.ID,
			Status:    o.Status,
			Comment:   "Order placed",
			CreatedBy: o.UserID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		return nil
	})
}

// Get retrieves a single order with items and status history.
func (s *Service) Get(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	result := s.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&o, orderID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &o, nil
}

// ListByUser retrieves a user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uint, page, limit int) (*ListResponse, error) {
	return s.List(ctx, &ListRequest{Page: page, Limit: limit, UserID: userID})
}

// List retrieves orders with filtering and pagination (admin and per-user).
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{}).Preload("Items")
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Transition moves an order to a new status, enforcing the state machine.
// Transitioning to cancelled restores stock for every line in the same
// transaction, keeping the stock/order coupling intact in both directions.
func (s *Service) Transition(ctx context.Context, orderID uint, to Status, comment string, actor uint) (*Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	var o Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		if !o.Status.CanTransition(to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
		}

		if to == StatusCancelled {
			for _, item := range o.Items {
				result := tx.Model(&product.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity))
				if result.Error != nil {
					return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, result.Error)
				}
			}
		}

		now := time.Now().UTC()
		if err := tx.Model(&o).Updates(map[string]interface{}{
			"status":     to,
			"updated_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		o.Status = to
		o.UpdatedAt = now

		history := StatusHistory{
			OrderID:   orderID,
			Status:    to,
			Comment:   comment,
			CreatedBy: actor,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Cancel cancels an order, restoring stock.
func (s *Service) Cancel(ctx context.Context, orderID uint, reason string, actor uint) (*Order, error) {
	comment := "Order cancelled"
	if reason != "" {
		comment = fmt.Sprintf("Order cancelled: %s", reason)
	}
	return s.Transition(ctx, orderID, StatusCancelled, comment, actor)
}
