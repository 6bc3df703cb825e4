// internal/domain/analytics/service.go

// Package analytics computes admin dashboard statistics.
package analytics

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
)

// Service computes store statistics from the order and catalog tables.
type Service struct {
	db *gorm.DB
}

// NewService creates a new analytics service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DashboardStats is the admin dashboard summary. Revenue excludes cancelled
// and unpaid orders.
type DashboardStats struct {
	TotalOrders     int64          `json:"total_orders"`
	PendingOrders   int64          `json:"pending_orders"`
	DeliveredOrders int64          `json:"delivered_orders"`
	TotalRevenue    int64          `json:"total_revenue"` // paise
	TotalCustomers  int64          `json:"total_customers"`
	TotalProducts   int64          `json:"total_products"`
	RecentOrders    []order.Order  `json:"recent_orders"`
	OrdersByStatus  map[string]int `json:"orders_by_status"`
}

// revenueStatuses are the statuses that count toward revenue: the order was
// paid for (or will be, for in-flight COD) and not cancelled.
var revenueStatuses = []order.Status{
	order.StatusConfirmed,
	order.StatusPreparing,
	order.StatusOutForDelivery,
	order.StatusDelivered,
}

// Dashboard computes the full dashboard summary.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{OrdersByStatus: make(map[string]int)}
	db := s.db.WithContext(ctx)

	if err := db.Model(&order.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int
	}
	var counts []statusCount
	if err := db.Model(&order.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	for _, c := range counts {
		stats.OrdersByStatus[c.Status] = c.Count
		switch order.Status(c.Status) {
		case order.StatusPending, order.StatusPaymentPending:
			stats.PendingOrders += int64(c.Count)
		case order.StatusDelivered:
			stats.DeliveredOrders = int64(c.Count)
		}
	}

	if err := db.Model(&order.Order{}).
		Where("status IN ?", revenueStatuses).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	if err := db.Table("users").Where("is_admin = ?", false).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := db.Table("products").Where("deleted_at IS NULL").Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if err := db.Preload("Items").
		Order("created_at DESC").
		Limit(10).
		Find(&stats.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}

	return stats, nil
}

// RevenuePoint is one day of revenue for the sales chart.
type RevenuePoint struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

// RevenueSeries returns per-day revenue for the trailing N days.
func (s *Service) RevenueSeries(ctx context.Context, days int) ([]RevenuePoint, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	var points []RevenuePoint
	err := s.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("DATE(created_at) as date, COALESCE(SUM(total_amount), 0) as revenue, COUNT(*) as orders").
		Where("created_at >= ? AND status IN ?", since, revenueStatuses).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue series: %w", err)
	}
	return points, nil
}

// TopProduct is a product ranked by units sold.
type TopProduct struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int    `json:"units_sold"`
	Revenue   int64  `json:"revenue"`
}

// TopProducts returns the best-selling products across non-cancelled orders.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 5
	}

	var products []TopProduct
	err := s.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.product_id, order_items.name, SUM(order_items.quantity) as units_sold, SUM(order_items.total_price) as revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status IN ?", revenueStatuses).
		Group("order_items.product_id, order_items.name").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute top products: %w", err)
	}
	return products, nil
}
