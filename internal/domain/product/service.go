// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by the catalog store.
var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateProductRequest represents admin product creation data
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=0"`
	CategoryID  uint   `json:"category_id" binding:"required"`
	ImageURL    string `json:"image_url"`
	Stock       int    `json:"stock" binding:"min=0"`
}

// UpdateProductRequest represents admin product update data
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price"`
	CategoryID  *uint   `json:"category_id"`
	ImageURL    *string `json:"image_url"`
	Stock       *int    `json:"stock"`
}

// Get retrieves a single product by ID
func (s *Service) Get(ctx context.Context, productID uint) (*Product, error) {
	var prod Product
	result := s.db.WithContext(ctx).Preload("Category").First(&prod, productID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// GetBySlug retrieves a single product by slug
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	var prod Product
	result := s.db.WithContext(ctx).Preload("Category").Where("slug = ?", slug).First(&prod)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", result.Error)
	}
	return &prod, nil
}

// Search retrieves products filtered by a free-text query and/or category slug.
// The query matches name and description case-insensitively; an empty query
// with category "all" (or "") returns the full catalog.
func (s *Service) Search(ctx context.Context, query, categorySlug string) ([]Product, error) {
	tx := s.db.WithContext(ctx).Model(&Product{}).Preload("Category")

	if categorySlug != "" && categorySlug != "all" {
		tx = tx.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}

	var products []Product
	if err := tx.Order("products.created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// List retrieves all products
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.db.WithContext(ctx).Preload("Category").Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Create creates a new product (admin)
func (s *Service) Create(req *CreateProductRequest) (*Product, error) {
	var category Category
	if err := s.db.First(&category, req.CategoryID).Error; err != nil {
		return nil, fmt.Errorf("category %d not found", req.CategoryID)
	}

	prod := Product{
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	}

	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &prod, nil
}

// Update updates an existing product (admin)
func (s *Service) Update(productID uint, req *UpdateProductRequest) (*Product, error) {
	var prod Product
	if err := s.db.First(&prod, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = Slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("price must be non-negative")
		}
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("stock must be non-negative")
		}
		updates["stock"] = *req.Stock
	}

	if err := s.db.Model(&prod).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &prod, nil
}

// Delete removes a product; associated reviews are deleted with it.
func (s *Service) Delete(productID uint) error {
	var prod Product
	if err := s.db.First(&prod, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to retrieve product: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete product reviews: %w", err)
		}
		if err := tx.Delete(&prod).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
}

// SetStock overwrites the stock level for a product (admin)
func (s *Service) SetStock(productID uint, stock int) error {
	if stock < 0 {
		return fmt.Errorf("stock must be non-negative")
	}
	result := s.db.Model(&Product{}).Where("id = ?", productID).Update("stock", stock)
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock atomically decrements stock for a product, guarded so two
// concurrent checkouts cannot both succeed against insufficient shared stock.
// Returns ErrInsufficientStock when the guard fails.
func (s *Service) DecrementStock(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	result := s.db.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing product from an out-of-stock one.
		var count int64
		if err := s.db.WithContext(ctx).Model(&Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check product existence: %w", err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock adds quantity back to a product's stock, used when a checkout
// is rolled back or an order is cancelled.
func (s *Service) RestoreStock(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}

	result := s.db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restore stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Slugify converts a product or category name to a URL-friendly slug
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
