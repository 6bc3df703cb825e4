// internal/domain/product/category_service.go
package product

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"gorm.io/gorm"
)

// ErrCategoryNotFound is returned when a category lookup misses.
var ErrCategoryNotFound = errors.New("category not found")

// ErrCategoryHasProducts is returned when deleting a category that still
// contains products.
var ErrCategoryHasProducts = errors.New("category still contains products")

// CategoryService handles category management
type CategoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:     db,
		config: cfg,
	}
}

// CreateCategoryRequest represents category creation data
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// UpdateCategoryRequest represents category update data
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	IsActive    *bool   `json:"is_active"`
}

// List retrieves all categories
func (s *CategoryService) List(activeOnly bool) ([]Category, error) {
	tx := s.db.Model(&Category{})
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}

	var categories []Category
	if err := tx.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Get retrieves a single category by ID
func (s *CategoryService) Get(categoryID uint) (*Category, error) {
	var category Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to retrieve category: %w", err)
	}
	return &category, nil
}

// Create creates a new category with a unique, case-insensitive name
func (s *CategoryService) Create(req *CreateCategoryRequest) (*Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("category name is required")
	}

	var existing Category
	err := s.db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("category %q already exists", name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}

	category := Category{
		Name:        name,
		Slug:        Slugify(name),
		Description: strings.TrimSpace(req.Description),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		IsActive:    true,
	}

	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// Update updates an existing category
func (s *CategoryService) Update(categoryID uint, req *UpdateCategoryRequest) (*Category, error) {
	category, err := s.Get(categoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("category name is required")
		}

		var existing Category
		err := s.db.Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), categoryID).First(&existing).Error
		if err == nil {
			return nil, fmt.Errorf("category %q already exists", name)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check category name: %w", err)
		}

		updates["name"] = name
		updates["slug"] = Slugify(name)
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// ToggleActive flips the active flag for a category
func (s *CategoryService) ToggleActive(categoryID uint) (*Category, error) {
	category, err := s.Get(categoryID)
	if err != nil {
		return nil, err
	}

	category.IsActive = !category.IsActive
	if err := s.db.Model(category).Update("is_active", category.IsActive).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle category status: %w", err)
	}
	return category, nil
}

// Delete removes a category; fails with ErrCategoryHasProducts when products
// are still assigned to it.
func (s *CategoryService) Delete(categoryID uint) error {
	category, err := s.Get(categoryID)
	if err != nil {
		return err
	}

	var productCount int64
	if err := s.db.Model(&Product{}).Where("category_id = ?", categoryID).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if productCount > 0 {
		return fmt.Errorf("%w: %d products assigned", ErrCategoryHasProducts, productCount)
	}

	if err := s.db.Delete(category).Error; err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
