// internal/interfaces/http/handlers/category.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
	"github.com/sweetcrumbs/bakery-backend/internal/interfaces/http/middleware"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	categories *product.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *product.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// GetCategories handles GET /categories. Customers see active categories
// only; admins see everything.
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	activeOnly := !middleware.IsAdminFromContext(c)

	categories, err := h.categories.List(activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": categories,
	})
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categories.Get(categoryID)
	if err != nil {
		if errors.Is(err, product.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Category not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve category",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": category,
	})
}

// CreateCategory handles POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req product.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	category, err := h.categories.Create(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Category created successfully",
		"data":    category,
	})
}

// UpdateCategory handles PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req product.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	category, err := h.categories.Update(categoryID, &req)
	if err != nil {
		if errors.Is(err, product.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Category not found",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category updated successfully",
		"data":    category,
	})
}

// ToggleCategoryActive handles PUT /admin/categories/:id/toggle. Inactive
// categories are hidden from the storefront but keep their products.
func (h *CategoryHandler) ToggleCategoryActive(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.categories.ToggleActive(categoryID)
	if err != nil {
		if errors.Is(err, product.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Category not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update category",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category updated successfully",
		"data":    category,
	})
}

// DeleteCategory handles DELETE /admin/categories/:id. Categories with
// products cannot be removed.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(categoryID); err != nil {
		switch {
		case errors.Is(err, product.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Category not found",
			})
		case errors.Is(err, product.ErrCategoryHasProducts):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Category still has products",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete category",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}
