// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sweetcrumbs/bakery-backend/internal/domain/analytics"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/user"
	"github.com/sweetcrumbs/bakery-backend/internal/interfaces/http/middleware"
)

// AdminHandler handles the admin dashboard and user management endpoints
type AdminHandler struct {
	analytics *analytics.Service
	users     *user.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(analyticsService *analytics.Service, users *user.Service) *AdminHandler {
	return &AdminHandler{analytics: analyticsService, users: users}
}

// GetDashboard handles GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute dashboard statistics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// GetRevenueSeries handles GET /admin/dashboard/revenue?days=30
func (h *AdminHandler) GetRevenueSeries(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	series, err := h.analytics.RevenueSeries(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute revenue series",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": series,
	})
}

// GetTopProducts handles GET /admin/dashboard/top-products?limit=5
func (h *AdminHandler) GetTopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	products, err := h.analytics.TopProducts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute top products",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
	})
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": users,
	})
}

// ToggleAdmin handles PUT /admin/users/:id/toggle-admin. Admins cannot
// demote themselves.
func (h *AdminHandler) ToggleAdmin(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	u, err := h.users.ToggleAdmin(actorID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
		case errors.Is(err, user.ErrSelfDemotion):
			c.JSON(http.StatusConflict, gin.H{
				"error": "You cannot change your own admin status",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update user",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated successfully",
		"data":    u,
	})
}
