// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
	"github.com/sweetcrumbs/bakery-backend/internal/interfaces/http/middleware"
	"github.com/sweetcrumbs/bakery-backend/internal/pkg/pdf"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders *order.Service
	pdf    *pdf.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, pdfService *pdf.Service) *OrderHandler {
	return &OrderHandler{orders: orders, pdf: pdfService}
}

// ListOrders handles GET /orders (the caller's own orders)
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	resp, err := h.orders.ListByUser(c.Request.Context(), userID, req.Page, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": o,
	})
}

// CancelOrder handles PUT /orders/:id/cancel. Cancelling restores the
// reserved stock.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "Cancelled by customer"
	}

	cancelled, err := h.orders.Cancel(c.Request.Context(), o.ID, req.Reason, userID)
	if err != nil {
		if errors.Is(err, order.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order can no longer be cancelled",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to cancel order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled",
		"data":    cancelled,
	})
}

// GetInvoice handles GET /orders/:id/invoice, streaming a PDF
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	o, ok := h.loadOwnedOrder(c)
	if !ok {
		return
	}

	buf, err := h.pdf.GenerateInvoice(o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate invoice",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, o.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// loadOwnedOrder fetches the order in the :id parameter and enforces that it
// belongs to the caller (admins may read any order).
func (h *OrderHandler) loadOwnedOrder(c *gin.Context) (*order.Order, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return nil, false
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	o, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve order",
		})
		return nil, false
	}

	if o.UserID != userID && !middleware.IsAdminFromContext(c) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
		return nil, false
	}
	return o, true
}

// AdminListOrders handles GET /admin/orders with status and user filters
func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	resp, err := h.orders.List(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// AdminUpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status  order.Status `json:"status" binding:"required"`
		Comment string       `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Unknown status %q", req.Status),
		})
		return
	}

	o, err := h.orders.Transition(c.Request.Context(), orderID, req.Status, req.Comment, adminID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, order.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update order status",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"data":    o,
	})
}
