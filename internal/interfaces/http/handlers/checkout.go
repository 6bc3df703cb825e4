// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sweetcrumbs/bakery-backend/internal/domain/checkout"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/user"
	"github.com/sweetcrumbs/bakery-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the checkout endpoints
type CheckoutHandler struct {
	checkout *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc}
}

// GetSummary handles GET /checkout/summary. The payment_method query
// parameter drives the COD surcharge line.
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	sessionID := GetOrCreateSessionID(c)

	method := order.PaymentMethod(c.DefaultQuery("payment_method", string(order.PaymentMethodRazorpay)))

	summary, err := h.checkout.GetSummary(c.Request.Context(), sessionID, method)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrCartEmpty):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
		case errors.Is(err, checkout.ErrInvalidPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid payment method",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to compute checkout summary",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summary,
	})
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}
	email, _ := middleware.GetUserEmailFromContext(c)
	sessionID := GetOrCreateSessionID(c)

	var req checkout.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.checkout.PlaceOrder(c.Request.Context(), userID, email, sessionID, &req)
	if err != nil {
		var stockErr *checkout.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			c.JSON(http.StatusConflict, gin.H{
				"error":      stockErr.Error(),
				"product_id": stockErr.ProductID,
			})
		case errors.Is(err, checkout.ErrCartEmpty):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
		case errors.Is(err, checkout.ErrMissingAddress), errors.Is(err, user.ErrAddressNotFound):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A delivery address is required",
			})
		case errors.Is(err, checkout.ErrInvalidPaymentMethod):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid payment method",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to place order",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}

// ConfirmPayment handles POST /checkout/confirm
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req struct {
		OrderID      uint                          `json:"order_id" binding:"required"`
		Verification *checkout.PaymentVerification `json:"verification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	o, err := h.checkout.ConfirmPayment(c.Request.Context(), userID, req.OrderID, req.Verification)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
		case errors.Is(err, checkout.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Order belongs to another user",
			})
		case errors.Is(err, checkout.ErrPaymentVerificationFailed):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Payment verification failed",
			})
		case errors.Is(err, order.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Order is not awaiting payment",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to confirm payment",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment confirmed",
		"data":    o,
	})
}
