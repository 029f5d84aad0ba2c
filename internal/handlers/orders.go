package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftbay/marketplace-api/internal/middleware"
	"github.com/craftbay/marketplace-api/internal/models"
)

// ListOrders handles GET /api/orders. The response wraps the list in a data
// envelope, unlike the other list endpoints; existing clients depend on it.
func (h *Handlers) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// GetOrder handles GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CreateOrder handles POST /api/orders. The authenticated caller is the
// buyer; quantity defaults to 1.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orders.Create(c.Request.Context(), middleware.CallerID(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// UpdateOrder handles PUT /api/orders/:id
func (h *Handlers) UpdateOrder(c *gin.Context) {
	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orders.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/orders/:id
func (h *Handlers) DeleteOrder(c *gin.Context) {
	order, err := h.orders.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order deleted successfully",
		"order":   order,
	})
}

// ListOrdersByBuyer handles GET /api/orders/buyer/:buyerId
func (h *Handlers) ListOrdersByBuyer(c *gin.Context) {
	orders, err := h.orders.ListByBuyer(c.Request.Context(), c.Param("buyerId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ListOrdersBySeller handles GET /api/orders/seller/:sellerId
func (h *Handlers) ListOrdersBySeller(c *gin.Context) {
	orders, err := h.orders.ListBySeller(c.Request.Context(), c.Param("sellerId"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ListOrdersByStatus handles GET /api/orders/status?status=x
func (h *Handlers) ListOrdersByStatus(c *gin.Context) {
	orders, err := h.orders.ListByStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}
