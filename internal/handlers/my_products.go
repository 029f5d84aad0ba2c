package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/middleware"
	"github.com/craftbay/marketplace-api/internal/models"
)

// The my-products routes mirror the product routes scoped to the
// authenticated seller. Cross-owner access reports 404, never 403.

// ListMyProducts handles GET /api/my-products
func (h *Handlers) ListMyProducts(c *gin.Context) {
	products, err := h.catalog.ListBySeller(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// CreateMyProduct handles POST /api/my-products
func (h *Handlers) CreateMyProduct(c *gin.Context) {
	h.CreateProduct(c)
}

// GetMyProduct handles GET /api/my-products/:id
func (h *Handlers) GetMyProduct(c *gin.Context) {
	product, err := h.catalog.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	if product.SellerID != middleware.CallerID(c) {
		h.handleError(c, apperr.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateMyProduct handles PUT /api/my-products/:id
func (h *Handlers) UpdateMyProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.Update(c.Request.Context(), c.Param("id"), middleware.CallerID(c), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteMyProduct handles DELETE /api/my-products/:id
func (h *Handlers) DeleteMyProduct(c *gin.Context) {
	_, err := h.catalog.Delete(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
