package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/config"
	"github.com/craftbay/marketplace-api/internal/logging"
	"github.com/craftbay/marketplace-api/internal/service"
)

// Handlers holds all HTTP handlers for the marketplace API.
type Handlers struct {
	identity *service.IdentityService
	catalog  *service.CatalogService
	orders   *service.OrderService
	config   *config.Config
	logger   *slog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	identity *service.IdentityService,
	catalog *service.CatalogService,
	orders *service.OrderService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		identity: identity,
		catalog:  catalog,
		orders:   orders,
		config:   cfg,
		logger:   logging.New("handlers"),
	}
}

// handleError translates service errors to HTTP responses. Store failures
// become a generic 500; the underlying cause is logged, and echoed only in
// development mode.
func (h *Handlers) handleError(c *gin.Context, err error) {
	var validationErr *apperr.ValidationError
	var storeErr *apperr.StoreError

	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})

	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})

	case errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})

	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})

	case errors.As(err, &storeErr):
		h.logger.Error("store failure", "op", storeErr.Op, "table", storeErr.Table, "error", storeErr.Err.Error())
		if h.config.IsDevelopment() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal server error",
				"details": storeErr.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})

	default:
		h.logger.Error("unhandled error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
