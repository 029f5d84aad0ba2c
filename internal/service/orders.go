package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/craftbay/marketplace-api/internal/apperr"
	"github.com/craftbay/marketplace-api/internal/logging"
	"github.com/craftbay/marketplace-api/internal/models"
	"github.com/craftbay/marketplace-api/internal/store"
)

// OrderEventPublisher publishes order lifecycle events. Publishing is
// best-effort: failures are logged and never surfaced to the API caller.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderDeleted(ctx context.Context, order *models.Order) error
}

// OrderService owns the order lifecycle.
//
// There is no inventory: this is an unlimited-supply marketplace, and order
// creation never decrements stock. The product price read and the order
// write are two separate store calls, so a concurrent price edit can land in
// the new order's total; the store offers no compare-and-set, and pricing is
// not treated as safety-critical here.
type OrderService struct {
	store          store.RecordStore
	orders         store.Table
	catalog        *CatalogService
	publisher      OrderEventPublisher
	publishEnabled bool
	enforceFlow    bool
	logger         *slog.Logger
}

// NewOrderService creates an order service. publisher may be nil when order
// events are disabled. enforceFlow turns on the status adjacency rules;
// when off any vocabulary status may replace any other, matching the
// historical behavior.
func NewOrderService(
	s store.RecordStore,
	tables store.Tables,
	catalog *CatalogService,
	publisher OrderEventPublisher,
	publishEnabled bool,
	enforceFlow bool,
) *OrderService {
	return &OrderService{
		store:          s,
		orders:         tables.Orders,
		catalog:        catalog,
		publisher:      publisher,
		publishEnabled: publishEnabled && publisher != nil,
		enforceFlow:    enforceFlow,
		logger:         logging.New("order-service"),
	}
}

// Create places an order for buyerID. The referenced product must exist;
// productName, sellerId, and totalAmount are snapshotted from it and never
// recomputed, so later product edits or deletes leave past orders intact.
func (s *OrderService) Create(ctx context.Context, buyerID string, req *models.CreateOrderRequest) (*models.Order, error) {
	if req.ProductID == "" {
		return nil, apperr.NewValidationError("productId", "product ID is required")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, apperr.NewValidationError("quantity", "quantity must be positive")
	}

	product, err := s.catalog.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ProductID:   product.ID,
		ProductName: product.Name,
		BuyerID:     buyerID,
		SellerID:    product.SellerID,
		Quantity:    quantity,
		TotalAmount: product.Price * float64(quantity),
		OrderDate:   time.Now().UTC().Format("2006-01-02"),
		Status:      models.OrderStatusPending,
	}

	rec, err := s.store.Create(ctx, s.orders, models.OrderFields(order))
	if err != nil {
		s.logger.Error("failed to create order", "buyer_id", buyerID, "error", err.Error())
		return nil, err
	}
	order.ID = rec.ID

	s.publish(ctx, func() error { return s.publisher.PublishOrderCreated(ctx, order) }, order.ID)

	s.logger.Info("order created",
		"order_id", order.ID,
		"buyer_id", buyerID,
		"seller_id", order.SellerID,
		"total", order.TotalAmount,
	)
	return order, nil
}

// GetByID fetches one order.
func (s *OrderService) GetByID(ctx context.Context, id string) (*models.Order, error) {
	rec, err := s.store.GetByID(ctx, s.orders, id)
	if err != nil {
		return nil, err
	}
	return models.OrderFromFields(rec.ID, rec.Fields), nil
}

// ListAll returns every order.
func (s *OrderService) ListAll(ctx context.Context) ([]*models.Order, error) {
	records, err := s.store.List(ctx, s.orders, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	return ordersFromRecords(records), nil
}

// Update applies a partial update. A status value outside the vocabulary is
// rejected before anything is written, so the stored status never changes on
// a bad request. With flow enforcement on, the update must also follow the
// Pending -> Processing -> Completed adjacency (Cancelled reachable from
// Pending or Processing; Completed and Cancelled terminal).
func (s *OrderService) Update(ctx context.Context, id string, req *models.UpdateOrderRequest) (*models.Order, error) {
	var newStatus models.OrderStatus
	if req.Status != nil {
		parsed, ok := models.ParseStatus(*req.Status)
		if !ok {
			return nil, apperr.NewValidationError("status", "invalid order status")
		}
		newStatus = parsed
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, apperr.NewValidationError("quantity", "quantity must be positive")
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if newStatus != "" && s.enforceFlow && newStatus != current.Status {
		if !current.Status.CanTransition(newStatus) {
			return nil, apperr.NewValidationError("status", fmt.Sprintf(
				"invalid status transition from %s to %s", current.Status, newStatus,
			))
		}
	}

	fields := make(map[string]any)
	if newStatus != "" {
		fields["status"] = string(newStatus)
	}
	if req.Quantity != nil {
		fields["quantity"] = *req.Quantity
	}
	if req.TotalAmount != nil {
		fields["totalAmount"] = *req.TotalAmount
	}

	rec, err := s.store.Update(ctx, s.orders, id, fields)
	if err != nil {
		return nil, err
	}
	order := models.OrderFromFields(rec.ID, rec.Fields)

	if newStatus != "" && newStatus != current.Status {
		s.publish(ctx, func() error {
			return s.publisher.PublishOrderStatusChanged(ctx, order, current.Status)
		}, order.ID)
	}

	s.logger.Info("order updated", "order_id", id, "status", order.Status)
	return order, nil
}

// Delete removes an order. Not idempotent: a second delete on the same id
// reports NotFound. Deletion never cascades to the product.
func (s *OrderService) Delete(ctx context.Context, id string) (*models.Order, error) {
	rec, err := s.store.Delete(ctx, s.orders, id)
	if err != nil {
		return nil, err
	}
	order := models.OrderFromFields(rec.ID, rec.Fields)

	s.publish(ctx, func() error { return s.publisher.PublishOrderDeleted(ctx, order) }, order.ID)

	s.logger.Info("order deleted", "order_id", id)
	return order, nil
}

// ListByBuyer returns the buyer's orders; empty slice on zero matches.
func (s *OrderService) ListByBuyer(ctx context.Context, buyerID string) ([]*models.Order, error) {
	records, err := s.store.FilterByField(ctx, s.orders, "buyerId", buyerID)
	if err != nil {
		return nil, err
	}
	return ordersFromRecords(records), nil
}

// ListBySeller returns the seller's orders; empty slice on zero matches.
func (s *OrderService) ListBySeller(ctx context.Context, sellerID string) ([]*models.Order, error) {
	records, err := s.store.FilterByField(ctx, s.orders, "sellerId", sellerID)
	if err != nil {
		return nil, err
	}
	return ordersFromRecords(records), nil
}

// ListByStatus returns orders in the given status, rejecting values outside
// the vocabulary. The filter runs in-process over the full listing.
// TODO(TEAM-ORDERS): push the status filter down to the store once the
// gateway grows a second equality predicate.
func (s *OrderService) ListByStatus(ctx context.Context, status string) ([]*models.Order, error) {
	parsed, ok := models.ParseStatus(status)
	if !ok {
		return nil, apperr.NewValidationError("status", "invalid status parameter")
	}

	orders, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Order, 0)
	for _, o := range orders {
		if o.Status == parsed {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

func (s *OrderService) publish(ctx context.Context, fn func() error, orderID string) {
	if !s.publishEnabled {
		return
	}
	if err := fn(); err != nil {
		s.logger.Error("failed to publish order event", "order_id", orderID, "error", err.Error())
	}
}

func ordersFromRecords(records []*store.Record) []*models.Order {
	orders := make([]*models.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, models.OrderFromFields(rec.ID, rec.Fields))
	}
	return orders
}
