package models

import "strings"

// OrderStatus is the order lifecycle state. The capitalized forms below are
// canonical everywhere: the store, the API responses, and the event stream.
// The API boundary accepts any casing and normalizes through ParseStatus.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// ParseStatus normalizes a caller-supplied status to its canonical form.
// Returns false for anything outside the vocabulary.
func ParseStatus(s string) (OrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return OrderStatusPending, true
	case "processing":
		return OrderStatusProcessing, true
	case "completed":
		return OrderStatusCompleted, true
	case "cancelled":
		return OrderStatusCancelled, true
	}
	return "", false
}

// CanTransition reports whether to is reachable from s in one step.
// Completed and Cancelled are terminal.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	allowed, ok := statusTransitions[s]
	if !ok {
		return false
	}
	for _, next := range allowed {
		if next == to {
			return true
		}
	}
	return false
}

var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// Order records a purchase. ProductName, SellerID, and TotalAmount are
// snapshots taken from the product at creation time; later product edits or
// deletes never change a past order.
type Order struct {
	ID          string      `json:"id"`
	ProductID   string      `json:"productId"`
	ProductName string      `json:"productName"`
	BuyerID     string      `json:"buyerId"`
	SellerID    string      `json:"sellerId"`
	Quantity    int         `json:"quantity"`
	TotalAmount float64     `json:"totalAmount"`
	OrderDate   string      `json:"orderDate"` // date-only, YYYY-MM-DD
	Status      OrderStatus `json:"status"`
}

const (
	orderFieldProductID   = "productId"
	orderFieldProductName = "productName"
	orderFieldBuyerID     = "buyerId"
	orderFieldSellerID    = "sellerId"
	orderFieldQuantity    = "quantity"
	orderFieldTotalAmount = "totalAmount"
	orderFieldOrderDate   = "orderDate"
	orderFieldStatus      = "status"
)

// CreateOrderRequest is the caller-supplied part of an order. Everything
// else is derived from the product and the authenticated buyer.
type CreateOrderRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// UpdateOrderRequest carries a partial order update; nil fields are
// untouched. Status is raw here and validated by the order service.
type UpdateOrderRequest struct {
	Status      *string  `json:"status"`
	Quantity    *int     `json:"quantity"`
	TotalAmount *float64 `json:"totalAmount"`
}

// OrderFields maps an order to the store's column names.
func OrderFields(o *Order) map[string]any {
	return map[string]any{
		orderFieldProductID:   o.ProductID,
		orderFieldProductName: o.ProductName,
		orderFieldBuyerID:     o.BuyerID,
		orderFieldSellerID:    o.SellerID,
		orderFieldQuantity:    o.Quantity,
		orderFieldTotalAmount: o.TotalAmount,
		orderFieldOrderDate:   o.OrderDate,
		orderFieldStatus:      string(o.Status),
	}
}

// OrderFromFields builds an order from a store record. Rows written before
// the status column existed default to Pending.
func OrderFromFields(recordID string, fields map[string]any) *Order {
	status := OrderStatusPending
	if s, ok := ParseStatus(stringField(fields, orderFieldStatus)); ok {
		status = s
	}
	return &Order{
		ID:          recordID,
		ProductID:   stringField(fields, orderFieldProductID),
		ProductName: stringField(fields, orderFieldProductName),
		BuyerID:     stringField(fields, orderFieldBuyerID),
		SellerID:    stringField(fields, orderFieldSellerID),
		Quantity:    intField(fields, orderFieldQuantity),
		TotalAmount: numberField(fields, orderFieldTotalAmount),
		OrderDate:   stringField(fields, orderFieldOrderDate),
		Status:      status,
	}
}
