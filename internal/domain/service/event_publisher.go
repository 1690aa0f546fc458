package service

import (
	"context"
)

// OrderLineEvent is one purchased line inside an OrderPlacedEvent.
type OrderLineEvent struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// OrderPlacedEvent is emitted after a successful mock checkout.
type OrderPlacedEvent struct {
	RequestID string           `json:"request_id,omitempty"` // For distributed tracing
	OrderID   string           `json:"order_id"`
	UserID    string           `json:"user_id"`
	Lines     []OrderLineEvent `json:"lines"`
	Subtotal  float64          `json:"subtotal"`
	Tax       float64          `json:"tax"`
	Total     float64          `json:"total"`
	Currency  string           `json:"currency"`
	PlacedAt  string           `json:"placed_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishOrderPlaced publishes a checkout event for downstream fulfilment.
	PublishOrderPlaced(ctx context.Context, event *OrderPlacedEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
