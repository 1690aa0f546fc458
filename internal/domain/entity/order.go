package entity

import (
	"time"

	"github.com/google/uuid"
)

// Receipt summarises a completed mock checkout.
type Receipt struct {
	OrderID  uuid.UUID          `json:"orderId"`
	UserID   uuid.UUID          `json:"userId"`
	Lines    []ResolvedCartLine `json:"lines"`
	Subtotal float64            `json:"subtotal"`
	Tax      float64            `json:"tax"`
	Total    float64            `json:"total"`
	Currency string             `json:"currency"`
	PlacedAt time.Time          `json:"placedAt"`
}
