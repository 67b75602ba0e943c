package domain

import "time"

const (
	EventImpression = "impression"
	EventClick      = "click"
	EventCartAdd    = "cart_add"
	EventPurchase   = "purchase"
)

// RecommendationEvent is one append-only feedback row. UserID,
// ProductID and ModelID are optional; zero values mean "not set".
// Durable is false when the event only lives in the in-memory buffer.
type RecommendationEvent struct {
	ID        int64             `json:"event_id"`
	UserID    int64             `json:"user_id,omitempty"`
	ProductID string            `json:"product_id,omitempty"`
	ModelID   int64             `json:"model_id,omitempty"`
	EventType string            `json:"event_type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Durable   bool              `json:"durable"`
	CreatedAt time.Time         `json:"created_at"`
}

type EventCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"cnt"`
}

type EventStats struct {
	TotalEvents int64            `json:"total_events"`
	ByType      map[string]int64 `json:"event_types"`
	ByModel     map[int64]int64  `json:"models"`
}
