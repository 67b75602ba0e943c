package domain

import "time"

type InteractionType string

const (
	InteractionPurchase InteractionType = "purchase"
	InteractionView     InteractionType = "view"
	InteractionCartAdd  InteractionType = "cart_add"
)

// Interaction is one row of the append-only user/product history.
// The engine only ever reads these; the storefront writes them.
type Interaction struct {
	UserID    int64           `json:"user_id"`
	ProductID string          `json:"product_id"`
	Type      InteractionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}
