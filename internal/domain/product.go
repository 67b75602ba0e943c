package domain

import "time"

type Product struct {
	ID              string    `json:"product_id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	ImageURL        string    `json:"image_url,omitempty"`
	Description     string    `json:"description,omitempty"`
	Stock           int       `json:"stock"`
	PurchaseCount   int       `json:"purchase_count"`
	Rating          float64   `json:"rating"`
	ReviewCount     int       `json:"review_count"`
	PopularityScore float64   `json:"popularity_score"`
	CreatedAt       time.Time `json:"created_at"`
}
