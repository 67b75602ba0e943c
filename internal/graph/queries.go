package graph

import (
	"context"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// CoPurchased is the primary graph tier: products purchased by other
// users who share at least one purchased product with the target user.
// Score is the number of distinct contributing users.
func (s *Store) CoPurchased(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	return s.query(ctx, "co-purchase traversal", `
		MATCH (u:User {id: $userId})-[:PURCHASED]->(:Product)<-[:PURCHASED]-(other:User)-[:PURCHASED]->(p:Product)
		WHERE NOT (u)-[:PURCHASED]->(p)
		RETURN p.id AS product_id, COUNT(DISTINCT other) AS score
		ORDER BY score DESC, product_id ASC
		LIMIT $limit`,
		map[string]any{"userId": userID, "limit": limit},
	)
}

// ViewedCoPurchased widens the seed set to viewed and cart-added
// products when the user has no purchase overlap with anyone. Products
// the user already purchased or viewed are excluded.
func (s *Store) ViewedCoPurchased(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	return s.query(ctx, "view co-purchase traversal", `
		MATCH (u:User {id: $userId})-[:VIEWED|ADDED_TO_CART]->(:Product)<-[:PURCHASED]-(other:User)-[:PURCHASED]->(p:Product)
		WHERE NOT (u)-[:PURCHASED]->(p) AND NOT (u)-[:VIEWED]->(p)
		RETURN p.id AS product_id, COUNT(DISTINCT other) AS score
		ORDER BY score DESC, product_id ASC
		LIMIT $limit`,
		map[string]any{"userId": userID, "limit": limit},
	)
}

// MostPurchased is the unpersonalized tier: the globally best-selling
// products, scored by purchase count.
func (s *Store) MostPurchased(ctx context.Context, limit int) ([]domain.Candidate, error) {
	return s.query(ctx, "most purchased", `
		MATCH (p:Product)<-[r:PURCHASED]-(:User)
		RETURN p.id AS product_id, COUNT(r) AS score
		ORDER BY score DESC, product_id ASC
		LIMIT $limit`,
		map[string]any{"limit": limit},
	)
}

// AnyInStock is the last tier: arbitrary in-stock products at a
// constant score, so the response is non-empty whenever the catalog
// is.
func (s *Store) AnyInStock(ctx context.Context, limit int) ([]domain.Candidate, error) {
	return s.query(ctx, "any in stock", `
		MATCH (p:Product)
		WHERE p.stock > 0
		RETURN p.id AS product_id, 1 AS score
		ORDER BY product_id ASC
		LIMIT $limit`,
		map[string]any{"limit": limit},
	)
}

// CategoryAffinity scores unpurchased products by how many of the
// user's purchases fall in the product's category.
func (s *Store) CategoryAffinity(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	return s.query(ctx, "category affinity", `
		MATCH (u:User {id: $userId})-[:PURCHASED]->(owned:Product)
		WITH u, owned.category AS category, COUNT(*) AS weight
		MATCH (p:Product {category: category})
		WHERE NOT (u)-[:PURCHASED]->(p)
		RETURN p.id AS product_id, SUM(weight) AS score
		ORDER BY score DESC, product_id ASC
		LIMIT $limit`,
		map[string]any{"userId": userID, "limit": limit},
	)
}
