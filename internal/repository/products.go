package repository

import (
	"context"
	"fmt"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

const productColumns = `id, title, author, category, price, image_url, description,
	stock, purchase_count, rating, review_count, popularity_score, created_at`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Title, &p.Author, &p.Category, &p.Price, &p.ImageURL,
		&p.Description, &p.Stock, &p.PurchaseCount, &p.Rating, &p.ReviewCount,
		&p.PopularityScore, &p.CreatedAt)
	return p, err
}

// ProductsByIDs fetches product attributes for the given ids, keyed by
// product id. Missing ids are simply absent from the result.
func (r *Repository) ProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	if len(ids) == 0 {
		return map[string]domain.Product{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, storeErr("query products by ids", err)
	}
	defer rows.Close()

	products := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr("scan product", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate products", err)
	}
	return products, nil
}

// InStockCandidates returns in-stock products excluding the given ids,
// capped to a candidate pool, ordered by popularity so a truncated
// pool keeps the strongest candidates.
func (r *Repository) InStockCandidates(ctx context.Context, exclude []string, limit int) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE stock > 0 AND NOT (id = ANY($1))
		 ORDER BY popularity_score DESC, id
		 LIMIT $2`,
		exclude, limit,
	)
	if err != nil {
		return nil, storeErr("query in-stock candidates", err)
	}
	defer rows.Close()

	var items []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr("scan candidate", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate candidates", err)
	}
	return items, nil
}

// MostPurchased returns in-stock products the user has not purchased,
// ranked by global purchase count. Used by the collaborative fallback
// tier.
func (r *Repository) MostPurchased(ctx context.Context, userID int64, limit int) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE stock > 0
		   AND id NOT IN (
		       SELECT product_id FROM user_interactions
		       WHERE user_id = $1 AND interaction_type = 'purchase'
		   )
		 ORDER BY purchase_count DESC, id
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("query most purchased for user %d", userID), err)
	}
	defer rows.Close()

	var items []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr("scan popular product", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate popular products", err)
	}
	return items, nil
}

// PopularInStock returns the popularity-ranked in-stock catalog,
// excluding the given product ids. Used by the content fallback tier.
func (r *Repository) PopularInStock(ctx context.Context, exclude []string, limit int) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+`
		 FROM products
		 WHERE stock > 0 AND NOT (id = ANY($1))
		 ORDER BY popularity_score DESC, rating DESC, id
		 LIMIT $2`,
		exclude, limit,
	)
	if err != nil {
		return nil, storeErr("query popular in-stock products", err)
	}
	defer rows.Close()

	var items []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storeErr("scan popular product", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate popular products", err)
	}
	return items, nil
}
