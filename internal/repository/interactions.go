package repository

import (
	"context"
	"fmt"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// PurchasedProductIDs returns the distinct set of products the user
// has purchased.
func (r *Repository) PurchasedProductIDs(ctx context.Context, userID int64) ([]string, error) {
	return r.productIDsByTypes(ctx, userID, []string{string(domain.InteractionPurchase)})
}

// ViewedProductIDs returns the distinct set of products the user has
// viewed or added to cart without necessarily purchasing.
func (r *Repository) ViewedProductIDs(ctx context.Context, userID int64) ([]string, error) {
	return r.productIDsByTypes(ctx, userID, []string{string(domain.InteractionView), string(domain.InteractionCartAdd)})
}

func (r *Repository) productIDsByTypes(ctx context.Context, userID int64, types []string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT product_id
		 FROM user_interactions
		 WHERE user_id = $1 AND interaction_type = ANY($2)
		 ORDER BY product_id`,
		userID, types,
	)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("query interactions for user %d", userID), err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan product id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate product ids", err)
	}
	return ids, nil
}

// NeighborPurchases returns, for every other user sharing at least one
// purchased product with the given seed set, that user's full distinct
// purchase set. The target user is excluded.
func (r *Repository) NeighborPurchases(ctx context.Context, userID int64, seed []string) (map[int64][]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ui.user_id, ui.product_id
		 FROM user_interactions ui
		 WHERE ui.interaction_type = 'purchase'
		   AND ui.user_id <> $1
		   AND ui.user_id IN (
		       SELECT DISTINCT user_id
		       FROM user_interactions
		       WHERE interaction_type = 'purchase' AND product_id = ANY($2)
		   )
		 ORDER BY ui.user_id, ui.product_id`,
		userID, seed,
	)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("query neighbor purchases for user %d", userID), err)
	}
	defer rows.Close()

	purchases := make(map[int64][]string)
	for rows.Next() {
		var uid int64
		var pid string
		if err := rows.Scan(&uid, &pid); err != nil {
			return nil, storeErr("scan neighbor purchase", err)
		}
		purchases[uid] = append(purchases[uid], pid)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate neighbor purchases", err)
	}
	return purchases, nil
}
