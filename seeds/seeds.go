package seeds

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func Setup(ctx context.Context, pool *pgxpool.Pool, log *zap.SugaredLogger) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Infow("seed: truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE recommendation_events, user_model_assignments, user_interactions, products, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Infow("seed: inserting users")
	if err := seedUsers(ctx, pool, 30); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	log.Infow("seed: inserting products")
	if err := seedProducts(ctx, pool, rng, 80); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	log.Infow("seed: inserting interactions")
	if err := seedInteractions(ctx, pool, rng, 30, 80, 400); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}

	log.Infow("seed: refreshing popularity signals")
	if err := refreshPopularity(ctx, pool); err != nil {
		return fmt.Errorf("refresh popularity: %w", err)
	}

	log.Infow("seed: complete")
	return nil
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, n int) error {
	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		rows = append(rows, fmt.Sprintf("($%d)", i+1))
		args = append(args, fmt.Sprintf("reader%d@example.com", i+1))
	}

	query := "INSERT INTO users (email) VALUES " + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	categories := []string{"Fiction", "Science Fiction", "Mystery", "History", "Science", "Fantasy", "Biography", "Programming"}
	adjectives := []string{"Silent", "Hidden", "Last", "Broken", "Distant", "Burning", "Forgotten", "Endless"}
	nouns := []string{"Garden", "Empire", "Algorithm", "Harbor", "Winter", "Mirror", "Voyage", "Library"}
	authors := []string{"A. Hartley", "M. Okafor", "J. Lindqvist", "R. Castellanos", "T. Nakamura", "E. Brandt", "S. Whitfield", "L. Moreau"}

	rows := []string{}
	args := []any{}

	for i := 0; i < n; i++ {
		isbn := fmt.Sprintf("978-1-%05d-%03d-%d", rng.Intn(100000), i, rng.Intn(10))
		title := fmt.Sprintf("The %s %s", adjectives[rng.Intn(len(adjectives))], nouns[rng.Intn(len(nouns))])
		author := authors[rng.Intn(len(authors))]
		category := categories[rng.Intn(len(categories))]
		price := 9.99 + float64(rng.Intn(40))
		stock := rng.Intn(30) // some products out of stock
		rating := 2.5 + rng.Float64()*2.5
		reviewCount := rng.Intn(200)
		description := fmt.Sprintf("A %s tale of the %s.", strings.ToLower(category), strings.ToLower(nouns[rng.Intn(len(nouns))]))
		_ = time.Now().AddDate(0, 0, -rng.Intn(730))

		base := i * 9
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9))
		args = append(args, isbn, title, author, category, price, description, stock, rating, reviewCount)
	}

	query := `INSERT INTO products (id, title, author, category, price, description, stock, rating, review_count)
		VALUES ` + strings.Join(rows, ", ")
	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedInteractions(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, users, products, n int) error {
	productIDs := make([]string, 0, products)
	rows, err := pool.Query(ctx, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		productIDs = append(productIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	types := []string{"purchase", "view", "cart_add"}
	weights := []float64{0.35, 0.5, 0.15}

	values := []string{}
	args := []any{}
	for i := 0; i < n; i++ {
		userID := rng.Intn(users) + 1
		productID := productIDs[rng.Intn(len(productIDs))]
		interaction := weightedChoice(rng, types, weights)
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(180))

		base := i * 4
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, userID, productID, interaction, createdAt)
	}

	query := `INSERT INTO user_interactions (user_id, product_id, interaction_type, created_at)
		VALUES ` + strings.Join(values, ", ")
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

// refreshPopularity recomputes the denormalized purchase counts and
// the popularity term used by the content strategy's scoring.
func refreshPopularity(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
		UPDATE products p
		SET purchase_count = sub.cnt
		FROM (
			SELECT product_id, COUNT(*) AS cnt
			FROM user_interactions
			WHERE interaction_type = 'purchase'
			GROUP BY product_id
		) sub
		WHERE p.id = sub.product_id
	`); err != nil {
		return err
	}

	_, err := pool.Exec(ctx, `
		UPDATE products
		SET popularity_score = purchase_count * 0.6 + rating * 0.2 + LN(review_count + 1) * 0.2
	`)
	return err
}

func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}
