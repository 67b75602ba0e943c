package repository

import (
	"fmt"

	"github.com/bookbarn/recommendation-engine/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// storeErr tags a failed database call so read paths can recover with
// mock or in-memory data instead of surfacing a hard failure.
func storeErr(op string, err error) error {
	return &domain.StoreUnavailableError{
		Store: "postgres",
		Err:   fmt.Errorf("%s: %w", op, err),
	}
}
