package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookbarn/recommendation-engine/internal/domain"
	"github.com/jackc/pgx/v5"
)

// GetAssignment returns the user's sticky assignment. An assignment to
// a since-deactivated model is still returned; deactivation only stops
// fresh assignments.
func (r *Repository) GetAssignment(ctx context.Context, userID int64) (*domain.ModelAssignment, error) {
	a := &domain.ModelAssignment{}
	err := r.pool.QueryRow(ctx,
		`SELECT uma.user_id, uma.model_id, rm.name, uma.assigned_at
		 FROM user_model_assignments uma
		 JOIN recommendation_models rm ON rm.id = uma.model_id
		 WHERE uma.user_id = $1`,
		userID,
	).Scan(&a.UserID, &a.ModelID, &a.ModelName, &a.AssignedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAssignmentNotFound
		}
		return nil, storeErr(fmt.Sprintf("query assignment for user %d", userID), err)
	}
	return a, nil
}

// InsertAssignmentIfAbsent atomically persists an assignment unless
// the user already has one. The conflict target on user_id makes
// concurrent first-time calls converge on a single stored winner; the
// follow-up read returns whichever row won.
func (r *Repository) InsertAssignmentIfAbsent(ctx context.Context, userID, modelID int64) (*domain.ModelAssignment, bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO user_model_assignments (user_id, model_id, assigned_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, modelID,
	)
	if err != nil {
		return nil, false, storeErr(fmt.Sprintf("insert assignment for user %d", userID), err)
	}

	assignment, err := r.GetAssignment(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return assignment, tag.RowsAffected() > 0, nil
}

// ActiveModels lists models eligible for fresh assignment.
func (r *Repository) ActiveModels(ctx context.Context) ([]domain.RecommendationModel, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, is_active
		 FROM recommendation_models
		 WHERE is_active
		 ORDER BY id`,
	)
	if err != nil {
		return nil, storeErr("query active models", err)
	}
	defer rows.Close()

	var models []domain.RecommendationModel
	for rows.Next() {
		var m domain.RecommendationModel
		if err := rows.Scan(&m.ID, &m.Name, &m.IsActive); err != nil {
			return nil, storeErr("scan model", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate models", err)
	}
	return models, nil
}
