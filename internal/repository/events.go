package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// AppendEvent writes one immutable feedback row and returns it with
// the generated id and timestamp. Optional fields are stored as NULL.
func (r *Repository) AppendEvent(ctx context.Context, ev domain.RecommendationEvent) (domain.RecommendationEvent, error) {
	metadata, err := json.Marshal(ev.Metadata)
	if err != nil {
		return ev, fmt.Errorf("marshal event metadata: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO recommendation_events (user_id, product_id, model_id, event_type, metadata, created_at)
		 VALUES (NULLIF($1, 0), NULLIF($2, ''), NULLIF($3, 0), $4, $5, now())
		 RETURNING id, created_at`,
		ev.UserID, ev.ProductID, ev.ModelID, ev.EventType, metadata,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return ev, storeErr("insert event", err)
	}
	ev.Durable = true
	return ev, nil
}

// CountsByModel aggregates the event log for one model by event type.
func (r *Repository) CountsByModel(ctx context.Context, modelID int64) ([]domain.EventCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT event_type, COUNT(*) AS cnt
		 FROM recommendation_events
		 WHERE model_id = $1
		 GROUP BY event_type
		 ORDER BY cnt DESC, event_type`,
		modelID,
	)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("query event counts for model %d", modelID), err)
	}
	defer rows.Close()

	var counts []domain.EventCount
	for rows.Next() {
		var c domain.EventCount
		if err := rows.Scan(&c.EventType, &c.Count); err != nil {
			return nil, storeErr("scan event count", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate event counts", err)
	}
	return counts, nil
}

// RecentEventsByUser returns a user's latest events, newest first.
func (r *Repository) RecentEventsByUser(ctx context.Context, userID int64, limit int) ([]domain.RecommendationEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(user_id, 0), COALESCE(product_id, ''), COALESCE(model_id, 0),
		        event_type, metadata, created_at
		 FROM recommendation_events
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, storeErr(fmt.Sprintf("query events for user %d", userID), err)
	}
	defer rows.Close()

	var events []domain.RecommendationEvent
	for rows.Next() {
		var ev domain.RecommendationEvent
		var metadata []byte
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ProductID, &ev.ModelID,
			&ev.EventType, &metadata, &ev.CreatedAt); err != nil {
			return nil, storeErr("scan event", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &ev.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event %d metadata: %w", ev.ID, err)
			}
		}
		ev.Durable = true
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate events", err)
	}
	return events, nil
}

// OverallStats summarizes the whole event log for dashboards.
func (r *Repository) OverallStats(ctx context.Context) (*domain.EventStats, error) {
	stats := &domain.EventStats{
		ByType:  map[string]int64{},
		ByModel: map[int64]int64{},
	}

	rows, err := r.pool.Query(ctx,
		`SELECT event_type, COUNT(*) FROM recommendation_events GROUP BY event_type`,
	)
	if err != nil {
		return nil, storeErr("query event type stats", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, storeErr("scan event type stat", err)
		}
		stats.ByType[eventType] = count
		stats.TotalEvents += count
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate event type stats", err)
	}

	modelRows, err := r.pool.Query(ctx,
		`SELECT model_id, COUNT(*) FROM recommendation_events
		 WHERE model_id IS NOT NULL GROUP BY model_id`,
	)
	if err != nil {
		return nil, storeErr("query event model stats", err)
	}
	defer modelRows.Close()
	for modelRows.Next() {
		var modelID, count int64
		if err := modelRows.Scan(&modelID, &count); err != nil {
			return nil, storeErr("scan event model stat", err)
		}
		stats.ByModel[modelID] = count
	}
	if err := modelRows.Err(); err != nil {
		return nil, storeErr("iterate event model stats", err)
	}

	return stats, nil
}
