package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// Store is the append-only event sink. No update or delete operations
// exist by contract.
type Store interface {
	AppendEvent(ctx context.Context, ev domain.RecommendationEvent) (domain.RecommendationEvent, error)
	CountsByModel(ctx context.Context, modelID int64) ([]domain.EventCount, error)
	RecentEventsByUser(ctx context.Context, userID int64, limit int) ([]domain.RecommendationEvent, error)
	OverallStats(ctx context.Context) (*domain.EventStats, error)
}

// Service logs recommendation feedback events. When the persistent
// store is unreachable the write is still accepted into a bounded
// in-memory buffer so analytics hooks keep working, flagged
// non-durable.
type Service struct {
	store  Store
	buffer *MemoryBuffer
	log    *zap.SugaredLogger
}

func NewService(store Store, log *zap.SugaredLogger) *Service {
	return &Service{
		store:  store,
		buffer: NewMemoryBuffer(defaultBufferCap),
		log:    log.With("component", "events"),
	}
}

// Log validates and appends one event, returning the stored record.
func (s *Service) Log(ctx context.Context, ev domain.RecommendationEvent) (domain.RecommendationEvent, error) {
	if ev.EventType == "" {
		return ev, &domain.InvalidArgumentError{Msg: "event_type is required"}
	}

	stored, err := s.store.AppendEvent(ctx, ev)
	if err == nil {
		return stored, nil
	}
	if !domain.IsStoreUnavailable(err) {
		return ev, err
	}

	s.log.Warnw("event store unavailable, buffering event in memory",
		"event_type", ev.EventType, "user_id", ev.UserID, "error", err)
	return s.buffer.Append(ev), nil
}

// CountsByModel aggregates all events for one model by type. In
// degraded mode the counts reflect only the buffered events.
func (s *Service) CountsByModel(ctx context.Context, modelID int64) ([]domain.EventCount, error) {
	counts, err := s.store.CountsByModel(ctx, modelID)
	if err == nil {
		return counts, nil
	}
	if !domain.IsStoreUnavailable(err) {
		return nil, err
	}
	s.log.Warnw("event store unavailable, counting buffered events", "model_id", modelID, "error", err)
	return s.buffer.CountsByModel(modelID), nil
}

// RecentByUser returns a user's latest events, newest first.
func (s *Service) RecentByUser(ctx context.Context, userID int64, limit int) ([]domain.RecommendationEvent, error) {
	if userID <= 0 {
		return nil, &domain.InvalidArgumentError{Msg: "user id must be a positive integer"}
	}
	events, err := s.store.RecentEventsByUser(ctx, userID, limit)
	if err == nil {
		return events, nil
	}
	if !domain.IsStoreUnavailable(err) {
		return nil, err
	}
	return s.buffer.RecentByUser(userID, limit), nil
}

// OverallStats summarizes the event log.
func (s *Service) OverallStats(ctx context.Context) (*domain.EventStats, error) {
	stats, err := s.store.OverallStats(ctx)
	if err == nil {
		return stats, nil
	}
	if !domain.IsStoreUnavailable(err) {
		return nil, err
	}
	return s.buffer.Stats(), nil
}
