package ab

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

const bulkPageSize = 500

// Store persists sticky per-user model assignments. The insert must be
// atomic on user_id so concurrent first-time callers converge on one
// winner.
type Store interface {
	GetAssignment(ctx context.Context, userID int64) (*domain.ModelAssignment, error)
	InsertAssignmentIfAbsent(ctx context.Context, userID, modelID int64) (*domain.ModelAssignment, bool, error)
	ActiveModels(ctx context.Context) ([]domain.RecommendationModel, error)
}

// UserLister walks the stored user population for bulk assignment.
type UserLister interface {
	UserIDsPaginated(ctx context.Context, page, limit int) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)
}

type BulkAssignResult struct {
	Assigned int  `json:"assigned"`
	Total    int  `json:"total"`
	Degraded bool `json:"degraded,omitempty"`
}

// Service resolves and persists A/B model assignments. When the
// persistent store is unreachable it keeps answering from a
// process-lifetime in-memory store, flagging results as degraded.
type Service struct {
	store    Store
	users    UserLister
	fallback *MemoryStore
	log      *zap.SugaredLogger
}

func NewService(store Store, users UserLister, log *zap.SugaredLogger) *Service {
	return &Service{
		store:    store,
		users:    users,
		fallback: NewMemoryStore(domain.DefaultModels()),
		log:      log.With("component", "ab"),
	}
}

// GetOrAssign returns the user's sticky assignment, creating one with
// a uniformly random active model on first sight. Idempotent: repeat
// calls return the stored winner unchanged.
func (s *Service) GetOrAssign(ctx context.Context, userID int64) (*domain.ModelAssignment, error) {
	if userID <= 0 {
		return nil, &domain.InvalidArgumentError{Msg: fmt.Sprintf("user id must be a positive integer, got %d", userID)}
	}

	assignment, err := s.getOrAssign(ctx, s.store, userID)
	if err == nil {
		return assignment, nil
	}
	if !domain.IsStoreUnavailable(err) {
		return nil, err
	}

	s.log.Warnw("assignment store unavailable, serving in-memory assignment", "user_id", userID, "error", err)
	assignment, memErr := s.getOrAssign(ctx, s.fallback, userID)
	if memErr != nil {
		return nil, memErr
	}
	assignment.Degraded = true
	return assignment, nil
}

func (s *Service) getOrAssign(ctx context.Context, store Store, userID int64) (*domain.ModelAssignment, error) {
	assignment, err := store.GetAssignment(ctx, userID)
	if err == nil {
		return assignment, nil
	}
	if !errors.Is(err, domain.ErrAssignmentNotFound) {
		return nil, err
	}

	models, err := store.ActiveModels(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no active recommendation models to assign")
	}

	chosen := models[rand.Intn(len(models))]
	winner, inserted, err := store.InsertAssignmentIfAbsent(ctx, userID, chosen.ID)
	if err != nil {
		return nil, err
	}
	if inserted {
		s.log.Infow("assigned model to user", "user_id", userID, "model_id", winner.ModelID, "model_name", winner.ModelName)
	}
	return winner, nil
}

// AssignAllEven walks every stored user in ascending id order and
// backfills assignments round-robin over modelIDs. Existing
// assignments are skipped, never overwritten, so re-running the
// operation is a no-op for already-covered users.
func (s *Service) AssignAllEven(ctx context.Context, modelIDs []int64) (*BulkAssignResult, error) {
	if len(modelIDs) == 0 {
		return nil, &domain.InvalidArgumentError{Msg: "at least one model id is required"}
	}

	total, err := s.users.CountUsers(ctx)
	if err != nil {
		if domain.IsStoreUnavailable(err) {
			return s.assignAllInMemory(modelIDs, err)
		}
		return nil, err
	}

	assigned := 0
	index := 0
	for page := 1; ; page++ {
		userIDs, err := s.users.UserIDsPaginated(ctx, page, bulkPageSize)
		if err != nil {
			return nil, err
		}
		if len(userIDs) == 0 {
			break
		}
		for _, uid := range userIDs {
			modelID := modelIDs[index%len(modelIDs)]
			index++
			_, inserted, err := s.store.InsertAssignmentIfAbsent(ctx, uid, modelID)
			if err != nil {
				return nil, err
			}
			if inserted {
				assigned++
			}
		}
		if len(userIDs) < bulkPageSize {
			break
		}
	}

	s.log.Infow("bulk assignment complete", "assigned", assigned, "total", total, "models", modelIDs)
	return &BulkAssignResult{Assigned: assigned, Total: total}, nil
}

// assignAllInMemory covers the users the fallback store has seen this
// process. The write is accepted locally but flagged as non-durable.
func (s *Service) assignAllInMemory(modelIDs []int64, cause error) (*BulkAssignResult, error) {
	s.log.Warnw("user store unavailable, bulk-assigning in memory", "error", cause)
	assigned, total := s.fallback.AssignAllEven(modelIDs)
	return &BulkAssignResult{Assigned: assigned, Total: total, Degraded: true}, nil
}
