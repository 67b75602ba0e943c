package service

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
	"github.com/bookbarn/recommendation-engine/internal/strategy"
)

const maxLimit = 50

// Assigner resolves the sticky A/B model choice for a user.
type Assigner interface {
	GetOrAssign(ctx context.Context, userID int64) (*domain.ModelAssignment, error)
}

// Cache is the ranked-list cache keyed by user, model and limit.
type Cache interface {
	Get(ctx context.Context, userID int64, model string, limit int) ([]domain.Candidate, bool, error)
	Set(ctx context.Context, userID int64, model string, limit int, recs []domain.Candidate) error
}

// EventLogger records feedback events for served recommendations.
type EventLogger interface {
	Log(ctx context.Context, ev domain.RecommendationEvent) (domain.RecommendationEvent, error)
}

// Service is the recommendation orchestrator: it resolves the strategy
// for a user, dispatches scoring, substitutes deterministic mock data
// when the strategy's store is down, and records impressions. A
// syntactically valid request always gets a response.
type Service struct {
	assigner     Assigner
	cache        Cache
	events       EventLogger
	strategies   map[string]strategy.ScoringStrategy
	graph        *strategy.Graph
	defaultLimit int
	log          *zap.SugaredLogger
}

func NewService(assigner Assigner, recCache Cache, eventLog EventLogger,
	collab, content strategy.ScoringStrategy, graph *strategy.Graph,
	defaultLimit int, log *zap.SugaredLogger) *Service {
	return &Service{
		assigner: assigner,
		cache:    recCache,
		events:   eventLog,
		strategies: map[string]strategy.ScoringStrategy{
			collab.Name():  collab,
			content.Name(): content,
			graph.Name():   graph,
		},
		graph:        graph,
		defaultLimit: defaultLimit,
		log:          log.With("component", "service"),
	}
}

// NormalizeModel folds input aliases onto canonical strategy names.
// Empty input stays empty (meaning "use the A/B assignment").
func NormalizeModel(model string) (string, error) {
	model = strings.ToLower(strings.TrimSpace(model))
	switch model {
	case "":
		return "", nil
	case domain.ModelCollaborative, strategy.NameCollab:
		return strategy.NameCollab, nil
	case strategy.NameContent, strategy.NameGraph:
		return model, nil
	default:
		return "", domain.ErrUnsupportedModel
	}
}

// GetRecommendations returns a ranked list for the user. An explicit
// model bypasses the assignment lookup (diagnostics/comparison use);
// otherwise the sticky assignment decides.
func (s *Service) GetRecommendations(ctx context.Context, userID int64, limit int, model string) (*domain.RecommendationResult, error) {
	if userID <= 0 {
		return nil, &domain.InvalidArgumentError{Msg: "user id must be a positive integer"}
	}
	limit = s.clampLimit(limit)

	name, err := NormalizeModel(model)
	if err != nil {
		return nil, err
	}

	var modelID int64
	if name == "" {
		assignment, err := s.assigner.GetOrAssign(ctx, userID)
		if err != nil {
			return nil, err
		}
		name, err = NormalizeModel(assignment.ModelName)
		if err != nil {
			return nil, err
		}
		modelID = assignment.ModelID
	} else {
		modelID = modelIDFor(name)
	}

	strat, ok := s.strategies[name]
	if !ok {
		return nil, domain.ErrUnsupportedModel
	}

	if cached, found, err := s.cache.Get(ctx, userID, name, limit); err != nil {
		s.log.Warnw("cache get failed", "user_id", userID, "error", err)
	} else if found {
		s.logImpressions(ctx, userID, modelID, cached)
		return &domain.RecommendationResult{
			ModelName:       name,
			Recommendations: cached,
			CacheHit:        true,
		}, nil
	}

	recs, err := strat.Score(ctx, userID, limit)
	degraded := false
	if err != nil {
		// Downstream outages never surface on the read path; the
		// caller gets the strategy's deterministic mock list.
		s.log.Warnw("strategy failed, substituting mock recommendations",
			"strategy", name, "user_id", userID, "error", err)
		recs = strategy.MockCandidates(name, userID, limit)
		degraded = true
	}

	if !degraded {
		if err := s.cache.Set(ctx, userID, name, limit, recs); err != nil {
			s.log.Warnw("cache set failed", "user_id", userID, "error", err)
		}
	}

	s.logImpressions(ctx, userID, modelID, recs)

	return &domain.RecommendationResult{
		ModelName:       name,
		Recommendations: recs,
		Degraded:        degraded,
	}, nil
}

// GetCategoryRecommendations is the graph strategy's category-affinity
// variant, exposed as a secondary read path.
func (s *Service) GetCategoryRecommendations(ctx context.Context, userID int64, limit int) (*domain.RecommendationResult, error) {
	if userID <= 0 {
		return nil, &domain.InvalidArgumentError{Msg: "user id must be a positive integer"}
	}
	limit = s.clampLimit(limit)

	recs, err := s.graph.ScoreByCategoryAffinity(ctx, userID, limit)
	degraded := false
	if err != nil {
		s.log.Warnw("category affinity failed, substituting mock recommendations",
			"user_id", userID, "error", err)
		recs = strategy.MockCandidates(strategy.NameGraph, userID, limit)
		degraded = true
	}

	return &domain.RecommendationResult{
		ModelName:       strategy.NameGraph,
		Recommendations: recs,
		Degraded:        degraded,
	}, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// logImpressions records one impression per served item, best-effort.
// A failed write never disturbs the read path.
func (s *Service) logImpressions(ctx context.Context, userID, modelID int64, recs []domain.Candidate) {
	for i, rec := range recs {
		_, err := s.events.Log(ctx, domain.RecommendationEvent{
			UserID:    userID,
			ProductID: rec.ProductID,
			ModelID:   modelID,
			EventType: domain.EventImpression,
			Metadata:  map[string]string{"position": strconv.Itoa(i + 1)},
		})
		if err != nil {
			s.log.Warnw("impression logging failed", "user_id", userID, "product_id", rec.ProductID, "error", err)
			return
		}
	}
}

// modelIDFor maps a canonical strategy name onto the default model
// catalog ids, used when an explicit override bypasses assignment.
func modelIDFor(name string) int64 {
	dbName := name
	if name == strategy.NameCollab {
		dbName = domain.ModelCollaborative
	}
	for _, m := range domain.DefaultModels() {
		if m.Name == dbName {
			return m.ID
		}
	}
	return 0
}
