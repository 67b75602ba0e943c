package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// Store runs co-purchase traversals against the Neo4j projection of
// the interaction history. A nil Store is valid and reports every
// query as unavailable, which pushes the graph strategy onto its mock
// path.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	log      *zap.SugaredLogger
}

// Connect builds a driver and verifies connectivity. An empty URI
// returns a nil store without error so the service can run without a
// graph backend.
func Connect(ctx context.Context, uri, user, password, database string, log *zap.SugaredLogger) (*Store, error) {
	if uri == "" {
		return nil, nil
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""), func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = 25
		cfg.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("init neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	return &Store{driver: driver, database: database, log: log.With("component", "graph")}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

func graphErr(op string, err error) error {
	return &domain.StoreUnavailableError{
		Store: "neo4j",
		Err:   fmt.Errorf("%s: %w", op, err),
	}
}

// query runs one read-mode Cypher statement and maps each record to a
// Candidate via the standard product_id/score projection.
func (s *Store) query(ctx context.Context, op, cypher string, params map[string]any) ([]domain.Candidate, error) {
	if s == nil || s.driver == nil {
		return nil, graphErr(op, fmt.Errorf("no graph backend configured"))
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, graphErr(op, err)
	}

	rows := records.([]*neo4j.Record)
	candidates := make([]domain.Candidate, 0, len(rows))
	for _, rec := range rows {
		c, err := candidateFromRecord(rec)
		if err != nil {
			return nil, graphErr(op, err)
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func candidateFromRecord(rec *neo4j.Record) (domain.Candidate, error) {
	var c domain.Candidate

	raw, ok := rec.Get("product_id")
	if !ok {
		return c, fmt.Errorf("record missing product_id")
	}
	switch v := raw.(type) {
	case string:
		c.ProductID = v
	case int64:
		c.ProductID = fmt.Sprintf("%d", v)
	default:
		return c, fmt.Errorf("unexpected product_id type %T", raw)
	}

	rawScore, ok := rec.Get("score")
	if !ok {
		return c, fmt.Errorf("record missing score")
	}
	switch v := rawScore.(type) {
	case int64:
		c.Score = float64(v)
	case float64:
		c.Score = v
	default:
		return c, fmt.Errorf("unexpected score type %T", rawScore)
	}

	return c, nil
}
