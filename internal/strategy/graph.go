package strategy

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// GraphReader is the co-purchase graph surface, one method per
// traversal tier plus the category-affinity variant.
type GraphReader interface {
	CoPurchased(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error)
	ViewedCoPurchased(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error)
	MostPurchased(ctx context.Context, limit int) ([]domain.Candidate, error)
	AnyInStock(ctx context.Context, limit int) ([]domain.Candidate, error)
	CategoryAffinity(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error)
}

// Graph ranks products by relationship traversal over the co-purchase
// graph, degrading from purchase overlap to view overlap to global
// bestsellers to any stocked product.
type Graph struct {
	reader   GraphReader
	products ProductFetcher
	log      *zap.SugaredLogger
}

func NewGraph(reader GraphReader, products ProductFetcher, log *zap.SugaredLogger) *Graph {
	return &Graph{reader: reader, products: products, log: log.With("strategy", NameGraph)}
}

func (s *Graph) Name() string { return NameGraph }

func (s *Graph) Score(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	chain := NewFallbackChain(s.log,
		Step{Name: "co-purchase", Query: func(ctx context.Context) ([]domain.Candidate, error) {
			return s.reader.CoPurchased(ctx, userID, limit)
		}},
		Step{Name: "view-co-purchase", Query: func(ctx context.Context) ([]domain.Candidate, error) {
			return s.reader.ViewedCoPurchased(ctx, userID, limit)
		}},
		Step{Name: "most-purchased", Query: func(ctx context.Context) ([]domain.Candidate, error) {
			return s.reader.MostPurchased(ctx, limit)
		}},
		Step{Name: "any-in-stock", Query: func(ctx context.Context) ([]domain.Candidate, error) {
			return s.reader.AnyInStock(ctx, limit)
		}},
	)

	candidates, err := chain.Run(ctx)
	if err != nil {
		return nil, err
	}
	return attachProductDetails(ctx, s.log, s.products, finalize(candidates, limit)), nil
}

// ScoreByCategoryAffinity is the secondary graph operation: products
// from the categories the user buys from, weighted by how often they
// buy there.
func (s *Graph) ScoreByCategoryAffinity(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	candidates, err := s.reader.CategoryAffinity(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return attachProductDetails(ctx, s.log, s.products, finalize(candidates, limit)), nil
}
