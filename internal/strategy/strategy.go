package strategy

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// Strategy names as they appear on the wire. "collab" is canonical;
// the orchestrator folds the long form onto it.
const (
	NameCollab  = "collab"
	NameContent = "content"
	NameGraph   = "graph"
)

// ScoringStrategy ranks products for a user. Implementations never
// fail for a history-less user; they degrade through their fallback
// tiers instead. A returned error always means the backing store could
// not serve any tier.
type ScoringStrategy interface {
	Name() string
	Score(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error)
}

// Step is one fallback tier: a named query plus the implicit
// acceptance predicate "returned at least one candidate".
type Step struct {
	Name  string
	Query func(ctx context.Context) ([]domain.Candidate, error)
}

// FallbackChain runs tiers strictly in order, each a separate store
// round trip, stopping at the first tier that produces candidates. A
// tier that errors hands over to the next tier; only when every tier
// errors does the chain report the store as unavailable. Exhausting
// all tiers without candidates is a valid empty result, not an error.
type FallbackChain struct {
	log   *zap.SugaredLogger
	steps []Step
}

func NewFallbackChain(log *zap.SugaredLogger, steps ...Step) *FallbackChain {
	return &FallbackChain{log: log, steps: steps}
}

func (c *FallbackChain) Run(ctx context.Context) ([]domain.Candidate, error) {
	var lastErr error
	failed := 0

	for _, step := range c.steps {
		candidates, err := step.Query(ctx)
		if err != nil {
			c.log.Warnw("fallback tier failed", "tier", step.Name, "error", err)
			lastErr = err
			failed++
			continue
		}
		if len(candidates) > 0 {
			return candidates, nil
		}
		c.log.Debugw("fallback tier empty", "tier", step.Name)
	}

	if failed == len(c.steps) && lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// finalize dedupes by product id (keeping the best-scored entry),
// applies the canonical ordering and truncates to limit.
func finalize(candidates []domain.Candidate, limit int) []domain.Candidate {
	domain.SortCandidates(candidates)

	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if _, ok := seen[c.ProductID]; ok {
			continue
		}
		seen[c.ProductID] = struct{}{}
		out = append(out, c)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func candidateFromProduct(p domain.Product, score float64) domain.Candidate {
	return domain.Candidate{
		ProductID: p.ID,
		Score:     score,
		Title:     p.Title,
		Author:    p.Author,
		Category:  p.Category,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
	}
}

// attachProductDetails denormalizes display fields onto candidates.
// Failing to load details never discards an already computed ranking.
func attachProductDetails(ctx context.Context, log *zap.SugaredLogger, products ProductFetcher, candidates []domain.Candidate) []domain.Candidate {
	if len(candidates) == 0 {
		return candidates
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ProductID
	}

	details, err := products.ProductsByIDs(ctx, ids)
	if err != nil {
		log.Warnw("product detail lookup failed, returning bare candidates", "error", err)
		return candidates
	}

	for i, c := range candidates {
		if p, ok := details[c.ProductID]; ok {
			candidates[i].Title = p.Title
			candidates[i].Author = p.Author
			candidates[i].Category = p.Category
			candidates[i].Price = p.Price
			candidates[i].ImageURL = p.ImageURL
		}
	}
	return candidates
}

// ProductFetcher is the slice of the product store needed for
// denormalizing display fields.
type ProductFetcher interface {
	ProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
}
