package strategy

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

const maxNeighbors = 20

// CollaborativeReader is the interaction-store slice the neighborhood
// scorer needs.
type CollaborativeReader interface {
	ProductFetcher
	PurchasedProductIDs(ctx context.Context, userID int64) ([]string, error)
	NeighborPurchases(ctx context.Context, userID int64, seed []string) (map[int64][]string, error)
	MostPurchased(ctx context.Context, userID int64, limit int) ([]domain.Product, error)
}

// Collaborative ranks products by neighborhood co-purchase: users with
// overlapping purchase history vote for their other purchases,
// weighted by Jaccard similarity.
type Collaborative struct {
	reader CollaborativeReader
	log    *zap.SugaredLogger
}

func NewCollaborative(reader CollaborativeReader, log *zap.SugaredLogger) *Collaborative {
	return &Collaborative{reader: reader, log: log.With("strategy", NameCollab)}
}

func (s *Collaborative) Name() string { return NameCollab }

func (s *Collaborative) Score(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	chain := NewFallbackChain(s.log,
		Step{Name: "neighborhood", Query: func(ctx context.Context) ([]domain.Candidate, error) {
			return s.scoreNeighborhood(ctx, userID, limit)
		}},
		Step{Name: "most-purchased", Query: func(ctx context.Context) ([]domain.Candidate, error) {
			return s.scorePopular(ctx, userID, limit)
		}},
	)
	return chain.Run(ctx)
}

func (s *Collaborative) scoreNeighborhood(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	purchased, err := s.reader.PurchasedProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(purchased) == 0 {
		return nil, nil
	}
	owned := toSet(purchased)

	neighborPurchases, err := s.reader.NeighborPurchases(ctx, userID, purchased)
	if err != nil {
		return nil, err
	}
	if len(neighborPurchases) == 0 {
		return nil, nil
	}

	neighbors := rankNeighbors(owned, neighborPurchases)
	if len(neighbors) > maxNeighbors {
		neighbors = neighbors[:maxNeighbors]
	}

	// Each kept neighbor votes for the products the target user does
	// not own, weighted by similarity.
	weights := make(map[string]float64)
	votes := make(map[string]int)
	for _, n := range neighbors {
		for _, pid := range neighborPurchases[n.userID] {
			if _, ok := owned[pid]; ok {
				continue
			}
			weights[pid] += n.similarity
			votes[pid]++
		}
	}
	if len(weights) == 0 {
		return nil, nil
	}

	candidates := make([]domain.Candidate, 0, len(weights))
	for pid, w := range weights {
		candidates = append(candidates, domain.Candidate{
			ProductID: pid,
			Score:     math.Round(w*100) / 100,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if votes[candidates[i].ProductID] != votes[candidates[j].ProductID] {
			return votes[candidates[i].ProductID] > votes[candidates[j].ProductID]
		}
		return candidates[i].ProductID < candidates[j].ProductID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return attachProductDetails(ctx, s.log, s.reader, candidates), nil
}

func (s *Collaborative) scorePopular(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	products, err := s.reader.MostPurchased(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	candidates := make([]domain.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, candidateFromProduct(p, float64(p.PurchaseCount)))
	}
	return finalize(candidates, limit), nil
}

type neighbor struct {
	userID     int64
	similarity float64
}

// rankNeighbors computes Jaccard similarity between the target's
// purchase set and each neighbor's, ordered similarity descending with
// user id as the deterministic tie-break.
func rankNeighbors(owned map[string]struct{}, neighborPurchases map[int64][]string) []neighbor {
	neighbors := make([]neighbor, 0, len(neighborPurchases))
	for uid, purchases := range neighborPurchases {
		intersection := 0
		for _, pid := range purchases {
			if _, ok := owned[pid]; ok {
				intersection++
			}
		}
		if intersection == 0 {
			continue
		}
		union := len(owned) + len(purchases) - intersection
		sim := math.Round(float64(intersection)/float64(union)*10000) / 10000
		neighbors = append(neighbors, neighbor{userID: uid, similarity: sim})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].userID < neighbors[j].userID
	})
	return neighbors
}
