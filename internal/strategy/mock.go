package strategy

import (
	"fmt"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

// MockCandidates is the deterministic stand-in ranking served when a
// strategy's backing store is unreachable. Repeated calls for the same
// user produce the same list, so demos and degraded deployments stay
// repeatable.
func MockCandidates(strategyName string, userID int64, limit int) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, limit)

	switch strategyName {
	case NameCollab:
		for i := 0; i < limit; i++ {
			candidates = append(candidates, domain.Candidate{
				ProductID: fmt.Sprintf("COLLAB-%d", i+1),
				Title:     fmt.Sprintf("Collaborative Mock Product %d", i+1),
				Price:     19.99 + float64(i),
				Category:  "Mock Category",
				Score:     float64(limit - i),
			})
		}
	case NameContent:
		for i := 0; i < limit; i++ {
			candidates = append(candidates, domain.Candidate{
				ProductID: fmt.Sprintf("CONTENT-%d", 100+i+1),
				Title:     fmt.Sprintf("Content-Based Mock Product %d", i+1),
				Price:     24.99 + float64(i),
				Category:  "Fiction",
				Author:    "Mock Author",
				Score:     float64(limit - i),
			})
		}
	default:
		// Pseudo-random but stable per user.
		start := (userID % 50) * 3
		for i := 0; i < limit; i++ {
			candidates = append(candidates, domain.Candidate{
				ProductID: fmt.Sprintf("%d", start+int64(i)+1),
				Score:     float64(limit - i),
			})
		}
	}
	return candidates
}
