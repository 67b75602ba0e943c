package domain

import "sort"

// Candidate is a scored recommendation before truncation to the
// request limit. Product fields are denormalized for display and may
// be empty for mock or graph-only results.
type Candidate struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
	Title     string  `json:"product_name,omitempty"`
	Author    string  `json:"author,omitempty"`
	Category  string  `json:"category,omitempty"`
	Price     float64 `json:"price,omitempty"`
	ImageURL  string  `json:"product_image,omitempty"`
}

type RecommendationResult struct {
	ModelName       string
	Recommendations []Candidate
	Degraded        bool
	CacheHit        bool
}

type RecommendationMeta struct {
	CacheHit    bool   `json:"cache_hit"`
	Degraded    bool   `json:"degraded"`
	GeneratedAt string `json:"generated_at"`
	TotalCount  int    `json:"total_count"`
}

// SortCandidates orders by score descending, product id ascending on
// ties, so identical data always yields identical rankings.
func SortCandidates(cs []Candidate) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Score != cs[j].Score {
			return cs[i].Score > cs[j].Score
		}
		return cs[i].ProductID < cs[j].ProductID
	})
}
