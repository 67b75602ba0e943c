package strategy

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

const (
	categoryWeight    = 3
	authorWeight      = 2
	candidatePoolSize = 200
	minKeywordLen     = 4
)

var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "been": {}, "between": {},
	"book": {}, "edition": {}, "from": {}, "guide": {}, "have": {},
	"into": {}, "more": {}, "other": {}, "over": {}, "some": {},
	"story": {}, "that": {}, "their": {}, "them": {}, "there": {},
	"they": {}, "this": {}, "through": {}, "what": {}, "when": {},
	"which": {}, "with": {}, "your": {},
}

// ContentReader is the interaction-store slice the attribute scorer
// needs.
type ContentReader interface {
	ProductFetcher
	PurchasedProductIDs(ctx context.Context, userID int64) ([]string, error)
	ViewedProductIDs(ctx context.Context, userID int64) ([]string, error)
	InStockCandidates(ctx context.Context, exclude []string, limit int) ([]domain.Product, error)
	PopularInStock(ctx context.Context, exclude []string, limit int) ([]domain.Product, error)
}

// Content ranks products by attribute overlap with everything the
// user has purchased or viewed: shared category, shared author, shared
// title/description keywords, plus a per-product popularity term.
type Content struct {
	reader ContentReader
	log    *zap.SugaredLogger
}

func NewContent(reader ContentReader, log *zap.SugaredLogger) *Content {
	return &Content{reader: reader, log: log.With("strategy", NameContent)}
}

func (s *Content) Name() string { return NameContent }

func (s *Content) Score(ctx context.Context, userID int64, limit int) ([]domain.Candidate, error) {
	purchased, err := s.reader.PurchasedProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	viewed, err := s.reader.ViewedProductIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	interacted := toSet(purchased)
	for _, id := range viewed {
		interacted[id] = struct{}{}
	}
	interactedIDs := make([]string, 0, len(interacted))
	for id := range interacted {
		interactedIDs = append(interactedIDs, id)
	}

	chain := NewFallbackChain(s.log,
		Step{Name: "attribute-similarity", Query: func(ctx context.Context) ([]domain.Candidate, error) {
			return s.scoreByAttributes(ctx, interactedIDs, limit)
		}},
		Step{Name: "popularity", Query: func(ctx context.Context) ([]domain.Candidate, error) {
			return s.scoreByPopularity(ctx, purchased, limit)
		}},
	)
	return chain.Run(ctx)
}

func (s *Content) scoreByAttributes(ctx context.Context, interactedIDs []string, limit int) ([]domain.Candidate, error) {
	if len(interactedIDs) == 0 {
		return nil, nil
	}

	history, err := s.reader.ProductsByIDs(ctx, interactedIDs)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}

	prefs := buildPreferences(history)

	pool, err := s.reader.InStockCandidates(ctx, interactedIDs, candidatePoolSize)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(pool))
	for _, p := range pool {
		score := prefs.score(p)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, candidateFromProduct(p, score))
	}
	return finalize(candidates, limit), nil
}

func (s *Content) scoreByPopularity(ctx context.Context, purchased []string, limit int) ([]domain.Candidate, error) {
	products, err := s.reader.PopularInStock(ctx, purchased, limit)
	if err != nil {
		return nil, err
	}
	candidates := make([]domain.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, candidateFromProduct(p, p.PopularityScore))
	}
	return finalize(candidates, limit), nil
}

type preferences struct {
	categories map[string]struct{}
	authors    map[string]struct{}
	keywords   map[string]struct{}
}

func buildPreferences(history map[string]domain.Product) preferences {
	prefs := preferences{
		categories: map[string]struct{}{},
		authors:    map[string]struct{}{},
		keywords:   map[string]struct{}{},
	}
	for _, p := range history {
		if p.Category != "" {
			prefs.categories[p.Category] = struct{}{}
		}
		if p.Author != "" {
			prefs.authors[p.Author] = struct{}{}
		}
		for _, kw := range extractKeywords(p.Title + " " + p.Description) {
			prefs.keywords[kw] = struct{}{}
		}
	}
	return prefs
}

func (prefs preferences) score(p domain.Product) float64 {
	score := p.PopularityScore
	if _, ok := prefs.categories[p.Category]; ok && p.Category != "" {
		score += categoryWeight
	}
	if _, ok := prefs.authors[p.Author]; ok && p.Author != "" {
		score += authorWeight
	}
	for _, kw := range extractKeywords(p.Title + " " + p.Description) {
		if _, ok := prefs.keywords[kw]; ok {
			score++
		}
	}
	return score
}

// extractKeywords tokenizes free text into a deduplicated lowercase
// keyword bag, dropping short tokens and stopwords.
func extractKeywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	seen := make(map[string]struct{}, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < minKeywordLen {
			continue
		}
		if _, ok := stopwords[f]; ok {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		keywords = append(keywords, f)
	}
	return keywords
}
