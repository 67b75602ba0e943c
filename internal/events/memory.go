package events

import (
	"sort"
	"sync"
	"time"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

const defaultBufferCap = 10000

// MemoryBuffer keeps events for the process lifetime while the
// persistent store is down. Bounded: once full, the oldest events are
// dropped, which keeps a long outage from exhausting memory at the
// cost of undercounting.
type MemoryBuffer struct {
	mu     sync.Mutex
	events []domain.RecommendationEvent
	cap    int
	nextID int64
}

func NewMemoryBuffer(capacity int) *MemoryBuffer {
	return &MemoryBuffer{cap: capacity, nextID: 1}
}

func (b *MemoryBuffer) Append(ev domain.RecommendationEvent) domain.RecommendationEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	ev.ID = b.nextID
	b.nextID++
	ev.Durable = false
	ev.CreatedAt = time.Now().UTC()

	b.events = append(b.events, ev)
	if len(b.events) > b.cap {
		b.events = b.events[len(b.events)-b.cap:]
	}
	return ev
}

func (b *MemoryBuffer) CountsByModel(modelID int64) []domain.EventCount {
	b.mu.Lock()
	defer b.mu.Unlock()

	byType := map[string]int64{}
	for _, ev := range b.events {
		if ev.ModelID == modelID {
			byType[ev.EventType]++
		}
	}

	counts := make([]domain.EventCount, 0, len(byType))
	for eventType, count := range byType {
		counts = append(counts, domain.EventCount{EventType: eventType, Count: count})
	}
	sortCounts(counts)
	return counts
}

func (b *MemoryBuffer) RecentByUser(userID int64, limit int) []domain.RecommendationEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []domain.RecommendationEvent
	for i := len(b.events) - 1; i >= 0 && len(out) < limit; i-- {
		if b.events[i].UserID == userID {
			out = append(out, b.events[i])
		}
	}
	return out
}

func (b *MemoryBuffer) Stats() *domain.EventStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := &domain.EventStats{
		TotalEvents: int64(len(b.events)),
		ByType:      map[string]int64{},
		ByModel:     map[int64]int64{},
	}
	for _, ev := range b.events {
		stats.ByType[ev.EventType]++
		if ev.ModelID != 0 {
			stats.ByModel[ev.ModelID]++
		}
	}
	return stats
}

// sortCounts orders count descending, event type ascending on ties,
// matching the SQL aggregation.
func sortCounts(counts []domain.EventCount) {
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].EventType < counts[j].EventType
	})
}
