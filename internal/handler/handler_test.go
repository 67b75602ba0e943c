package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/ab"
	"github.com/bookbarn/recommendation-engine/internal/domain"
	"github.com/bookbarn/recommendation-engine/internal/events"
	"github.com/bookbarn/recommendation-engine/internal/service"
	"github.com/bookbarn/recommendation-engine/internal/strategy"
)

type fixedStrategy struct {
	name string
	recs []domain.Candidate
}

func (f fixedStrategy) Name() string { return f.name }

func (f fixedStrategy) Score(context.Context, int64, int) ([]domain.Candidate, error) {
	return f.recs, nil
}

type emptyGraphReader struct{}

func (emptyGraphReader) CoPurchased(context.Context, int64, int) ([]domain.Candidate, error) {
	return nil, nil
}
func (emptyGraphReader) ViewedCoPurchased(context.Context, int64, int) ([]domain.Candidate, error) {
	return nil, nil
}
func (emptyGraphReader) MostPurchased(context.Context, int) ([]domain.Candidate, error) {
	return nil, nil
}
func (emptyGraphReader) AnyInStock(context.Context, int) ([]domain.Candidate, error) {
	return nil, nil
}
func (emptyGraphReader) CategoryAffinity(context.Context, int64, int) ([]domain.Candidate, error) {
	return nil, nil
}

type noProducts struct{}

func (noProducts) ProductsByIDs(context.Context, []string) (map[string]domain.Product, error) {
	return map[string]domain.Product{}, nil
}

type noCache struct{}

func (noCache) Get(context.Context, int64, string, int) ([]domain.Candidate, bool, error) {
	return nil, false, nil
}

func (noCache) Set(context.Context, int64, string, int, []domain.Candidate) error {
	return nil
}

type fakeUsers struct{ ids []int64 }

func (f fakeUsers) UserIDsPaginated(_ context.Context, page, limit int) ([]int64, error) {
	if page > 1 {
		return nil, nil
	}
	return f.ids, nil
}

func (f fakeUsers) CountUsers(context.Context) (int, error) { return len(f.ids), nil }

// eventSink is a minimal working event store.
type eventSink struct {
	stored []domain.RecommendationEvent
}

func (s *eventSink) AppendEvent(_ context.Context, ev domain.RecommendationEvent) (domain.RecommendationEvent, error) {
	ev.ID = int64(len(s.stored) + 1)
	ev.Durable = true
	ev.CreatedAt = time.Now().UTC()
	s.stored = append(s.stored, ev)
	return ev, nil
}

func (s *eventSink) CountsByModel(context.Context, int64) ([]domain.EventCount, error) {
	return nil, nil
}

func (s *eventSink) RecentEventsByUser(context.Context, int64, int) ([]domain.RecommendationEvent, error) {
	return nil, nil
}

func (s *eventSink) OverallStats(context.Context) (*domain.EventStats, error) {
	return &domain.EventStats{ByType: map[string]int64{}, ByModel: map[int64]int64{}}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := zap.NewNop().Sugar()

	collab := fixedStrategy{name: strategy.NameCollab, recs: []domain.Candidate{
		{ProductID: "B1", Score: 2, Title: "First Pick"},
	}}
	content := fixedStrategy{name: strategy.NameContent}
	graph := strategy.NewGraph(emptyGraphReader{}, noProducts{}, log)

	abSvc := ab.NewService(ab.NewMemoryStore(domain.DefaultModels()), fakeUsers{ids: []int64{1, 2, 3}}, log)
	eventSvc := events.NewService(&eventSink{}, log)
	svc := service.NewService(abSvc, noCache{}, eventSvc, collab, content, graph, 10, log)

	h := NewHandler(svc, abSvc, eventSvc)

	r := chi.NewRouter()
	r.Get("/recommendations/{userID}", h.GetRecommendations)
	r.Get("/recommendations/{userID}/category", h.GetCategoryRecommendations)
	r.Get("/ab/user/{userID}", h.GetUserAssignment)
	r.Post("/ab/assign-all", h.AssignAll)
	r.Post("/events", h.LogEvent)
	r.Get("/events/model/{modelID}/counts", h.GetModelEventCounts)
	r.Get("/events/user/{userID}", h.GetUserEvents)
	r.Get("/events/stats", h.GetEventStats)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetRecommendationsOK(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/recommendations/1?model=collab", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RecommendationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.UserID != 1 || resp.Model != "collab" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
	if resp.Metadata.TotalCount != 1 || len(resp.Recommendations) != 1 {
		t.Errorf("expected 1 recommendation, got %+v", resp)
	}
}

func TestGetRecommendationsBadUserID(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{"/recommendations/abc", "/recommendations/-1", "/recommendations/0"} {
		rec := doRequest(t, router, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestGetRecommendationsBadLimit(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/recommendations/1?limit=0",
		"/recommendations/1?limit=-5",
		"/recommendations/1?limit=999",
		"/recommendations/1?limit=abc",
	} {
		rec := doRequest(t, router, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestGetRecommendationsUnknownModel(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/recommendations/1?model=neural", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Error != "unsupported_model" {
		t.Errorf("expected unsupported_model, got %q", resp.Error)
	}
}

func TestGetRecommendationsAliasAccepted(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/recommendations/1?model=collaborative", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for alias, got %d", rec.Code)
	}

	var resp RecommendationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Model != "collab" {
		t.Errorf("alias should fold to collab, got %q", resp.Model)
	}
}

func TestGetUserAssignment(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/ab/user/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AssignmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Assignment == nil || resp.Assignment.UserID != 7 || resp.Assignment.ModelName == "" {
		t.Errorf("incomplete assignment: %+v", resp.Assignment)
	}
}

func TestAssignAll(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/ab/assign-all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ab.BulkAssignResult
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Assigned != 3 || resp.Total != 3 {
		t.Errorf("expected 3/3, got %d/%d", resp.Assigned, resp.Total)
	}
}

func TestAssignAllBadModels(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/ab/assign-all?models=1,abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestLogEvent(t *testing.T) {
	router := newTestRouter(t)

	body := `{"user_id":1,"product_id":"B1","model_id":1,"event_type":"click"}`
	rec := doRequest(t, router, http.MethodPost, "/events", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp EventResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.OK || resp.Event == nil || resp.Event.ID == 0 {
		t.Errorf("expected stored event back, got %+v", resp)
	}
}

func TestLogEventMissingType(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/events", `{"user_id":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestLogEventBadBody(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/events", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetModelEventCounts(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/events/model/1/counts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp EventCountsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.OK || resp.Counts == nil {
		t.Errorf("counts must be an empty array, never null: %+v", resp)
	}

	rec = doRequest(t, router, http.MethodGet, "/events/model/abc/counts", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad model id, got %d", rec.Code)
	}
}

func TestGetEventStats(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/events/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp EventStatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.OK || resp.Stats == nil {
		t.Errorf("expected stats payload, got %+v", resp)
	}
}
