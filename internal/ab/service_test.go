package ab

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/bookbarn/recommendation-engine/internal/domain"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type fakeUserLister struct {
	userIDs []int64
	err     error
}

func (f *fakeUserLister) UserIDsPaginated(_ context.Context, page, limit int) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	start := (page - 1) * limit
	if start >= len(f.userIDs) {
		return nil, nil
	}
	end := start + limit
	if end > len(f.userIDs) {
		end = len(f.userIDs)
	}
	return f.userIDs[start:end], nil
}

func (f *fakeUserLister) CountUsers(_ context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.userIDs), nil
}

// unavailableStore fails every call the way the postgres-backed store
// does when the database is down.
type unavailableStore struct{}

func (unavailableStore) GetAssignment(context.Context, int64) (*domain.ModelAssignment, error) {
	return nil, &domain.StoreUnavailableError{Store: "postgres", Err: context.DeadlineExceeded}
}

func (unavailableStore) InsertAssignmentIfAbsent(context.Context, int64, int64) (*domain.ModelAssignment, bool, error) {
	return nil, false, &domain.StoreUnavailableError{Store: "postgres", Err: context.DeadlineExceeded}
}

func (unavailableStore) ActiveModels(context.Context) ([]domain.RecommendationModel, error) {
	return nil, &domain.StoreUnavailableError{Store: "postgres", Err: context.DeadlineExceeded}
}

func TestGetOrAssignSticky(t *testing.T) {
	store := NewMemoryStore(domain.DefaultModels())
	svc := NewService(store, &fakeUserLister{}, testLogger())

	first, err := svc.GetOrAssign(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetOrAssign failed: %v", err)
	}
	if first.UserID != 7 || first.ModelID == 0 || first.ModelName == "" {
		t.Errorf("incomplete assignment: %+v", first)
	}

	for i := 0; i < 10; i++ {
		again, err := svc.GetOrAssign(context.Background(), 7)
		if err != nil {
			t.Fatalf("repeat GetOrAssign failed: %v", err)
		}
		if again.ModelID != first.ModelID {
			t.Fatalf("assignment not sticky: %d then %d", first.ModelID, again.ModelID)
		}
	}
}

func TestGetOrAssignInvalidUser(t *testing.T) {
	svc := NewService(NewMemoryStore(domain.DefaultModels()), &fakeUserLister{}, testLogger())

	for _, uid := range []int64{0, -3} {
		if _, err := svc.GetOrAssign(context.Background(), uid); !domain.IsInvalidArgument(err) {
			t.Errorf("user %d: expected invalid argument, got %v", uid, err)
		}
	}
}

func TestGetOrAssignConcurrentConvergence(t *testing.T) {
	store := NewMemoryStore(domain.DefaultModels())
	svc := NewService(store, &fakeUserLister{}, testLogger())

	const goroutines = 32
	results := make([]int64, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := svc.GetOrAssign(context.Background(), 42)
			if err != nil {
				t.Errorf("GetOrAssign failed: %v", err)
				return
			}
			results[i] = a.ModelID
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("concurrent callers diverged: %d vs %d", results[0], results[i])
		}
	}
}

func TestGetOrAssignDegradedFallback(t *testing.T) {
	svc := NewService(unavailableStore{}, &fakeUserLister{}, testLogger())

	a, err := svc.GetOrAssign(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected in-memory fallback, got error: %v", err)
	}
	if !a.Degraded {
		t.Error("fallback assignment should be flagged degraded")
	}

	// Sticky within the process even while degraded.
	again, err := svc.GetOrAssign(context.Background(), 5)
	if err != nil {
		t.Fatalf("repeat GetOrAssign failed: %v", err)
	}
	if again.ModelID != a.ModelID {
		t.Errorf("degraded assignment not sticky: %d then %d", a.ModelID, again.ModelID)
	}
}

func TestAssignAllEven(t *testing.T) {
	store := NewMemoryStore(domain.DefaultModels())
	users := &fakeUserLister{userIDs: []int64{1, 2, 3, 4, 5, 6}}
	svc := NewService(store, users, testLogger())

	res, err := svc.AssignAllEven(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("AssignAllEven failed: %v", err)
	}
	if res.Assigned != 6 || res.Total != 6 {
		t.Errorf("expected 6/6 assigned, got %d/%d", res.Assigned, res.Total)
	}

	// Round-robin: two users per model.
	perModel := map[int64]int{}
	for _, uid := range users.userIDs {
		a, err := store.GetAssignment(context.Background(), uid)
		if err != nil {
			t.Fatalf("user %d missing assignment: %v", uid, err)
		}
		perModel[a.ModelID]++
	}
	for _, modelID := range []int64{1, 2, 3} {
		if perModel[modelID] != 2 {
			t.Errorf("model %d: expected 2 users, got %d", modelID, perModel[modelID])
		}
	}

	// Second run never overwrites.
	res, err = svc.AssignAllEven(context.Background(), []int64{1})
	if err != nil {
		t.Fatalf("second AssignAllEven failed: %v", err)
	}
	if res.Assigned != 0 {
		t.Errorf("re-run should assign nothing, got %d", res.Assigned)
	}
}

func TestAssignAllEvenEmptyModels(t *testing.T) {
	svc := NewService(NewMemoryStore(domain.DefaultModels()), &fakeUserLister{}, testLogger())

	if _, err := svc.AssignAllEven(context.Background(), nil); !domain.IsInvalidArgument(err) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestAssignAllEvenDegraded(t *testing.T) {
	cause := &domain.StoreUnavailableError{Store: "postgres", Err: context.DeadlineExceeded}
	svc := NewService(unavailableStore{}, &fakeUserLister{err: cause}, testLogger())

	// Seed the fallback with one known user first.
	if _, err := svc.GetOrAssign(context.Background(), 9); err != nil {
		t.Fatalf("GetOrAssign failed: %v", err)
	}

	res, err := svc.AssignAllEven(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("expected degraded result, got error: %v", err)
	}
	if !res.Degraded {
		t.Error("result should be flagged degraded")
	}
	if res.Total != 1 {
		t.Errorf("expected coverage over 1 known user, got %d", res.Total)
	}
}

func TestMemoryStoreInsertIfAbsent(t *testing.T) {
	store := NewMemoryStore(domain.DefaultModels())

	a, inserted, err := store.InsertAssignmentIfAbsent(context.Background(), 1, 2)
	if err != nil || !inserted {
		t.Fatalf("first insert should win: %v inserted=%v", err, inserted)
	}
	if a.ModelName != "content" {
		t.Errorf("expected model name content for id 2, got %q", a.ModelName)
	}

	b, inserted, err := store.InsertAssignmentIfAbsent(context.Background(), 1, 3)
	if err != nil {
		t.Fatalf("second insert failed: %v", err)
	}
	if inserted {
		t.Error("second insert must not win")
	}
	if b.ModelID != 2 {
		t.Errorf("expected existing assignment to model 2, got %d", b.ModelID)
	}
}
