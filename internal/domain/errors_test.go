package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsInvalidArgument(t *testing.T) {
	err := &InvalidArgumentError{Msg: "user id must be a positive integer"}

	if !IsInvalidArgument(err) {
		t.Error("should detect InvalidArgumentError")
	}
	if !IsInvalidArgument(fmt.Errorf("handler: %w", err)) {
		t.Error("should detect wrapped InvalidArgumentError")
	}
	if IsInvalidArgument(errors.New("random error")) {
		t.Error("should not detect plain error")
	}
}

func TestIsStoreUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := &StoreUnavailableError{Store: "postgres", Err: cause}

	if !IsStoreUnavailable(err) {
		t.Error("should detect StoreUnavailableError")
	}
	if !errors.Is(err, cause) {
		t.Error("should unwrap to the cause")
	}
	if IsStoreUnavailable(errors.New("random error")) {
		t.Error("should not detect plain error")
	}
}

func TestSortCandidatesDeterministic(t *testing.T) {
	cs := []Candidate{
		{ProductID: "B2", Score: 5},
		{ProductID: "B3", Score: 7},
		{ProductID: "B1", Score: 5},
	}
	SortCandidates(cs)

	want := []string{"B3", "B1", "B2"}
	for i, id := range want {
		if cs[i].ProductID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, cs[i].ProductID)
		}
	}
}
