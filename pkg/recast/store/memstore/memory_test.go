package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/store"
)

var _ store.Store = (*Store)(nil)

func TestRunsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := New()

	ingredients := []string{"1 onion"}
	if err := s.SaveRun(ctx, store.Run{ID: "01A", Ingredients: ingredients}); err != nil {
		t.Fatal(err)
	}
	ingredients[0] = "mutated"

	got, err := s.GetRun(ctx, "01A")
	if err != nil {
		t.Fatal(err)
	}
	if got.Ingredients[0] != "1 onion" {
		t.Errorf("stored run shares caller memory: %q", got.Ingredients[0])
	}
}

func TestGetRunNotFound(t *testing.T) {
	if _, err := New().GetRun(context.Background(), "nope"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, id := range []string{"01B", "01A", "01C"} {
		s.SaveRun(ctx, store.Run{ID: id})
	}

	runs, _ := s.ListRuns(ctx, 0)
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "01C" || runs[2].ID != "01A" {
		t.Errorf("order = %s %s %s", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	runs, _ = s.ListRuns(ctx, 1)
	if len(runs) != 1 || runs[0].ID != "01C" {
		t.Errorf("limited = %v", runs)
	}
}

func TestVerdicts(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, _ := s.GetVerdict(ctx, "food", "tofu"); ok {
		t.Fatal("empty store returned a verdict")
	}
	s.PutVerdict(ctx, store.Verdict{Kind: "food", Term: "tofu", OK: true})

	v, ok, err := s.GetVerdict(ctx, "food", "tofu")
	if err != nil || !ok || !v.OK || v.UpdatedAt.IsZero() {
		t.Errorf("GetVerdict = %+v, %v, %v", v, ok, err)
	}
	if _, ok, _ := s.GetVerdict(ctx, "verb", "tofu"); ok {
		t.Error("verdicts must be keyed by kind")
	}
	if s.Verdicts() != 1 {
		t.Errorf("Verdicts = %d", s.Verdicts())
	}
}
