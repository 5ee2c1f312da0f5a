package matching

import (
	"testing"

	"github.com/google/uuid"
)

func TestRank_FiltersBelowThreshold(t *testing.T) {
	keep := uuid.New()
	drop := uuid.New()

	out := Rank([]Match{
		{RoleID: keep, Score: 0.92},
		{RoleID: drop, Score: 0.5},
	}, MinRelevanceScore, 0)

	if len(out) != 1 {
		t.Fatalf("expected 1 match, got %d", len(out))
	}
	if out[0].RoleID != keep {
		t.Fatalf("unexpected role kept")
	}
}

func TestRank_ExactThresholdKept(t *testing.T) {
	out := Rank([]Match{{RoleID: uuid.New(), Score: MinRelevanceScore}}, MinRelevanceScore, 0)
	if len(out) != 1 {
		t.Fatalf("score equal to threshold should be kept")
	}
}

func TestRank_SortsDescendingAndTruncates(t *testing.T) {
	out := Rank([]Match{
		{RoleID: uuid.New(), Score: 0.71},
		{RoleID: uuid.New(), Score: 0.99},
		{RoleID: uuid.New(), Score: 0.85},
		{RoleID: uuid.New(), Score: 0.80},
	}, MinRelevanceScore, 3)

	if len(out) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Fatalf("matches not sorted descending: %v", out)
		}
	}
	if out[0].Score != 0.99 {
		t.Fatalf("expected best score first, got %f", out[0].Score)
	}
}

func TestRank_StableForEqualScores(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	out := Rank([]Match{
		{RoleID: first, Score: 0.8},
		{RoleID: second, Score: 0.8},
	}, MinRelevanceScore, 0)

	if out[0].RoleID != first || out[1].RoleID != second {
		t.Fatal("equal scores should keep input order")
	}
}

func TestRank_DropsNilIDs(t *testing.T) {
	out := Rank([]Match{{RoleID: uuid.Nil, Score: 0.99}}, MinRelevanceScore, 0)
	if len(out) != 0 {
		t.Fatalf("nil role ids should be dropped, got %d", len(out))
	}
}

func TestRank_EmptyInput(t *testing.T) {
	if out := Rank(nil, MinRelevanceScore, 5); len(out) != 0 {
		t.Fatalf("expected empty result, got %d", len(out))
	}
}
