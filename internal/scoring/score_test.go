package scoring

import (
	"testing"

	"newsolvr/internal/config"
	"newsolvr/internal/domain"
)

func maxSubscores() map[string]any {
	scores := make(map[string]any, len(domain.SubscoreColumns))
	for _, name := range domain.SubscoreColumns {
		scores[name] = int64(domain.MaxSubscore)
	}
	return scores
}

func TestScoreAllMax(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(config.DefaultWeights())

	original, total := scorer.Score(maxSubscores(), 1.0)
	if original != 100 || total != 100 {
		t.Fatalf("all-max with decay 1.0: expected 100/100, got %d/%d", original, total)
	}
}

func TestScoreDecayAppliesOnlyToTotal(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(config.DefaultWeights())

	original, total := scorer.Score(maxSubscores(), 0.80)
	if original != 100 {
		t.Fatalf("original must ignore decay: expected 100, got %d", original)
	}
	if total != 80 {
		t.Fatalf("total with decay 0.80: expected 80, got %d", total)
	}
}

func TestScoreAllZero(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(config.DefaultWeights())

	scores := make(map[string]any)
	for _, name := range domain.SubscoreColumns {
		scores[name] = int64(0)
	}

	original, total := scorer.Score(scores, 1.0)
	if original != 0 || total != 0 {
		t.Fatalf("all-zero: expected 0/0, got %d/%d", original, total)
	}
}

func TestScoreIdempotent(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(config.DefaultWeights())
	scores := maxSubscores()
	scores["frequency"] = int64(3)
	scores["ai_fit"] = int64(2)

	o1, t1 := scorer.Score(scores, 0.95)
	o2, t2 := scorer.Score(scores, 0.95)
	if o1 != o2 || t1 != t2 {
		t.Fatalf("scoring not idempotent: %d/%d vs %d/%d", o1, t1, o2, t2)
	}
}

func TestScoreToleratesStringsAndNulls(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(config.DefaultWeights())

	scores := maxSubscores()
	scores["pain_intensity"] = "5"
	scores["frequency"] = nil
	scores["time_relevancy"] = []byte("5")

	original, _ := scorer.Score(scores, 1.0)
	// frequency (weight 1) dropped to 0: raw 115 of 120 rounds to 96.
	want := 96
	if original != want {
		t.Fatalf("expected %d, got %d", want, original)
	}
}

func TestCoerceSubscore(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{int64(4), 4},
		{3, 3},
		{4.0, 4},
		{"5", 5},
		{" 2 ", 2},
		{"3.0", 3},
		{"garbage", 0},
		{[]byte("1"), 1},
		{struct{}{}, 0},
	}

	for _, tc := range cases {
		if got := CoerceSubscore(tc.in); got != tc.want {
			t.Fatalf("coerce %v: expected %d, got %d", tc.in, tc.want, got)
		}
	}
}
