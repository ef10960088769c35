package scoring

import (
	"math"
	"strconv"
	"strings"

	"newsolvr/internal/domain"
)

// Scorer combines the 13 weighted sub-scores and the decay multiplier into
// 0-100 composite scores. Weights come from configuration; the formula never
// hard-codes them.
type Scorer struct {
	weights     map[string]int
	maxSubscore int
}

// NewScorer builds a scorer from the configured weight table.
func NewScorer(weights map[string]int) *Scorer {
	return &Scorer{weights: weights, maxSubscore: domain.MaxSubscore}
}

// Score computes (original, total). original ignores decay; total applies it.
// Sub-score values may arrive as integers, floats, strings, or nulls from
// storage; anything unusable counts as zero.
func (s *Scorer) Score(subscores map[string]any, decay float64) (int, int) {
	var weightSum int
	var raw float64
	for name, weight := range s.weights {
		weightSum += weight
		raw += float64(weight) * float64(CoerceSubscore(subscores[name]))
	}

	denom := float64(weightSum * s.maxSubscore)
	if denom == 0 {
		return 0, 0
	}

	original := int(math.Round(raw / denom * 100))
	total := int(math.Round(raw * decay / denom * 100))
	return original, total
}

// CoerceSubscore converts a stored sub-score of unknown dynamic type to int.
// Null and garbage coerce to zero so a missing value never crashes a batch.
func CoerceSubscore(v any) int {
	switch value := v.(type) {
	case nil:
		return 0
	case int:
		return value
	case int32:
		return int(value)
	case int64:
		return int(value)
	case float64:
		return int(value)
	case []byte:
		return parseIntString(string(value))
	case string:
		return parseIntString(value)
	default:
		return 0
	}
}

func parseIntString(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
