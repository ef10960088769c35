package scoring

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// unparseableAgeDays is the age assigned when the published date cannot be
// parsed: maximum decay penalty, not an error.
const unparseableAgeDays = 365

var decayTable = map[int]float64{
	0: 1.00,
	1: 0.99,
	2: 0.95,
	3: 0.90,
	4: 0.80,
}

// minDecay applies to any age of five days or more.
const minDecay = 0.80

// ParsePublishedDate parses the stored publication date leniently: RFC-3339
// (with or without offset), a bare YYYY-MM-DD, or anything dateparse can
// resolve. Reports false when nothing matches.
func ParsePublishedDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	// Offset-less timestamps are assumed UTC.
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), true
	}
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.UTC(), true
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// AgeDays returns the age of the publication in days relative to ref,
// floored at zero so future timestamps never yield a negative age.
func AgeDays(published string, ref time.Time) float64 {
	parsed, ok := ParsePublishedDate(published)
	if !ok {
		return unparseableAgeDays
	}
	days := ref.Sub(parsed).Hours() / 24
	if days < 0 {
		return 0
	}
	return days
}

// Decay maps a publication date to a multiplier in [0,1] favoring recency.
// Pure and deterministic; ref is injectable to keep it testable.
func Decay(published string, ref time.Time) float64 {
	days := AgeDays(published, ref)
	if days <= 4 {
		return decayTable[int(days)]
	}
	return minDecay
}
