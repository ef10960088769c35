package domain

import "strings"

// Article is the core entity describing one news item; persisted as one row per unique link.
type Article struct {
	UID           int64
	Title         string
	Content       string
	Link          string
	PublishedDate string
}

// ProblemSizes is the closed value set for the problem_size field.
var ProblemSizes = []string{"niche", "global"}

// Industries is the closed value set for the industry field.
var Industries = []string{
	"healthcare",
	"technology",
	"manufacturing",
	"financial_services",
	"education",
	"energy",
	"government",
	"other",
}

// NormalizeCategory prepares a categorical value for storage so that filter
// lookups are exact-match safe: trim, lowercase, spaces to underscores.
func NormalizeCategory(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.ReplaceAll(v, " ", "_")
}

// ValidProblemSize reports whether v is an accepted problem size.
func ValidProblemSize(v string) bool {
	for _, s := range ProblemSizes {
		if v == s {
			return true
		}
	}
	return false
}

// ValidIndustry reports whether v is an accepted industry.
func ValidIndustry(v string) bool {
	for _, s := range Industries {
		if v == s {
			return true
		}
	}
	return false
}
