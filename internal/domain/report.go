package domain

import (
	"fmt"
	"strings"
)

// SubscoreColumns lists the 13 numeric sub-score columns in storage order.
// The analyzer prompt calls the competition dimension "differentiation_potential";
// it lands in the competition column.
var SubscoreColumns = []string{
	"meaningful_problem",
	"pain_intensity",
	"frequency",
	"market_growth",
	"willingness_to_pay",
	"target_customer_clarity",
	"problem_awareness",
	"competition",
	"software_solution",
	"ai_fit",
	"speed_to_mvp",
	"business_potential",
	"time_relevancy",
}

// MaxSubscore bounds every sub-score; the lower bound is 0.
const MaxSubscore = 5

// ProblemReport is the strict shape the model must return for one article.
type ProblemReport struct {
	ProblemSummary   string `json:"problem_summary"`
	ProblemStatement string `json:"problem_statement"`

	MeaningfulProblem     int `json:"meaningful_problem"`
	PainIntensity         int `json:"pain_intensity"`
	Frequency             int `json:"frequency"`
	MarketGrowth          int `json:"market_growth"`
	WillingnessToPay      int `json:"willingness_to_pay"`
	TargetCustomerClarity int `json:"target_customer_clarity"`
	ProblemAwareness      int `json:"problem_awareness"`
	Competition           int `json:"differentiation_potential"`
	SoftwareSolution      int `json:"software_solution"`
	AIFit                 int `json:"ai_fit"`
	SpeedToMVP            int `json:"speed_to_mvp"`
	BusinessPotential     int `json:"business_potential"`
	TimeRelevancy         int `json:"time_relevancy"`

	ProblemSize string `json:"problem_size"`
	Industry    string `json:"industry"`
}

// AnalysisError marks a model response that failed parsing or validation.
// The affected article is skipped; the row is never partially written.
type AnalysisError struct {
	Field  string
	Reason string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis report invalid: field %s: %s", e.Field, e.Reason)
}

// Subscores returns the sub-score values keyed by column name.
func (r ProblemReport) Subscores() map[string]int {
	return map[string]int{
		"meaningful_problem":      r.MeaningfulProblem,
		"pain_intensity":          r.PainIntensity,
		"frequency":               r.Frequency,
		"market_growth":           r.MarketGrowth,
		"willingness_to_pay":      r.WillingnessToPay,
		"target_customer_clarity": r.TargetCustomerClarity,
		"problem_awareness":       r.ProblemAwareness,
		"competition":             r.Competition,
		"software_solution":       r.SoftwareSolution,
		"ai_fit":                  r.AIFit,
		"speed_to_mvp":            r.SpeedToMVP,
		"business_potential":      r.BusinessPotential,
		"time_relevancy":          r.TimeRelevancy,
	}
}

// Validate normalizes categorical fields and checks every field against the
// schema bounds. A failed check yields an AnalysisError describing the field.
func (r *ProblemReport) Validate() error {
	if strings.TrimSpace(r.ProblemSummary) == "" {
		return &AnalysisError{Field: "problem_summary", Reason: "empty"}
	}
	if strings.TrimSpace(r.ProblemStatement) == "" {
		return &AnalysisError{Field: "problem_statement", Reason: "empty"}
	}

	for name, value := range r.Subscores() {
		if value < 0 || value > MaxSubscore {
			return &AnalysisError{Field: name, Reason: fmt.Sprintf("value %d out of range [0,%d]", value, MaxSubscore)}
		}
	}

	r.ProblemSize = NormalizeCategory(r.ProblemSize)
	if !ValidProblemSize(r.ProblemSize) {
		return &AnalysisError{Field: "problem_size", Reason: fmt.Sprintf("unknown value %q", r.ProblemSize)}
	}

	r.Industry = NormalizeCategory(r.Industry)
	if !ValidIndustry(r.Industry) {
		return &AnalysisError{Field: "industry", Reason: fmt.Sprintf("unknown value %q", r.Industry)}
	}

	return nil
}
