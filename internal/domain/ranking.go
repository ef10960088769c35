package domain

// ScoreRow carries the raw inputs the aggregate scorer needs for one article.
// Sub-score values arrive as whatever the store returns (integers, strings,
// nulls); coercion is the scorer's job.
type ScoreRow struct {
	UID           int64
	Subscores     map[string]any
	PublishedDate string
}

// RankedProblem is one entry of the web view's top-ranked listing.
type RankedProblem struct {
	Summary     string `json:"problem_summary"`
	Statement   string `json:"problem_statement"`
	Link        string `json:"link"`
	Score       int    `json:"score"`
	ProblemSize string `json:"problem_size"`
	Industry    string `json:"industry"`
}
