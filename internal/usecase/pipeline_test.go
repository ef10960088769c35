package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsolvr/internal/config"
	"newsolvr/internal/domain"
	"newsolvr/internal/scoring"
)

type fakeSource struct {
	windows  [][2]time.Time
	articles []domain.Article
	err      error
}

func (f *fakeSource) FetchWindow(_ context.Context, _ string, from, to time.Time) ([]domain.Article, error) {
	f.windows = append(f.windows, [2]time.Time{from, to})
	return f.articles, f.err
}

type fakeStore struct {
	inserted    []domain.Article
	unanalyzed  []domain.Article
	contents    map[int64]string
	analyses    map[int64]domain.ProblemReport
	scoreRows   []domain.ScoreRow
	scores      map[int64][2]int
	dedupWindow int
	threshold   int
	dedupErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contents: map[int64]string{},
		analyses: map[int64]domain.ProblemReport{},
		scores:   map[int64][2]int{},
	}
}

func (f *fakeStore) InsertArticle(_ context.Context, article domain.Article) error {
	f.inserted = append(f.inserted, article)
	return nil
}

func (f *fakeStore) UnanalyzedArticles(_ context.Context) ([]domain.Article, error) {
	return f.unanalyzed, nil
}

func (f *fakeStore) UpdateContent(_ context.Context, uid int64, content string) error {
	f.contents[uid] = content
	return nil
}

func (f *fakeStore) SaveAnalysis(_ context.Context, uid int64, report domain.ProblemReport) error {
	f.analyses[uid] = report
	return nil
}

func (f *fakeStore) DeleteRecentDuplicates(_ context.Context, windowDays int) (int64, error) {
	f.dedupWindow = windowDays
	if f.dedupErr != nil {
		return 0, f.dedupErr
	}
	return 2, nil
}

func (f *fakeStore) ScoreRows(_ context.Context) ([]domain.ScoreRow, error) {
	return f.scoreRows, nil
}

func (f *fakeStore) UpdateScores(_ context.Context, uid int64, originalScore, totalScore int) error {
	f.scores[uid] = [2]int{originalScore, totalScore}
	return nil
}

func (f *fakeStore) DeleteBelowThreshold(_ context.Context, threshold int) (int64, error) {
	f.threshold = threshold
	return 1, nil
}

func (f *fakeStore) TopRanked(_ context.Context, _ int, _, _ string) ([]domain.RankedProblem, error) {
	return nil, nil
}

type fakeEnricher struct {
	texts map[string]string
	calls []string
}

func (f *fakeEnricher) Enrich(_ context.Context, link string) (string, error) {
	f.calls = append(f.calls, link)
	text, ok := f.texts[link]
	if !ok {
		return "", errors.New("fetch failed")
	}
	return text, nil
}

type fakeAnalyzer struct {
	calls   int
	failUID bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string) (domain.ProblemReport, error) {
	f.calls++
	if f.failUID && text == "broken" {
		return domain.ProblemReport{}, errors.New("model refused")
	}
	return domain.ProblemReport{
		ProblemSummary:   "summary",
		ProblemStatement: "statement",
		ProblemSize:      "niche",
		Industry:         "technology",
	}, nil
}

func testConfig() (config.PipelineConfig, config.GeminiConfig, config.ScrapeConfig, config.ScoringConfig) {
	pipeline := config.PipelineConfig{
		Topic:           "technology",
		Iterations:      2,
		LagMinutes:      30,
		WindowMinutes:   60,
		DedupWindowDays: 3,
	}
	gemini := config.GeminiConfig{RequestsPerMinute: 60, RequestsPerDay: 100}
	scrape := config.ScrapeConfig{DelaySeconds: 0}
	scoringCfg := config.ScoringConfig{Weights: config.DefaultWeights(), QualityThreshold: 85}
	return pipeline, gemini, scrape, scoringCfg
}

func newTestPipeline(store *fakeStore, mutate func(*PipelineDeps)) *Pipeline {
	pipelineCfg, geminiCfg, scrapeCfg, scoringCfg := testConfig()
	deps := PipelineDeps{
		Source:   &fakeSource{},
		Store:    store,
		Enricher: &fakeEnricher{texts: map[string]string{}},
		Analyzer: &fakeAnalyzer{},
		Scorer:   scoring.NewScorer(scoringCfg.Weights),
		Pipeline: pipelineCfg,
		Gemini:   geminiCfg,
		Scrape:   scrapeCfg,
		Scoring:  scoringCfg,
		Clock:    func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) },
		Sleep:    func(time.Duration) {},
	}
	if mutate != nil {
		mutate(&deps)
	}
	return NewPipeline(deps)
}

func TestRunExecutesAllStagesInOrder(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	pipeline := newTestPipeline(store, nil)

	report := pipeline.Run(context.Background())

	want := []StageName{StageExtract, StageDeduplicate, StageEnrich, StageAnalyze, StageScore, StageCleanup}
	if len(report.Stages) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(report.Stages))
	}
	for i, name := range want {
		if report.Stages[i].Stage != name {
			t.Fatalf("stage %d: expected %s, got %s", i, name, report.Stages[i].Stage)
		}
	}
	if failed := report.Failed(); len(failed) != 0 {
		t.Fatalf("unexpected failed stages: %+v", failed)
	}
	if store.dedupWindow != 3 {
		t.Fatalf("dedup window not passed through, got %d", store.dedupWindow)
	}
	if store.threshold != 85 {
		t.Fatalf("cleanup threshold not passed through, got %d", store.threshold)
	}
}

func TestExtractWalksWindowsBackward(t *testing.T) {
	t.Parallel()

	source := &fakeSource{articles: []domain.Article{
		{Title: "A", Link: "https://example.com/a", PublishedDate: "2025-03-15"},
	}}
	store := newFakeStore()
	pipeline := newTestPipeline(store, func(d *PipelineDeps) { d.Source = source })

	processed, err := pipeline.extract(context.Background())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if processed != 2 {
		t.Fatalf("expected 2 inserts over 2 iterations, got %d", processed)
	}
	if len(source.windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(source.windows))
	}

	first := source.windows[0]
	second := source.windows[1]
	if !first[1].Equal(time.Date(2025, 3, 15, 11, 30, 0, 0, time.UTC)) {
		t.Fatalf("first window must end at now minus lag, got %v", first[1])
	}
	if got := first[1].Sub(first[0]); got != time.Hour {
		t.Fatalf("window width must be one hour, got %v", got)
	}
	if !second[1].Equal(first[0]) {
		t.Fatalf("second window must abut the first, got %v vs %v", second[1], first[0])
	}
}

func TestStageFailureDoesNotAbortRun(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.dedupErr = errors.New("disk full")
	pipeline := newTestPipeline(store, nil)

	report := pipeline.Run(context.Background())

	failed := report.Failed()
	if len(failed) != 1 || failed[0].Stage != StageDeduplicate {
		t.Fatalf("expected only dedup to fail, got %+v", failed)
	}
	if store.threshold != 85 {
		t.Fatal("cleanup did not run after an earlier stage failed")
	}
}

func TestEnrichSkipsRowsWithContent(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.unanalyzed = []domain.Article{
		{UID: 1, Link: "https://example.com/full", Content: "already here"},
		{UID: 2, Link: "https://example.com/empty", Content: ""},
		{UID: 3, Link: "https://example.com/dead", Content: " "},
	}
	enricher := &fakeEnricher{texts: map[string]string{
		"https://example.com/empty": "fetched text",
	}}
	pipeline := newTestPipeline(store, func(d *PipelineDeps) { d.Enricher = enricher })

	filled, err := pipeline.enrich(context.Background())
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if filled != 1 {
		t.Fatalf("expected 1 filled row, got %d", filled)
	}
	if len(enricher.calls) != 2 {
		t.Fatalf("expected 2 fetch attempts, got %d", len(enricher.calls))
	}
	if store.contents[1] != "" {
		t.Fatal("row with content must not be overwritten")
	}
	if store.contents[2] != "fetched text" {
		t.Fatalf("fetched text not stored: %q", store.contents[2])
	}
	if _, ok := store.contents[3]; ok {
		t.Fatal("failed fetch must not write content")
	}
}

func TestAnalyzeStopsAtDailyBudget(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	for i := int64(1); i <= 5; i++ {
		store.unanalyzed = append(store.unanalyzed, domain.Article{UID: i, Content: "text"})
	}
	analyzer := &fakeAnalyzer{}
	pipeline := newTestPipeline(store, func(d *PipelineDeps) {
		d.Analyzer = analyzer
		d.Gemini.RequestsPerDay = 3
	})

	analyzed, err := pipeline.analyze(context.Background())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analyzed != 3 {
		t.Fatalf("expected 3 analyzed rows at the cap, got %d", analyzed)
	}
	if analyzer.calls != 3 {
		t.Fatalf("expected 3 model calls, got %d", analyzer.calls)
	}
}

func TestAnalyzeSkipsBlankContentWithoutSpendingBudget(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.unanalyzed = []domain.Article{
		{UID: 1, Content: ""},
		{UID: 2, Content: "   "},
		{UID: 3, Content: "real text"},
	}
	analyzer := &fakeAnalyzer{}
	pipeline := newTestPipeline(store, func(d *PipelineDeps) { d.Analyzer = analyzer })

	analyzed, err := pipeline.analyze(context.Background())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analyzed != 1 {
		t.Fatalf("expected 1 analyzed row, got %d", analyzed)
	}
	if analyzer.calls != 1 {
		t.Fatalf("blank rows must not reach the model, got %d calls", analyzer.calls)
	}
	if _, ok := store.analyses[3]; !ok {
		t.Fatal("non-blank row was not analyzed")
	}
}

func TestAnalyzeSkipsFailedArticleOnly(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.unanalyzed = []domain.Article{
		{UID: 1, Content: "broken"},
		{UID: 2, Content: "fine"},
	}
	analyzer := &fakeAnalyzer{failUID: true}
	pipeline := newTestPipeline(store, func(d *PipelineDeps) { d.Analyzer = analyzer })

	analyzed, err := pipeline.analyze(context.Background())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analyzed != 1 {
		t.Fatalf("expected 1 analyzed row, got %d", analyzed)
	}
	if _, ok := store.analyses[1]; ok {
		t.Fatal("failed analysis must not be saved")
	}
	if _, ok := store.analyses[2]; !ok {
		t.Fatal("healthy row after a failure was not analyzed")
	}
}

func TestScoreAppliesDecayPerRow(t *testing.T) {
	t.Parallel()

	maxed := map[string]any{}
	for _, column := range domain.SubscoreColumns {
		maxed[column] = 5
	}

	store := newFakeStore()
	store.scoreRows = []domain.ScoreRow{
		{UID: 1, Subscores: maxed, PublishedDate: "2025-03-15"},
		{UID: 2, Subscores: maxed, PublishedDate: "2025-03-11"},
	}
	pipeline := newTestPipeline(store, nil)

	scored, err := pipeline.score(context.Background())
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if scored != 2 {
		t.Fatalf("expected 2 scored rows, got %d", scored)
	}

	if got := store.scores[1]; got != [2]int{100, 100} {
		t.Fatalf("fresh row: expected 100/100, got %v", got)
	}
	if got := store.scores[2]; got != [2]int{100, 80} {
		t.Fatalf("four-day-old row: expected 100/80, got %v", got)
	}
}

func TestRunWithoutAnalyzerSkipsAnalysis(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.unanalyzed = []domain.Article{{UID: 1, Content: "text"}}
	pipeline := newTestPipeline(store, func(d *PipelineDeps) { d.Analyzer = nil })

	report := pipeline.Run(context.Background())
	if failed := report.Failed(); len(failed) != 0 {
		t.Fatalf("missing analyzer must not fail the run: %+v", failed)
	}
	if len(store.analyses) != 0 {
		t.Fatal("no analysis should happen without an analyzer")
	}
}
