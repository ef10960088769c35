package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsolvr/internal/config"
	"newsolvr/internal/ports"
	"newsolvr/internal/scoring"
)

// StageName identifies one of the six ordered pipeline stages.
type StageName string

const (
	StageExtract     StageName = "extract"
	StageDeduplicate StageName = "deduplicate"
	StageEnrich      StageName = "enrich"
	StageAnalyze     StageName = "analyze"
	StageScore       StageName = "score"
	StageCleanup     StageName = "cleanup"
)

// StageResult records the outcome of one stage. A stage error is data, not
// control flow: the run always proceeds to the next stage.
type StageResult struct {
	Stage     StageName
	Processed int
	Duration  time.Duration
	Err       error
}

// RunReport aggregates one full pipeline run.
type RunReport struct {
	Started  time.Time
	Finished time.Time
	Stages   []StageResult
}

// Failed returns the stages that ended in error.
func (r RunReport) Failed() []StageResult {
	var failed []StageResult
	for _, s := range r.Stages {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.ArticleSource
	Store    ports.ArticleStore
	Enricher ports.ContentEnricher
	Analyzer ports.Analyzer
	Scorer   *scoring.Scorer

	Pipeline config.PipelineConfig
	Gemini   config.GeminiConfig
	Scrape   config.ScrapeConfig
	Scoring  config.ScoringConfig

	Logger *slog.Logger
	Clock  func() time.Time
	Sleep  func(time.Duration)
}

// Pipeline sequences extraction, deduplication, enrichment, analysis,
// scoring, and cleanup. Every stage is independently idempotent, so a killed
// run leaves the store valid and the next run picks up the remainder.
type Pipeline struct {
	source   ports.ArticleSource
	store    ports.ArticleStore
	enricher ports.ContentEnricher
	analyzer ports.Analyzer
	scorer   *scoring.Scorer

	cfg      config.PipelineConfig
	gemini   config.GeminiConfig
	scrape   config.ScrapeConfig
	scoreCfg config.ScoringConfig

	logger *slog.Logger
	clock  func() time.Time
	sleep  func(time.Duration)
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	return &Pipeline{
		source:   deps.Source,
		store:    deps.Store,
		enricher: deps.Enricher,
		analyzer: deps.Analyzer,
		scorer:   deps.Scorer,
		cfg:      deps.Pipeline,
		gemini:   deps.Gemini,
		scrape:   deps.Scrape,
		scoreCfg: deps.Scoring,
		logger:   deps.Logger,
		clock:    clock,
		sleep:    sleep,
	}
}

// Run executes one full pass and reports per-stage outcomes. A failing stage
// is recorded and logged; it never aborts the run.
func (p *Pipeline) Run(ctx context.Context) RunReport {
	report := RunReport{Started: p.clock()}

	stages := []struct {
		name StageName
		fn   func(context.Context) (int, error)
	}{
		{StageExtract, p.extract},
		{StageDeduplicate, p.deduplicate},
		{StageEnrich, p.enrich},
		{StageAnalyze, p.analyze},
		{StageScore, p.score},
		{StageCleanup, p.cleanup},
	}

	for _, stage := range stages {
		report.Stages = append(report.Stages, p.runStage(ctx, stage.name, stage.fn))
	}

	report.Finished = p.clock()
	return report
}

func (p *Pipeline) runStage(ctx context.Context, name StageName, fn func(context.Context) (int, error)) StageResult {
	start := p.clock()
	processed, err := fn(ctx)
	result := StageResult{
		Stage:     name,
		Processed: processed,
		Duration:  p.clock().Sub(start),
		Err:       err,
	}

	if err != nil {
		p.error("stage failed", "stage", name, "processed", processed, "error", err)
	} else {
		p.info("stage complete", "stage", name, "processed", processed)
	}
	return result
}

// extract runs every provider over N extraction windows walking backward in
// time from now minus the provider lag.
func (p *Pipeline) extract(ctx context.Context) (int, error) {
	if p.source == nil {
		return 0, fmt.Errorf("article source is not configured")
	}

	window := time.Duration(p.cfg.WindowMinutes) * time.Minute
	lag := time.Duration(p.cfg.LagMinutes) * time.Minute

	to := p.clock().Add(-lag)
	from := to.Add(-window)

	inserted := 0
	for i := 0; i < p.cfg.Iterations; i++ {
		articles, err := p.source.FetchWindow(ctx, p.cfg.Topic, from, to)
		if err != nil {
			return inserted, fmt.Errorf("fetch window %d: %w", i, err)
		}

		for _, article := range articles {
			if err := p.store.InsertArticle(ctx, article); err != nil {
				return inserted, fmt.Errorf("persist article %s: %w", article.Link, err)
			}
			inserted++
		}

		from = from.Add(-window)
		to = to.Add(-window)
	}
	return inserted, nil
}

// deduplicate collapses same-titled rows in the trailing window, keeping the
// earliest by published date.
func (p *Pipeline) deduplicate(ctx context.Context) (int, error) {
	deleted, err := p.store.DeleteRecentDuplicates(ctx, p.cfg.DedupWindowDays)
	if err != nil {
		return 0, fmt.Errorf("delete duplicates: %w", err)
	}
	return int(deleted), nil
}

// enrich fills empty content from the article's own page. Rows that already
// carry content are skipped without a network call; a failing fetch skips the
// row, not the batch.
func (p *Pipeline) enrich(ctx context.Context) (int, error) {
	if p.enricher == nil {
		p.info("enricher not configured; skipping")
		return 0, nil
	}

	rows, err := p.store.UnanalyzedArticles(ctx)
	if err != nil {
		return 0, fmt.Errorf("load unanalyzed: %w", err)
	}

	delay := time.Duration(p.scrape.DelaySeconds) * time.Second

	filled := 0
	for _, row := range rows {
		if strings.TrimSpace(row.Content) != "" {
			continue
		}

		text, err := p.enricher.Enrich(ctx, row.Link)
		if err != nil {
			p.warn("enrich failed", "link", row.Link, "error", err)
			p.sleep(delay)
			continue
		}

		if err := p.store.UpdateContent(ctx, row.UID, text); err != nil {
			return filled, fmt.Errorf("update content for %d: %w", row.UID, err)
		}
		filled++
		p.sleep(delay)
	}
	return filled, nil
}

// analyze sends unanalyzed rows to the model, capped at the daily request
// budget. Hitting the cap is a normal early stop, not an error; a bad model
// response skips that article only.
func (p *Pipeline) analyze(ctx context.Context) (int, error) {
	if p.analyzer == nil {
		p.info("analyzer not configured; skipping")
		return 0, nil
	}

	rows, err := p.store.UnanalyzedArticles(ctx)
	if err != nil {
		return 0, fmt.Errorf("load unanalyzed: %w", err)
	}

	pause := time.Duration(0)
	if p.gemini.RequestsPerMinute > 0 {
		pause = time.Minute / time.Duration(p.gemini.RequestsPerMinute)
	}

	requests := 0
	analyzed := 0
	for _, row := range rows {
		if requests >= p.gemini.RequestsPerDay {
			p.info("daily analysis budget reached", "requests", requests)
			break
		}
		if strings.TrimSpace(row.Content) == "" {
			continue
		}

		report, err := p.analyzer.Analyze(ctx, row.Content)
		requests++
		if err != nil {
			p.warn("analysis failed", "uid", row.UID, "error", err)
			p.sleep(pause)
			continue
		}

		if err := p.store.SaveAnalysis(ctx, row.UID, report); err != nil {
			return analyzed, fmt.Errorf("save analysis for %d: %w", row.UID, err)
		}
		analyzed++
		p.sleep(pause)
	}
	return analyzed, nil
}

// score recomputes both composite scores for every analyzed row. The whole
// set is recomputed each run; re-running on unchanged inputs is a no-op in
// effect.
func (p *Pipeline) score(ctx context.Context) (int, error) {
	if p.scorer == nil {
		return 0, fmt.Errorf("scorer is not configured")
	}

	rows, err := p.store.ScoreRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("load score rows: %w", err)
	}

	now := p.clock()
	scored := 0
	for _, row := range rows {
		decay := scoring.Decay(row.PublishedDate, now)
		original, total := p.scorer.Score(row.Subscores, decay)
		if err := p.store.UpdateScores(ctx, row.UID, original, total); err != nil {
			return scored, fmt.Errorf("update scores for %d: %w", row.UID, err)
		}
		scored++
	}
	return scored, nil
}

// cleanup drops scored rows below the quality threshold to bound growth.
func (p *Pipeline) cleanup(ctx context.Context) (int, error) {
	deleted, err := p.store.DeleteBelowThreshold(ctx, p.scoreCfg.QualityThreshold)
	if err != nil {
		return 0, fmt.Errorf("delete below threshold: %w", err)
	}
	return int(deleted), nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
