package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"newsolvr/internal/config"
	"newsolvr/internal/infrastructure/enrich"
	"newsolvr/internal/infrastructure/llm"
	"newsolvr/internal/infrastructure/provider"
	"newsolvr/internal/infrastructure/scheduler"
	"newsolvr/internal/infrastructure/storage"
	"newsolvr/internal/infrastructure/telegram"
	"newsolvr/internal/infrastructure/web"
	"newsolvr/internal/logging"
	"newsolvr/internal/ports"
	"newsolvr/internal/scoring"
	"newsolvr/internal/source"
	"newsolvr/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.SQLiteStore
	pipeline *usecase.Pipeline
	notifier ports.Notifier
	webView  *web.Server
	cron     ports.Scheduler
}

// New builds a runnable application instance. Providers and the analyzer are
// registered only when their credentials are configured; a missing credential
// disables the component, it never fails startup.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open article store: %w", err)
	}

	registry := source.NewRegistry()
	if cfg.Providers.NewsAPIKey != "" {
		registry.Register(provider.NewNewsAPI(nil, cfg.Providers.NewsAPIKey, baseLogger.With("component", "provider.newsapi")))
	}
	if cfg.Providers.GuardianKey != "" {
		registry.Register(provider.NewGuardian(nil, cfg.Providers.GuardianKey, baseLogger.With("component", "provider.guardian")))
	}
	if cfg.Providers.TimesKey != "" {
		registry.Register(provider.NewTimes(nil, cfg.Providers.TimesKey, baseLogger.With("component", "provider.times")))
	}
	if len(registry.Names()) == 0 {
		baseLogger.Warn("no provider credentials configured; extraction will fetch nothing")
	}

	var analyzer ports.Analyzer
	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGemini(ctx, cfg.Gemini)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("build analyzer: %w", err)
		}
		analyzer = gemini
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source.NewMultiSource(registry, baseLogger.With("component", "source")),
		Store:    store,
		Enricher: enrich.NewEnricher(cfg.Scrape, baseLogger.With("component", "enricher")),
		Analyzer: analyzer,
		Scorer:   scoring.NewScorer(cfg.Scoring.Weights),
		Pipeline: cfg.Pipeline,
		Gemini:   cfg.Gemini,
		Scrape:   cfg.Scrape,
		Scoring:  cfg.Scoring,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		store:    store,
		pipeline: pipeline,
		notifier: notifier,
		webView:  web.NewServer(store, cfg.Web, baseLogger.With("component", "web")),
		cron:     scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
	}, nil
}

// RunOnce executes one full pipeline pass and publishes the post-run digest
// when a notifier is configured. A run with failed stages is reported as an
// error after all stages have had their chance.
func (a *Application) RunOnce(ctx context.Context) error {
	report := a.pipeline.Run(ctx)
	a.logger.Info("pipeline run finished",
		"started", report.Started,
		"duration", report.Finished.Sub(report.Started),
		"failed_stages", len(report.Failed()))

	a.publishDigest(ctx)

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("pipeline run finished with %d failed stages (first: %s: %v)",
			len(failed), failed[0].Stage, failed[0].Err)
	}
	return nil
}

func (a *Application) publishDigest(ctx context.Context) {
	if a.notifier == nil {
		return
	}

	top, err := a.store.TopRanked(ctx, a.cfg.Notifications.Telegram.TopN, "", "")
	if err != nil {
		a.logger.Error("load digest ranking", "error", err)
		return
	}

	digest := telegram.FormatDigest(top)
	if digest == "" {
		return
	}
	if err := a.notifier.PublishDigest(ctx, digest); err != nil {
		a.logger.Error("publish digest", "error", err)
	}
}

// Serve runs the ranked-problems web view until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	return a.webView.Run(ctx)
}

// Schedule runs the pipeline on the configured cron expression until ctx is
// cancelled.
func (a *Application) Schedule(ctx context.Context) error {
	err := a.cron.Start(ctx, func(ts time.Time) {
		a.logger.Info("scheduled run starting", "at", ts)
		if err := a.RunOnce(ctx); err != nil {
			a.logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.cron.Stop(stopCtx)
}

// Export streams the full article table as CSV and returns the row count.
func (a *Application) Export(ctx context.Context, w io.Writer) (int, error) {
	return a.store.ExportCSV(ctx, w)
}

// Close releases the article store.
func (a *Application) Close() error {
	return a.store.Close()
}
