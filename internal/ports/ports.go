package ports

import (
	"context"
	"time"

	"newsolvr/internal/domain"
)

// ArticleSource pulls articles from upstream providers for one extraction window.
type ArticleSource interface {
	FetchWindow(ctx context.Context, topic string, from, to time.Time) ([]domain.Article, error)
}

// ArticleStore persists articles through their lifecycle. Implementations must
// serialize access internally; callers never see a lock.
type ArticleStore interface {
	InsertArticle(ctx context.Context, article domain.Article) error
	UnanalyzedArticles(ctx context.Context) ([]domain.Article, error)
	UpdateContent(ctx context.Context, uid int64, content string) error
	SaveAnalysis(ctx context.Context, uid int64, report domain.ProblemReport) error
	DeleteRecentDuplicates(ctx context.Context, windowDays int) (int64, error)
	ScoreRows(ctx context.Context) ([]domain.ScoreRow, error)
	UpdateScores(ctx context.Context, uid int64, originalScore, totalScore int) error
	DeleteBelowThreshold(ctx context.Context, threshold int) (int64, error)
	TopRanked(ctx context.Context, limit int, problemSize, industry string) ([]domain.RankedProblem, error)
}

// Analyzer sends article text to the model and returns the structured report.
type Analyzer interface {
	Analyze(ctx context.Context, articleText string) (domain.ProblemReport, error)
}

// ContentEnricher resolves the main article text for a link whose stored
// content is empty.
type ContentEnricher interface {
	Enrich(ctx context.Context, link string) (string, error)
}

// Notifier streams post-run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
