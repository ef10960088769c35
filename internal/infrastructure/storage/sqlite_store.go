package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"newsolvr/internal/domain"
	"newsolvr/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    uid INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT,
    content TEXT,
    link TEXT UNIQUE,
    published_date TEXT,
    problem_summary TEXT,
    problem_statement TEXT,
    meaningful_problem INTEGER,
    pain_intensity INTEGER,
    frequency INTEGER,
    problem_size TEXT,
    industry TEXT,
    market_growth INTEGER,
    willingness_to_pay INTEGER,
    target_customer_clarity INTEGER,
    problem_awareness INTEGER,
    competition INTEGER,
    software_solution INTEGER,
    ai_fit INTEGER,
    speed_to_mvp INTEGER,
    business_potential INTEGER,
    time_relevancy INTEGER,
    original_score INTEGER,
    total_score INTEGER
);
`

// additiveColumns are applied on every open; the schema only ever grows by
// columns, never migrates destructively.
var additiveColumns = []string{
	"problem_summary TEXT",
	"industry TEXT",
	"original_score INTEGER",
}

// SQLiteStore persists articles in an embedded SQLite database. The driver
// does not tolerate unsynchronized concurrent use within a process, so every
// statement runs inside an owned mutex; callers never see the lock.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

var _ ports.ArticleStore = (*SQLiteStore)(nil)

// Open opens or creates the database at path and bootstraps the schema.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='articles'").Scan(&name)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("probe schema: %w", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	for _, column := range additiveColumns {
		_, err := s.db.Exec("ALTER TABLE articles ADD COLUMN " + column)
		if err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return fmt.Errorf("add column %s: %w", column, err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// InsertArticle appends a new row; a duplicate link is silently dropped so
// ingestion stays idempotent.
func (s *SQLiteStore) InsertArticle(ctx context.Context, a domain.Article) error {
	query, args, err := sq.Insert("articles").
		Columns("title", "content", "link", "published_date").
		Values(a.Title, a.Content, a.Link, a.PublishedDate).
		Suffix("ON CONFLICT (link) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// UnanalyzedArticles returns every row still waiting for analysis; the sole
// progress marker is problem_statement being null.
func (s *SQLiteStore) UnanalyzedArticles(ctx context.Context) ([]domain.Article, error) {
	query, args, err := sq.Select("uid", "link", "content", "published_date").
		From("articles").
		Where("problem_statement IS NULL").
		OrderBy("uid ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unanalyzed: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		var link, content, published sql.NullString
		if err := rows.Scan(&a.UID, &link, &content, &published); err != nil {
			return nil, fmt.Errorf("scan unanalyzed row: %w", err)
		}
		a.Link = link.String
		a.Content = content.String
		a.PublishedDate = published.String
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

// UpdateContent fills the body text resolved by the content enricher.
func (s *SQLiteStore) UpdateContent(ctx context.Context, uid int64, content string) error {
	query, args, err := sq.Update("articles").
		Set("content", content).
		Where(sq.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// SaveAnalysis writes the full validated report in one statement; an article
// is never left partially analyzed.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, uid int64, report domain.ProblemReport) error {
	builder := sq.Update("articles").
		Set("problem_summary", report.ProblemSummary).
		Set("problem_statement", report.ProblemStatement).
		Set("problem_size", report.ProblemSize).
		Set("industry", report.Industry)
	for column, value := range report.Subscores() {
		builder = builder.Set(column, value)
	}

	query, args, err := builder.Where(sq.Eq{"uid": uid}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// DeleteRecentDuplicates collapses rows sharing a title within the trailing
// window, keeping the earliest by published date. Rows outside the window are
// never touched.
func (s *SQLiteStore) DeleteRecentDuplicates(ctx context.Context, windowDays int) (int64, error) {
	cutoff := fmt.Sprintf("-%d days", windowDays)
	query := `DELETE FROM articles WHERE date(published_date) >= date('now', ?) AND uid IN (
        SELECT uid FROM (
            SELECT uid, ROW_NUMBER() OVER (PARTITION BY title ORDER BY published_date ASC) AS rn
            FROM articles WHERE date(published_date) >= date('now', ?)
        ) WHERE rn > 1
    )`

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, query, cutoff, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete duplicates: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

// ScoreRows returns the raw scoring inputs for every analyzed article.
// Sub-score values are handed over untyped; coercion is the scorer's problem.
func (s *SQLiteStore) ScoreRows(ctx context.Context) ([]domain.ScoreRow, error) {
	columns := append([]string{"uid"}, domain.SubscoreColumns...)
	columns = append(columns, "published_date")

	query, args, err := sq.Select(columns...).
		From("articles").
		Where("problem_statement IS NOT NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query score rows: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoreRow
	for rows.Next() {
		row := domain.ScoreRow{Subscores: make(map[string]any, len(domain.SubscoreColumns))}

		dest := make([]any, 0, len(domain.SubscoreColumns)+2)
		dest = append(dest, &row.UID)
		values := make([]any, len(domain.SubscoreColumns))
		for i := range values {
			dest = append(dest, &values[i])
		}
		var published sql.NullString
		dest = append(dest, &published)

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}
		for i, column := range domain.SubscoreColumns {
			row.Subscores[column] = values[i]
		}
		row.PublishedDate = published.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// UpdateScores stores both composite scores for one article.
func (s *SQLiteStore) UpdateScores(ctx context.Context, uid int64, originalScore, totalScore int) error {
	query, args, err := sq.Update("articles").
		Set("original_score", originalScore).
		Set("total_score", totalScore).
		Where(sq.Eq{"uid": uid}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update scores: %w", err)
	}
	return nil
}

// DeleteBelowThreshold removes scored rows under the quality threshold to
// bound storage growth.
func (s *SQLiteStore) DeleteBelowThreshold(ctx context.Context, threshold int) (int64, error) {
	query, args, err := sq.Delete("articles").
		Where("original_score IS NOT NULL").
		Where(sq.Lt{"original_score": threshold}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete below threshold: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

// TopRanked returns the highest-scoring problems, optionally filtered by
// problem size and industry. Filter values outside the closed sets are
// ignored rather than rejected.
func (s *SQLiteStore) TopRanked(ctx context.Context, limit int, problemSize, industry string) ([]domain.RankedProblem, error) {
	builder := sq.Select("problem_summary", "problem_statement", "link", "total_score", "problem_size", "industry").
		From("articles").
		Where("problem_statement IS NOT NULL")

	if domain.ValidProblemSize(problemSize) {
		builder = builder.Where(sq.Eq{"problem_size": problemSize})
	}
	if domain.ValidIndustry(industry) {
		builder = builder.Where(sq.Eq{"industry": industry})
	}

	query, args, err := builder.
		OrderBy("total_score DESC NULLS LAST").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top ranked: %w", err)
	}
	defer rows.Close()

	var out []domain.RankedProblem
	for rows.Next() {
		var summary, statement, link, size, ind sql.NullString
		var score sql.NullInt64
		if err := rows.Scan(&summary, &statement, &link, &score, &size, &ind); err != nil {
			return nil, fmt.Errorf("scan ranked row: %w", err)
		}
		out = append(out, domain.RankedProblem{
			Summary:     summary.String,
			Statement:   statement.String,
			Link:        link.String,
			Score:       int(score.Int64),
			ProblemSize: size.String,
			Industry:    ind.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}
