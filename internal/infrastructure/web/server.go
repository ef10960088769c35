package web

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"newsolvr/internal/config"
	"newsolvr/internal/domain"
)

const maxListingLimit = 100

// Ranker serves the ranked-problem listing. It is the only store capability
// the web layer needs.
type Ranker interface {
	TopRanked(ctx context.Context, limit int, problemSize, industry string) ([]domain.RankedProblem, error)
}

// Server exposes the ranked problems as an HTML page and a JSON API.
type Server struct {
	ranker Ranker
	cfg    config.WebConfig
	logger *slog.Logger
	tmpl   *template.Template
}

// NewServer builds the web component.
func NewServer(ranker Ranker, cfg config.WebConfig, log *slog.Logger) *Server {
	return &Server{
		ranker: ranker,
		cfg:    cfg,
		logger: log,
		tmpl:   template.Must(template.New("index").Parse(indexTemplate)),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/problems", s.handleProblems)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", s.cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown web server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}
}

// listingParams extracts limit and filters from the query string. Unparseable
// or out-of-range limits fall back to the configured default; filter
// validation happens in the store, which ignores unknown values.
func (s *Server) listingParams(r *http.Request) (int, string, string) {
	limit := s.cfg.Limit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxListingLimit {
			limit = n
		}
	}
	return limit, r.URL.Query().Get("problem_size"), r.URL.Query().Get("industry")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	limit, problemSize, industry := s.listingParams(r)
	problems, err := s.ranker.TopRanked(r.Context(), limit, problemSize, industry)
	if err != nil {
		s.logger.Error("load ranked problems", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := struct {
		Problems    []domain.RankedProblem
		ProblemSize string
		Industry    string
	}{problems, problemSize, industry}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) handleProblems(w http.ResponseWriter, r *http.Request) {
	limit, problemSize, industry := s.listingParams(r)
	problems, err := s.ranker.TopRanked(r.Context(), limit, problemSize, industry)
	if err != nil {
		s.logger.Error("load ranked problems", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if problems == nil {
		problems = []domain.RankedProblem{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(problems); err != nil {
		s.logger.Error("encode problems", "error", err)
	}
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Ranked Problems</title>
<style>
body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.5rem; text-align: left; vertical-align: top; }
th { background: #f4f4f4; }
.score { font-weight: bold; text-align: right; }
</style>
</head>
<body>
<h1>Ranked Problems</h1>
{{if .ProblemSize}}<p>Problem size: <strong>{{.ProblemSize}}</strong></p>{{end}}
{{if .Industry}}<p>Industry: <strong>{{.Industry}}</strong></p>{{end}}
{{if .Problems}}
<table>
<tr><th>Score</th><th>Summary</th><th>Statement</th><th>Size</th><th>Industry</th><th>Source</th></tr>
{{range .Problems}}
<tr>
<td class="score">{{.Score}}</td>
<td>{{.Summary}}</td>
<td>{{.Statement}}</td>
<td>{{.ProblemSize}}</td>
<td>{{.Industry}}</td>
<td><a href="{{.Link}}">article</a></td>
</tr>
{{end}}
</table>
{{else}}
<p>No scored problems yet.</p>
{{end}}
</body>
</html>
`
