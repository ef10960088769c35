package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"newsolvr/internal/config"
	"newsolvr/internal/domain"
)

type fakeRanker struct {
	limit       int
	problemSize string
	industry    string
	problems    []domain.RankedProblem
}

func (f *fakeRanker) TopRanked(_ context.Context, limit int, problemSize, industry string) ([]domain.RankedProblem, error) {
	f.limit = limit
	f.problemSize = problemSize
	f.industry = industry
	return f.problems, nil
}

func newTestServer(ranker *fakeRanker) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(ranker, config.WebConfig{Addr: ":0", Limit: 20}, log)
}

func TestProblemsAPIReturnsRanking(t *testing.T) {
	t.Parallel()

	ranker := &fakeRanker{problems: []domain.RankedProblem{
		{Summary: "Sensors fail silently", Statement: "Operators lose shifts", Link: "https://example.com/a", Score: 92, ProblemSize: "global", Industry: "manufacturing"},
	}}
	server := newTestServer(ranker)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/problems?problem_size=global&industry=manufacturing&limit=5", nil)
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ranker.limit != 5 || ranker.problemSize != "global" || ranker.industry != "manufacturing" {
		t.Fatalf("query params not passed through: %+v", ranker)
	}

	var got []domain.RankedProblem
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Score != 92 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestProblemsAPIBadLimitFallsBackToDefault(t *testing.T) {
	t.Parallel()

	ranker := &fakeRanker{}
	server := newTestServer(ranker)

	for _, raw := range []string{"abc", "-3", "0", "100000"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/problems?limit="+raw, nil)
		server.Handler().ServeHTTP(rec, req)

		if rec.Code != 200 {
			t.Fatalf("limit %q: unexpected status %d", raw, rec.Code)
		}
		if ranker.limit != 20 {
			t.Fatalf("limit %q: expected default 20, got %d", raw, ranker.limit)
		}
	}
}

func TestProblemsAPIEmptyRankingIsEmptyArray(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRanker{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/problems", nil))

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestIndexRendersProblems(t *testing.T) {
	t.Parallel()

	ranker := &fakeRanker{problems: []domain.RankedProblem{
		{Summary: "Sensors fail silently", Link: "https://example.com/a", Score: 92},
	}}
	server := newTestServer(ranker)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != 200 {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Sensors fail silently") {
		t.Fatalf("rendered page missing problem summary: %s", body)
	}
	if !strings.Contains(body, "https://example.com/a") {
		t.Fatal("rendered page missing source link")
	}
}

func TestIndexUnknownPathIs404(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeRanker{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))

	if rec.Code != 404 {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
