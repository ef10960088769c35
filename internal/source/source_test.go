package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsolvr/internal/domain"
)

type stubSource struct {
	name     string
	articles []domain.Article
	err      error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(context.Context, Request) ([]domain.Article, error) {
	return s.articles, s.err
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&stubSource{name: "newsapi"})
	reg.Register(&stubSource{name: "guardian"})
	reg.Register(&stubSource{name: "newsapi"})

	names := reg.Names()
	if len(names) != 2 || names[0] != "newsapi" || names[1] != "guardian" {
		t.Fatalf("unexpected order: %v", names)
	}

	if _, err := reg.Resolve("times"); err == nil {
		t.Fatal("expected error for unregistered source")
	}
}

func TestFetchWindowSkipsFailingProvider(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&stubSource{name: "broken", err: errors.New("upstream down")})
	reg.Register(&stubSource{name: "healthy", articles: []domain.Article{
		{Title: "A", Link: "https://example.com/a"},
		{Title: "B", Link: "https://example.com/b"},
	}})

	multi := NewMultiSource(reg, nil)
	articles, err := multi.FetchWindow(context.Background(), "tech", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("fetch window: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected articles from the healthy provider only, got %d", len(articles))
	}
}
