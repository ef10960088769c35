package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsolvr/internal/domain"
	"newsolvr/internal/ports"
)

// Request carries all parameters required to execute one provider fetch.
type Request struct {
	Topic string
	From  time.Time
	To    time.Time
}

// Source captures a single provider adapter (News API, Guardian, Times).
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]domain.Article, error)
}

// Registry keeps provider adapters in registration order.
type Registry struct {
	sources map[string]Source
	order   []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a provider adapter.
func (r *Registry) Register(src Source) {
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	if _, exists := r.sources[src.Name()]; !exists {
		r.order = append(r.order, src.Name())
	}
	r.sources[src.Name()] = src
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// Names lists registered providers in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// MultiSource implements ports.ArticleSource by fanning one extraction window
// out to every registered provider. A failing provider is logged and skipped;
// upstream trouble never aborts the window.
type MultiSource struct {
	registry *Registry
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*MultiSource)(nil)

// NewMultiSource wires the provider registry.
func NewMultiSource(reg *Registry, log *slog.Logger) *MultiSource {
	return &MultiSource{registry: reg, logger: log}
}

// FetchWindow collects normalized articles from all providers for one window.
func (m *MultiSource) FetchWindow(ctx context.Context, topic string, from, to time.Time) ([]domain.Article, error) {
	if m.registry == nil {
		return nil, fmt.Errorf("source registry is not configured")
	}

	var aggregated []domain.Article
	for _, name := range m.registry.Names() {
		src, err := m.registry.Resolve(name)
		if err != nil {
			return nil, err
		}

		articles, err := src.Fetch(ctx, Request{Topic: topic, From: from, To: to})
		if err != nil {
			m.warn("provider fetch failed", "provider", name, "error", err)
			continue
		}
		m.debug("provider window fetched", "provider", name, "count", len(articles))
		aggregated = append(aggregated, articles...)
	}

	return aggregated, nil
}

func (m *MultiSource) debug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *MultiSource) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
