package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"newsolvr/internal/config"
	"newsolvr/internal/ports"
)

// Enricher resolves full article text for rows whose stored content is empty:
// a timeout-bounded fetch with a declared user agent, then boilerplate-removal
// extraction, then an optional English gate.
type Enricher struct {
	client    *http.Client
	userAgent string
	detector  lingua.LanguageDetector
	logger    *slog.Logger
}

var _ ports.ContentEnricher = (*Enricher)(nil)

// NewEnricher builds the enricher from scrape configuration.
func NewEnricher(cfg config.ScrapeConfig, log *slog.Logger) *Enricher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	e := &Enricher{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		logger:    log,
	}

	if cfg.EnglishOnly {
		e.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Spanish, lingua.French, lingua.German, lingua.Portuguese).
			Build()
	}

	return e
}

// Enrich fetches the page behind link and extracts its main text.
func (e *Enricher) Enrich(ctx context.Context, link string) (string, error) {
	html, err := e.fetchHTML(ctx, link)
	if err != nil {
		return "", err
	}

	text, err := e.extractText(html, link)
	if err != nil {
		return "", err
	}

	if e.detector != nil {
		if lang, ok := e.detector.DetectLanguageOf(text); ok && lang != lingua.English {
			return "", fmt.Errorf("extracted text is %s, not English", lang)
		}
	}

	return text, nil
}

func (e *Enricher) fetchHTML(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}
	return string(body), nil
}

func (e *Enricher) extractText(html, link string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("empty page body")
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse link: %w", err)
	}

	parsed, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return "", fmt.Errorf("extract main text: %w", err)
	}

	text := strings.TrimSpace(parsed.TextContent)
	if text == "" {
		return "", fmt.Errorf("no main text found")
	}
	return text, nil
}
