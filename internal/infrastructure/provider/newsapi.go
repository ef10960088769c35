package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsolvr/internal/domain"
	"newsolvr/internal/source"
)

const newsAPIBaseURL = "https://newsapi.org/v2/everything"

// NewsAPI fetches articles from the News API everything endpoint.
// The endpoint is not paginated; one window is one request.
type NewsAPI struct {
	client  *http.Client
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

var _ source.Source = (*NewsAPI)(nil)

// NewNewsAPI wires an HTTP client; a nil client gets a 20s timeout default.
func NewNewsAPI(client *http.Client, apiKey string, log *slog.Logger) *NewsAPI {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &NewsAPI{client: client, apiKey: apiKey, baseURL: newsAPIBaseURL, logger: log}
}

// Name identifies the adapter inside the registry.
func (n *NewsAPI) Name() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		PublishedAt string `json:"publishedAt"`
		URL         string `json:"url"`
	} `json:"articles"`
}

// Fetch pulls one extraction window and returns normalized records.
// A non-200 status is logged and treated as an empty window, not a failure.
func (n *NewsAPI) Fetch(ctx context.Context, req source.Request) ([]domain.Article, error) {
	raw, err := n.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return toDomain(n.normalize(raw)), nil
}

func (n *NewsAPI) fetch(ctx context.Context, req source.Request) (*newsAPIResponse, error) {
	query := url.Values{}
	query.Set("q", req.Topic)
	query.Set("language", "en")
	query.Set("from", req.From.UTC().Format(time.RFC3339))
	query.Set("to", req.To.UTC().Format(time.RFC3339))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("X-API-Key", n.apiKey)

	resp, err := n.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request news api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.warn("news api returned non-200", "status", resp.Status)
		return nil, nil
	}

	var decoded newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &decoded, nil
}

func (n *NewsAPI) normalize(raw *newsAPIResponse) []article {
	records := make([]article, 0, len(raw.Articles))
	for _, a := range raw.Articles {
		records = append(records, article{
			Title:         strings.TrimSpace(a.Title),
			Content:       htmlToPlain(a.Content),
			Link:          strings.TrimSpace(a.URL),
			PublishedDate: a.PublishedAt,
		})
	}
	return dedupByLink(records)
}

func (n *NewsAPI) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
