package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsolvr/internal/domain"
	"newsolvr/internal/source"
)

const (
	timesBaseURL = "https://api.nytimes.com/svc/search/v2/articlesearch.json"

	// The article search API serves ten docs per page; a short page means the
	// result set is exhausted.
	timesPageSize = 10
	timesMaxPages = 100
)

// Times fetches articles from the New York Times article search endpoint.
// There is no page-count header; pagination stops on a short or empty page.
type Times struct {
	client  *http.Client
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

var _ source.Source = (*Times)(nil)

// NewTimes wires an HTTP client; a nil client gets a 20s timeout default.
func NewTimes(client *http.Client, apiKey string, log *slog.Logger) *Times {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Times{client: client, apiKey: apiKey, baseURL: timesBaseURL, logger: log}
}

// Name identifies the adapter inside the registry.
func (t *Times) Name() string {
	return "times"
}

type timesDoc struct {
	WebURL   string `json:"web_url"`
	Snippet  string `json:"snippet"`
	LeadPara string `json:"lead_paragraph"`
	PubDate  string `json:"pub_date"`
	Headline struct {
		Main   string `json:"main"`
		Kicker string `json:"kicker"`
	} `json:"headline"`
}

type timesResponse struct {
	Response struct {
		Docs []timesDoc `json:"docs"`
	} `json:"response"`
}

// Fetch walks result pages for one window and returns normalized records.
// A non-200 status is logged and treated as an empty window, not a failure.
func (t *Times) Fetch(ctx context.Context, req source.Request) ([]domain.Article, error) {
	raw, err := t.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return toDomain(t.normalize(raw)), nil
}

func (t *Times) fetch(ctx context.Context, req source.Request) ([]timesDoc, error) {
	var docs []timesDoc
	for page := 0; page < timesMaxPages; page++ {
		query := url.Values{}
		query.Set("q", req.Topic)
		query.Set("begin_date", req.From.UTC().Format("20060102"))
		query.Set("end_date", req.To.UTC().Format("20060102"))
		query.Set("page", strconv.Itoa(page))
		query.Set("sort", "newest")
		query.Set("api-key", t.apiKey)

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+query.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := t.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("request times api: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			t.warn("times api returned non-200", "status", resp.Status)
			return nil, nil
		}

		var decoded timesResponse
		err = json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}

		pageDocs := decoded.Response.Docs
		if len(pageDocs) == 0 {
			break
		}
		docs = append(docs, pageDocs...)
		if len(pageDocs) < timesPageSize {
			break
		}
	}
	return docs, nil
}

func (t *Times) normalize(raw []timesDoc) []article {
	records := make([]article, 0, len(raw))
	for _, doc := range raw {
		title := doc.Headline.Main
		if title == "" {
			title = doc.Headline.Kicker
		}

		// Full body is not exposed; fall back from lead paragraph to snippet.
		content := htmlToPlain(doc.LeadPara)
		if content == "" {
			content = htmlToPlain(doc.Snippet)
		}

		records = append(records, article{
			Title:         strings.TrimSpace(title),
			Content:       content,
			Link:          strings.TrimSpace(doc.WebURL),
			PublishedDate: dateOnly(doc.PubDate),
		})
	}
	return dedupByLink(records)
}

// dateOnly truncates a full timestamp to its date part; the search API only
// guarantees day granularity anyway.
func dateOnly(pubDate string) string {
	if i := strings.Index(pubDate, "T"); i > 0 {
		return pubDate[:i]
	}
	return pubDate
}

func (t *Times) warn(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Warn(msg, args...)
	}
}
