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

const guardianBaseURL = "https://content.guardianapis.com/search"

// Guardian fetches articles from the Guardian content search endpoint.
// Pagination follows the page count the response declares.
type Guardian struct {
	client  *http.Client
	apiKey  string
	baseURL string
	logger  *slog.Logger
}

var _ source.Source = (*Guardian)(nil)

// NewGuardian wires an HTTP client; a nil client gets a 20s timeout default.
func NewGuardian(client *http.Client, apiKey string, log *slog.Logger) *Guardian {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Guardian{client: client, apiKey: apiKey, baseURL: guardianBaseURL, logger: log}
}

// Name identifies the adapter inside the registry.
func (g *Guardian) Name() string {
	return "guardian"
}

type guardianResult struct {
	WebTitle           string `json:"webTitle"`
	WebURL             string `json:"webUrl"`
	WebPublicationDate string `json:"webPublicationDate"`
	Fields             struct {
		Standfirst string `json:"standfirst"`
		Body       string `json:"body"`
	} `json:"fields"`
}

type guardianResponse struct {
	Response struct {
		Status  string           `json:"status"`
		Pages   int              `json:"pages"`
		Results []guardianResult `json:"results"`
	} `json:"response"`
}

// Fetch walks all result pages for one window and returns normalized records.
// A non-200 status is logged and treated as an empty window, not a failure.
func (g *Guardian) Fetch(ctx context.Context, req source.Request) ([]domain.Article, error) {
	raw, err := g.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return toDomain(g.normalize(raw)), nil
}

func (g *Guardian) fetch(ctx context.Context, req source.Request) ([]guardianResult, error) {
	var results []guardianResult
	page := 1
	for {
		query := url.Values{}
		query.Set("q", req.Topic)
		query.Set("from-date", req.From.UTC().Format("2006-01-02"))
		query.Set("to-date", req.To.UTC().Format("2006-01-02"))
		query.Set("order-by", "newest")
		query.Set("show-fields", "standfirst,body")
		query.Set("page-size", "50")
		query.Set("page", strconv.Itoa(page))
		query.Set("api-key", g.apiKey)

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+query.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}

		resp, err := g.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("request guardian api: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			g.warn("guardian api returned non-200", "status", resp.Status)
			return nil, nil
		}

		var decoded guardianResponse
		err = json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}

		if decoded.Response.Status != "ok" {
			g.warn("guardian api status not ok", "status", decoded.Response.Status)
			return nil, nil
		}

		results = append(results, decoded.Response.Results...)
		if page >= decoded.Response.Pages {
			break
		}
		page++
	}
	return results, nil
}

func (g *Guardian) normalize(raw []guardianResult) []article {
	records := make([]article, 0, len(raw))
	for _, r := range raw {
		records = append(records, article{
			Title:         strings.TrimSpace(r.WebTitle),
			Content:       htmlToPlain(r.Fields.Body),
			Link:          strings.TrimSpace(r.WebURL),
			PublishedDate: r.WebPublicationDate,
		})
	}
	return dedupByLink(records)
}

func (g *Guardian) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}
