package provider

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsolvr/internal/domain"
)

// htmlToPlain strips markup from a body/snippet field so downstream stages
// only ever see plain text. Empty or invalid input yields an empty string.
func htmlToPlain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "<") {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var parts []string
	doc.Find("p, li, h1, h2, h3, h4, blockquote").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) > 0 {
		return strings.Join(parts, "\n")
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// dedupByLink collapses duplicate urls within one raw batch, keeping the
// first occurrence, and drops records missing title or url.
func dedupByLink(articles []article) []article {
	seen := map[string]struct{}{}
	out := make([]article, 0, len(articles))
	for _, a := range articles {
		if a.Title == "" || a.Link == "" {
			continue
		}
		if _, ok := seen[a.Link]; ok {
			continue
		}
		seen[a.Link] = struct{}{}
		out = append(out, a)
	}
	return out
}

// article is the provider-internal record before conversion to domain.Article.
type article struct {
	Title         string
	Content       string
	Link          string
	PublishedDate string
}

func toDomain(articles []article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		out = append(out, domain.Article{
			Title:         a.Title,
			Content:       a.Content,
			Link:          a.Link,
			PublishedDate: a.PublishedDate,
		})
	}
	return out
}
