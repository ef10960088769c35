package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsolvr/internal/domain"
	"newsolvr/internal/ports"
)

// Notifier sends digests to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	client   *http.Client
	baseURL  string
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
		baseURL:  "https://api.telegram.org",
	}
}

// PublishDigest posts a Markdown message to Telegram.
func (n *Notifier) PublishDigest(ctx context.Context, digest string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", digest)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatDigest renders the top-ranked problems as a Markdown message. An
// empty ranking produces an empty string, which callers should treat as
// nothing to send.
func FormatDigest(problems []domain.RankedProblem) string {
	if len(problems) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("*Top ranked problems*\n")
	for i, p := range problems {
		fmt.Fprintf(&b, "\n%d. *%d* %s\n", i+1, p.Score, p.Summary)
		if p.Industry != "" || p.ProblemSize != "" {
			fmt.Fprintf(&b, "_%s / %s_\n", p.Industry, p.ProblemSize)
		}
		if p.Link != "" {
			b.WriteString(p.Link + "\n")
		}
	}
	return b.String()
}
