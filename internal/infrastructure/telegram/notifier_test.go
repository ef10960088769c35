package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsolvr/internal/domain"
)

func TestPublishDigestSendsForm(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = r.ParseForm()
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
	}))
	defer server.Close()

	notifier := NewNotifier("token123", "chat456")
	notifier.baseURL = server.URL

	if err := notifier.PublishDigest(context.Background(), "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotPath != "/bottoken123/sendMessage" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotChat != "chat456" || gotText != "hello" {
		t.Fatalf("unexpected form: chat=%q text=%q", gotChat, gotText)
	}
}

func TestPublishDigestRejectsMissingCredentials(t *testing.T) {
	t.Parallel()

	notifier := NewNotifier("", "")
	if err := notifier.PublishDigest(context.Background(), "hello"); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestPublishDigestSurfacesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewNotifier("token", "chat")
	notifier.baseURL = server.URL

	if err := notifier.PublishDigest(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestFormatDigest(t *testing.T) {
	t.Parallel()

	if got := FormatDigest(nil); got != "" {
		t.Fatalf("empty ranking must format to empty string, got %q", got)
	}

	digest := FormatDigest([]domain.RankedProblem{
		{Summary: "Sensors fail silently", Score: 92, Industry: "manufacturing", ProblemSize: "global", Link: "https://example.com/a"},
		{Summary: "Invoices reconcile by hand", Score: 88, Industry: "financial_services", ProblemSize: "niche"},
	})

	for _, want := range []string{"Sensors fail silently", "92", "manufacturing / global", "https://example.com/a", "2. *88*"} {
		if !strings.Contains(digest, want) {
			t.Fatalf("digest missing %q:\n%s", want, digest)
		}
	}
}
