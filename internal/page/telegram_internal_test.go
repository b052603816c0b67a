package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const channelHTML = `<html><head><meta property="og:title" content="Example Channel"></head><body>
<div class="tgme_widget_message">
  <div class="tgme_widget_message_text">Older post</div>
  <a class="tgme_widget_message_date" href="https://t.me/example_channel/1?single"><time datetime="2024-01-01T10:00:00+00:00"></time></a>
</div>
<div class="tgme_widget_message">
  <div class="tgme_widget_message_text">Newest post<br>second line</div>
  <a class="tgme_widget_message_date" href="https://t.me/example_channel/2"><time datetime="2024-01-02T10:00:00+00:00"></time></a>
</div>
<div class="tgme_widget_message">
  <a class="tgme_widget_message_date" href="https://t.me/example_channel/3"><time datetime="2024-01-03T10:00:00+00:00"></time></a>
</div>
</body></html>`

func TestTelegramChannelSlug(t *testing.T) {
	tests := []struct {
		raw  string
		slug string
		ok   bool
	}{
		{"https://t.me/example_channel", "example_channel", true},
		{"https://t.me/s/example_channel/", "example_channel", true},
		{"https://t.me/example_channel/42", "", false},
		{"https://t.me/abc", "", false},
		{"https://example.com/example_channel", "", false},
	}

	for _, test := range tests {
		slug, ok := telegramChannelSlug(test.raw)
		if slug != test.slug || ok != test.ok {
			t.Fatalf("telegramChannelSlug(%q) = %q, %v; want %q, %v", test.raw, slug, ok, test.slug, test.ok)
		}
	}
}

func TestTelegramPostCanonicalURL(t *testing.T) {
	if got := telegramPostCanonicalURL("  https://t.me/example/123?single=1#x "); got != "https://t.me/example/123" {
		t.Fatalf("unexpected canonical URL: %q", got)
	}

	if got := telegramPostCanonicalURL("::not a url::"); got != "::not a url::" {
		t.Fatalf("expected invalid URL to be returned verbatim, got %q", got)
	}
}

func newChannelFetcher(t *testing.T, status int, body string) (*Fetcher, *string) {
	t.Helper()

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(srv.Client(), slog.Default())
	f.telegramBaseURL = srv.URL

	return f, &path
}

func TestFetchTelegramChannelNewestPost(t *testing.T) {
	f, path := newChannelFetcher(t, http.StatusOK, channelHTML)

	p, err := f.Fetch(context.Background(), "https://t.me/example_channel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *path != "/s/example_channel" {
		t.Fatalf("unexpected preview path: %q", *path)
	}

	if p.URL != "https://t.me/example_channel/2" {
		t.Fatalf("unexpected post URL: %q", p.URL)
	}

	if p.Title != "Example Channel" {
		t.Fatalf("unexpected title: %q", p.Title)
	}

	text := p.Document.Find("article").Text()
	if !strings.Contains(text, "Newest post") || strings.Contains(text, "Older post") {
		t.Fatalf("unexpected post text: %q", text)
	}
}

func TestFetchTelegramChannelWithoutPosts(t *testing.T) {
	f, _ := newChannelFetcher(t, http.StatusOK, `<html><body></body></html>`)

	if _, err := f.Fetch(context.Background(), "https://t.me/s/example_channel"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
