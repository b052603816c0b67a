package page_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"quickread/internal/page"
	"testing"
)

const articleHTML = `<html><head><title>Article title</title></head>
<body><article><p>Body of the article.</p></article></body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, articleHTML)
	})
	mux.HandleFunc("/older", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Older</title></head><body></body></html>`)
	})
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Feed</title>
<item><title>Older</title><link>%s/older</link><pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate></item>
<item><title>Newest</title><link>/article</link><pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate></item>
</channel></rss>`, srv.URL)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestFetchPage(t *testing.T) {
	srv := newServer(t)
	fetcher := page.NewFetcher(srv.Client(), slog.Default())

	p, err := fetcher.Fetch(context.Background(), srv.URL+"/article#section")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.URL != srv.URL+"/article" {
		t.Fatalf("expected fragment to be dropped, got %q", p.URL)
	}

	if p.Title != "Article title" {
		t.Fatalf("unexpected title: %q", p.Title)
	}

	if p.Document.Find("article").Length() != 1 {
		t.Fatalf("expected parsed document")
	}
}

func TestFetchFeedResolvesNewestEntry(t *testing.T) {
	srv := newServer(t)
	fetcher := page.NewFetcher(srv.Client(), slog.Default())

	p, err := fetcher.Fetch(context.Background(), srv.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.URL != srv.URL+"/article" {
		t.Fatalf("expected newest entry URL, got %q", p.URL)
	}

	if p.Title != "Article title" {
		t.Fatalf("unexpected title: %q", p.Title)
	}
}

func TestFetchUnexpectedStatus(t *testing.T) {
	srv := newServer(t)
	fetcher := page.NewFetcher(srv.Client(), slog.Default())

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/missing")
	if !errors.Is(err, page.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFetchRejectsUnsupportedScheme(t *testing.T) {
	fetcher := page.NewFetcher(nil, slog.Default())

	for _, raw := range []string{"", "ftp://example.com/file", "file:///etc/passwd", "https://"} {
		if _, err := fetcher.Fetch(context.Background(), raw); !errors.Is(err, page.ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable for %q, got %v", raw, err)
		}
	}
}
