package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"quickread/internal/extract"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	DefaultTimeout = 20 * time.Second

	maxBodyBytes = 10 << 20
)

var ErrUnavailable = errors.New("page content is unavailable")

type Page struct {
	URL      string
	Title    string
	Document *goquery.Document
}

// Fetcher loads the page behind a URL. Feed URLs and public Telegram
// channels are resolved to their newest entry.
type Fetcher struct {
	client          *http.Client
	feedParser      *gofeed.Parser
	telegramBaseURL string
	log             *slog.Logger
}

func NewFetcher(client *http.Client, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &Fetcher{
		client:          client,
		feedParser:      gofeed.NewParser(),
		telegramBaseURL: telegramBaseURL,
		log:             log,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	pageURL, err := normalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if slug, ok := telegramChannelSlug(pageURL); ok {
		p, channelErr := f.fetchTelegramChannel(ctx, slug)
		if channelErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, channelErr)
		}

		return p, nil
	}

	body, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if gofeed.DetectFeedType(bytes.NewReader(body)) != gofeed.FeedTypeUnknown {
		entryURL, feedErr := f.newestEntryURL(pageURL, body)
		if feedErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, feedErr)
		}

		f.log.DebugContext(ctx, "Feed URL is resolved to newest entry",
			"feedURL", pageURL,
			"entryURL", entryURL)

		pageURL = entryURL

		if body, err = f.get(ctx, pageURL); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create document from reader: %w", ErrUnavailable, err)
	}

	return &Page{
		URL:      pageURL,
		Title:    extract.Title(doc),
		Document: doc,
	}, nil
}

func (f *Fetcher) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req) //nolint:gosec // User-supplied URL is the point.
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", pageURL,
				"operation", "get")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func (f *Fetcher) newestEntryURL(feedURL string, body []byte) (string, error) {
	parsed, err := f.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse feed: %w", err)
	}

	var (
		newest     *gofeed.Item
		newestTime time.Time
	)
	for _, item := range parsed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}

		published := itemTime(item)
		if newest == nil || published.After(newestTime) {
			newest = item
			newestTime = published
		}
	}

	if newest == nil {
		return "", errors.New("feed has no entries with links")
	}

	base, err := url.Parse(feedURL)
	if err != nil {
		return "", fmt.Errorf("parse feed URL: %w", err)
	}

	link, err := url.Parse(strings.TrimSpace(newest.Link))
	if err != nil {
		return "", fmt.Errorf("parse entry URL: %w", err)
	}

	return normalizeURL(base.ResolveReference(link).String())
}

func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}

	return time.Time{}
}

func normalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("URL is empty")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %q", u.Scheme)
	}

	if u.Host == "" {
		return "", errors.New("URL host is empty")
	}

	u.Fragment = ""

	return u.String(), nil
}
