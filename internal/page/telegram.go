package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"quickread/internal/extract"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	telegramHost    = "t.me"
	telegramBaseURL = "https://" + telegramHost
)

var telegramSlugRe = regexp.MustCompile(`^\w{5,32}$`)

type channelPost struct {
	url       string
	html      string
	published time.Time
}

// telegramChannelSlug reports the channel slug for t.me/<slug> and
// t.me/s/<slug>. Links to single posts are not channel links.
func telegramChannelSlug(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host != telegramHost {
		return "", false
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	var slug string

	switch {
	case len(parts) == 1:
		slug = parts[0]
	case len(parts) == 2 && parts[0] == "s":
		slug = parts[1]
	default:
		return "", false
	}

	if !telegramSlugRe.MatchString(slug) {
		return "", false
	}

	return slug, true
}

func telegramPostCanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	u.RawQuery = ""
	u.Fragment = ""

	return u.String()
}

// fetchTelegramChannel loads the public preview of a channel and returns
// its newest post as a standalone page.
func (f *Fetcher) fetchTelegramChannel(ctx context.Context, slug string) (*Page, error) {
	previewURL := fmt.Sprintf("%s/s/%s", f.telegramBaseURL, slug)

	body, err := f.get(ctx, previewURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}

	channelTitle, ok := doc.Find("meta[property='og:title']").Attr("content")
	if !ok || strings.TrimSpace(channelTitle) == "" {
		channelTitle = doc.Find(".tgme_channel_info_header_title").Text()
	}
	channelTitle = strings.TrimSpace(channelTitle)

	var (
		newest *channelPost
		errs   []error
	)

	doc.Find("a.tgme_widget_message_date").Each(func(_ int, s *goquery.Selection) {
		post, postErr := channelPostFrom(s)
		if postErr != nil {
			errs = append(errs, postErr)
			return
		}

		if strings.TrimSpace(post.html) == "" {
			return
		}

		if newest == nil || !post.published.Before(newest.published) {
			newest = &post
		}
	})

	if newest == nil {
		return nil, errors.Join(append(errs, errors.New("channel has no text posts"))...)
	}

	if len(errs) > 0 {
		f.log.WarnContext(ctx, "Failed to process some channel posts",
			"error", errors.Join(errs...),
			"slug", slug)
	}

	postDoc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<html><head><title>" + html.EscapeString(channelTitle) + "</title></head>" +
			"<body><article>" + newest.html + "</article></body></html>"))
	if err != nil {
		return nil, fmt.Errorf("create post document: %w", err)
	}

	return &Page{
		URL:      newest.url,
		Title:    extract.Title(postDoc),
		Document: postDoc,
	}, nil
}

func channelPostFrom(s *goquery.Selection) (channelPost, error) {
	href, ok := s.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return channelPost{}, errors.New("post link is empty")
	}

	var htmlBuilder strings.Builder

	message := s.ParentsFiltered(".tgme_widget_message").First()
	message.Find(".tgme_widget_message_text, .tgme_widget_message_caption").Each(
		func(_ int, inner *goquery.Selection) {
			fragment, err := inner.Html()
			if err != nil || strings.TrimSpace(fragment) == "" {
				return
			}

			htmlBuilder.WriteString("<p>")
			htmlBuilder.WriteString(fragment)
			htmlBuilder.WriteString("</p>")
		},
	)

	var published time.Time

	if datetime := strings.TrimSpace(s.Find("time").AttrOr("datetime", "")); datetime != "" {
		parsed, err := time.Parse(time.RFC3339, datetime)
		if err != nil {
			return channelPost{}, fmt.Errorf("parse datetime: %w", err)
		}
		published = parsed
	}

	return channelPost{
		url:       telegramPostCanonicalURL(href),
		html:      htmlBuilder.String(),
		published: published,
	}, nil
}
