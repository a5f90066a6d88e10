// Package webpage fetches an article URL and extracts its readable text,
// used as context when a guide is generated from a URL instead of a title.
package webpage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxChars = 20_000
	userAgent       = "Mozilla/5.0 (compatible; BookscoutBot/1.0)"
)

// Article is the readable portion of a fetched page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// Extractor fetches pages with an injected HTTP client.
type Extractor struct {
	httpClient *http.Client
	maxChars   int
}

// NewExtractor builds an Extractor; a nil client gets a default with a
// fetch timeout, maxChars <= 0 gets a sane cap.
func NewExtractor(client *http.Client, maxChars int) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Extractor{httpClient: client, maxChars: maxChars}
}

// Extract downloads the page and runs readability over it. The text is
// capped at maxChars. Callers degrade to an empty context on error rather
// than failing guide generation.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (Article, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Article{}, fmt.Errorf("invalid page url %q", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Article{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("page fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Article{}, fmt.Errorf("page fetch failed: %s", resp.Status)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return Article{}, fmt.Errorf("readability extraction failed: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > e.maxChars {
		text = text[:e.maxChars]
	}
	return Article{
		URL:   pageURL,
		Title: strings.TrimSpace(article.Title),
		Text:  text,
	}, nil
}
