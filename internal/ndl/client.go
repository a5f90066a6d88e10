// Package ndl queries the NDL Search SRU endpoint and turns its dcndl XML
// responses into book records.
package ndl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL    = "https://ndlsearch.ndl.go.jp/api/sru"
	defaultMaxRecords = 10
	defaultTimeout    = 5 * time.Second
)

// Config describes how to build a catalog client. The zero value works and
// talks to the public NDL endpoint.
type Config struct {
	BaseURL    string
	MaxRecords int
	HTTPClient *http.Client
	Cache      *Cache
}

// Client issues SRU searchRetrieve requests. Safe for concurrent use; it
// holds no mutable state beyond the stateless HTTP client.
type Client struct {
	baseURL    string
	maxRecords int
	httpClient *http.Client
	cache      *Cache
}

// New builds a Client, filling in defaults for anything unset.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxRecords := cfg.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRecords: maxRecords,
		httpClient: httpClient,
		cache:      cfg.Cache,
	}
}

// SearchTitle looks up records whose title matches the given string exactly
// (quoted CQL title query).
func (c *Client) SearchTitle(ctx context.Context, title string) ([]Book, error) {
	return c.search(ctx, fmt.Sprintf("title=%q", title))
}

// SearchKeywords looks up records matching every keyword anywhere in the
// record. Empty keywords are skipped; an all-empty list is an error.
func (c *Client) SearchKeywords(ctx context.Context, keywords []string) ([]Book, error) {
	var terms []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			terms = append(terms, fmt.Sprintf("anywhere=%q", kw))
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("keyword search needs at least one keyword")
	}
	return c.search(ctx, strings.Join(terms, " AND "))
}

func (c *Client) search(ctx context.Context, cql string) ([]Book, error) {
	query := url.Values{}
	query.Set("operation", "searchRetrieve")
	query.Set("query", cql)
	query.Set("maximumRecords", fmt.Sprint(c.maxRecords))
	query.Set("recordSchema", "dcndl")
	requestURL := c.baseURL + "?" + query.Encode()

	if c.cache != nil {
		if body, ok := c.cache.Get(requestURL); ok {
			return ParseRecords(body), nil
		}
	}

	// One automatic retry on any failed attempt.
	body, err := c.fetch(ctx, requestURL)
	if err != nil {
		body, err = c.fetch(ctx, requestURL)
	}
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Put(requestURL, body)
	}
	return ParseRecords(body), nil
}

func (c *Client) fetch(ctx context.Context, requestURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ndl search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ndl API error: %s (%s)", resp.Status, string(snippet))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ndl response read failed: %w", err)
	}
	return string(body), nil
}
