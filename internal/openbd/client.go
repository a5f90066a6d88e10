// Package openbd checks ISBNs against the openBD metadata service and
// cross-validates titles between sources.
package openbd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openbd.jp"
	defaultTimeout = 5 * time.Second
)

// VerifiedBook is the authoritative metadata openBD holds for an ISBN.
type VerifiedBook struct {
	Title     string
	Author    string
	Publisher string
	Year      string
	Price     string
}

// Config describes how to build a verification client. The zero value
// talks to the public openBD endpoint.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client looks up book metadata by ISBN. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a Client, filling in defaults for anything unset.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// openBD returns a position-aligned array: one slot per requested ISBN,
// null where the ISBN is unknown.
type responseItem struct {
	Summary *struct {
		Title     string `json:"title"`
		Author    string `json:"author"`
		Publisher string `json:"publisher"`
		Pubdate   string `json:"pubdate"`
	} `json:"summary"`
	Onix *struct {
		ProductSupply struct {
			SupplyDetail struct {
				Price []struct {
					PriceAmount string `json:"PriceAmount"`
				} `json:"Price"`
			} `json:"SupplyDetail"`
		} `json:"ProductSupply"`
	} `json:"onix"`
}

// VerifyISBNs resolves a batch of ISBNs to verified metadata. ISBNs the
// service does not recognize are simply absent from the result; that is
// "unverified", not an error. Transport failures, bad statuses and
// malformed payloads all collapse to an empty map.
func (c *Client) VerifyISBNs(ctx context.Context, isbns []string) map[string]VerifiedBook {
	verified := make(map[string]VerifiedBook, len(isbns))
	if len(isbns) == 0 {
		return verified
	}

	requestURL := c.baseURL + "/v1/get?isbn=" + url.QueryEscape(strings.Join(isbns, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return verified
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return verified
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return verified
	}

	var items []*responseItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return verified
	}

	for i, item := range items {
		if i >= len(isbns) || item == nil || item.Summary == nil {
			continue
		}
		s := item.Summary

		year := s.Pubdate // "202501" or "1969-01"
		if len(year) > 4 {
			year = year[:4]
		}

		price := ""
		if item.Onix != nil {
			if amounts := item.Onix.ProductSupply.SupplyDetail.Price; len(amounts) > 0 && amounts[0].PriceAmount != "" {
				price = amounts[0].PriceAmount + "円（税込）"
			}
		}

		verified[isbns[i]] = VerifiedBook{
			Title:     s.Title,
			Author:    strings.ReplaceAll(s.Author, ",", " "), // "姓,名" → "姓 名"
			Publisher: s.Publisher,
			Year:      year,
			Price:     price,
		}
	}
	return verified
}
