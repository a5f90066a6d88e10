package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/csheth/bookscout/internal/llm"
	"github.com/csheth/bookscout/internal/ndl"
)

const (
	minSearchQueryLen = 2
	maxSearchResults  = 8
)

type bookJSON struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Publisher string   `json:"publisher"`
	Year      string   `json:"year"`
	ISBN      string   `json:"isbn"`
}

// handleSearch resolves a free-text title against the catalog so the user
// can pick the exact book before generating a guide. Catalog failures and
// too-short queries both answer an empty list.
func (s *Server) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if len([]rune(q)) < minSearchQueryLen {
		return c.JSON(http.StatusOK, []bookJSON{})
	}

	books, err := s.catalog.SearchTitle(c.Request().Context(), q)
	if err != nil {
		s.logger.Printf("title search degraded for %q: %v", q, err)
		return c.JSON(http.StatusOK, []bookJSON{})
	}
	if len(books) > maxSearchResults {
		books = books[:maxSearchResults]
	}

	out := make([]bookJSON, 0, len(books))
	for i, b := range books {
		out = append(out, bookJSON{
			ID:        i,
			Title:     b.Title,
			Authors:   b.Authors,
			Publisher: b.Publisher,
			Year:      b.Year,
			ISBN:      b.ISBN,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type recommendRequest struct {
	Title   string            `json:"title"`
	Summary string            `json:"summary"`
	Queries []ndl.SearchQuery `json:"queries"`
}

type recommendationJSON struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Year      string `json:"year"`
	ISBN      string `json:"isbn"`
	Reason    string `json:"reason"`
	Category  string `json:"category"`
}

type recommendResponse struct {
	CandidateCount  int                  `json:"candidateCount"`
	Recommendations []recommendationJSON `json:"recommendations"`
}

// handleRecommend aggregates catalog candidates for the supplied queries
// and, when a selector is configured, has the model pick introductory and
// advanced recommendations from them.
func (s *Server) handleRecommend(c echo.Context) error {
	var req recommendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.Queries) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "queries must not be empty")
	}

	ctx := c.Request().Context()
	candidates := s.catalog.Aggregate(ctx, req.Queries)
	resp := recommendResponse{
		CandidateCount:  len(candidates),
		Recommendations: []recommendationJSON{},
	}
	if len(candidates) == 0 || s.selector == nil {
		return c.JSON(http.StatusOK, resp)
	}

	shown := make([]llm.CandidateBook, 0, len(candidates))
	for i, cand := range candidates {
		shown = append(shown, llm.CandidateBook{
			Index:        i,
			Title:        cand.Title,
			Authors:      strings.Join(cand.Authors, "、"),
			Publisher:    cand.Publisher,
			Year:         cand.Year,
			SearchIntent: cand.SearchIntent,
		})
	}

	selections, err := s.selector.SelectBooks(ctx, req.Title, req.Summary, shown)
	if err != nil {
		s.logger.Printf("book selection degraded for %q: %v", req.Title, err)
		return c.JSON(http.StatusOK, resp)
	}
	for _, sel := range selections {
		cand := candidates[sel.Index]
		resp.Recommendations = append(resp.Recommendations, recommendationJSON{
			Title:     cand.Title,
			Author:    strings.Join(cand.Authors, "、"),
			Publisher: cand.Publisher,
			Year:      cand.Year,
			ISBN:      cand.ISBN,
			Reason:    sel.Reason,
			Category:  sel.Category,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type pageJSON struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// handlePage extracts the readable text of a web page so a guide can be
// generated from a URL. Extraction failures degrade to an empty article:
// guide generation proceeds without page context rather than failing.
func (s *Server) handlePage(c echo.Context) error {
	pageURL := strings.TrimSpace(c.QueryParam("url"))
	if pageURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url parameter required")
	}

	article, err := s.extractor.Extract(c.Request().Context(), pageURL)
	if err != nil {
		s.logger.Printf("page extraction degraded for %q: %v", pageURL, err)
		return c.JSON(http.StatusOK, pageJSON{URL: pageURL})
	}
	return c.JSON(http.StatusOK, pageJSON{URL: article.URL, Title: article.Title, Text: article.Text})
}

type verifyRequest struct {
	ISBNs []string `json:"isbns"`
}

type verifiedJSON struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Year      string `json:"year"`
	Price     string `json:"price,omitempty"`
}

// handleVerify checks ISBNs against the verified-metadata source. Unknown
// ISBNs are simply absent from the mapping.
func (s *Server) handleVerify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	out := make(map[string]verifiedJSON)
	for isbn, book := range s.verifier.VerifyISBNs(c.Request().Context(), req.ISBNs) {
		out[isbn] = verifiedJSON{
			Title:     book.Title,
			Author:    book.Author,
			Publisher: book.Publisher,
			Year:      book.Year,
			Price:     book.Price,
		}
	}
	return c.JSON(http.StatusOK, out)
}
