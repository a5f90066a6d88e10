package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/csheth/bookscout/internal/llm"
	"github.com/csheth/bookscout/internal/ndl"
	"github.com/csheth/bookscout/internal/openbd"
	"github.com/csheth/bookscout/internal/webpage"
)

type stubCatalog struct {
	books      []ndl.Book
	searchErr  error
	candidates []ndl.Candidate
}

func (s *stubCatalog) SearchTitle(ctx context.Context, title string) ([]ndl.Book, error) {
	return s.books, s.searchErr
}

func (s *stubCatalog) Aggregate(ctx context.Context, queries []ndl.SearchQuery) []ndl.Candidate {
	return s.candidates
}

type stubVerifier struct {
	result map[string]openbd.VerifiedBook
}

func (s *stubVerifier) VerifyISBNs(ctx context.Context, isbns []string) map[string]openbd.VerifiedBook {
	return s.result
}

type stubSelector struct {
	selections []llm.Selection
	err        error
}

func (s *stubSelector) SelectBooks(ctx context.Context, bookTitle, summary string, candidates []llm.CandidateBook) ([]llm.Selection, error) {
	return s.selections, s.err
}

func (s *stubSelector) Name() string { return "stub" }

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := New(&stubCatalog{}, &stubVerifier{}, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func TestSearchHandler(t *testing.T) {
	srv := New(&stubCatalog{books: []ndl.Book{
		{Title: "例のタイトル", Authors: []string{"山田太郎"}, Publisher: "岩波書店", Year: "2015", ISBN: "9784000000000"},
	}}, &stubVerifier{}, nil, nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/books/search?q=%E4%BE%8B%E3%81%AE", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var books []bookJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &books); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(books) != 1 || books[0].Title != "例のタイトル" || books[0].ID != 0 {
		t.Fatalf("unexpected body: %#v", books)
	}
}

func TestSearchHandlerShortQuery(t *testing.T) {
	srv := New(&stubCatalog{books: []ndl.Book{{Title: "never returned"}}}, &stubVerifier{}, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/books/search?q=a", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("short query: %d %q", rec.Code, rec.Body.String())
	}
}

func TestSearchHandlerDegradesToEmpty(t *testing.T) {
	srv := New(&stubCatalog{searchErr: errors.New("catalog down")}, &stubVerifier{}, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/books/search?q=%E4%BD%95%E3%81%8B", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("degraded search must be an empty 200, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestSearchHandlerCapsResults(t *testing.T) {
	books := make([]ndl.Book, 12)
	for i := range books {
		books[i] = ndl.Book{Title: "本"}
	}
	srv := New(&stubCatalog{books: books}, &stubVerifier{}, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/books/search?q=%E6%9C%AC%E3%81%AE", "")
	var out []bookJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != maxSearchResults {
		t.Fatalf("expected %d results, got %d", maxSearchResults, len(out))
	}
}

func TestRecommendHandler(t *testing.T) {
	catalog := &stubCatalog{candidates: []ndl.Candidate{
		{Book: ndl.Book{Title: "経済学入門", Authors: []string{"甲", "乙"}, Publisher: "有斐閣", Year: "2019", ISBN: "1"}, SearchIntent: "入門書を探す"},
		{Book: ndl.Book{Title: "上級マクロ経済学", Publisher: "日本評論社", Year: "2020", ISBN: "2"}, SearchIntent: "発展書を探す"},
	}}
	selector := &stubSelector{selections: []llm.Selection{
		{Index: 1, Reason: "より深い議論へ進める", Category: llm.CategoryAdvanced},
	}}
	srv := New(catalog, &stubVerifier{}, selector, nil)

	body := `{"title":"対象の本","summary":"概要","queries":[{"keywords":["経済学"],"intent":"入門書を探す"}]}`
	rec := doRequest(t, srv, http.MethodPost, "/api/books/recommend", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp recommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CandidateCount != 2 {
		t.Fatalf("candidateCount = %d, want 2", resp.CandidateCount)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(resp.Recommendations))
	}
	got := resp.Recommendations[0]
	if got.Title != "上級マクロ経済学" || got.Category != llm.CategoryAdvanced || got.ISBN != "2" {
		t.Fatalf("unexpected recommendation: %#v", got)
	}
}

func TestRecommendHandlerNoQueries(t *testing.T) {
	srv := New(&stubCatalog{}, &stubVerifier{}, nil, nil)
	rec := doRequest(t, srv, http.MethodPost, "/api/books/recommend", `{"queries":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty queries, got %d", rec.Code)
	}
}

func TestRecommendHandlerSelectorFailure(t *testing.T) {
	catalog := &stubCatalog{candidates: []ndl.Candidate{{Book: ndl.Book{Title: "x"}}}}
	srv := New(catalog, &stubVerifier{}, &stubSelector{err: errors.New("model down")}, nil)
	rec := doRequest(t, srv, http.MethodPost, "/api/books/recommend", `{"queries":[{"keywords":["a"],"intent":"i"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("selector failure must degrade, got %d", rec.Code)
	}
	var resp recommendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CandidateCount != 1 || len(resp.Recommendations) != 0 {
		t.Fatalf("unexpected degraded response: %#v", resp)
	}
}

func TestPageHandler(t *testing.T) {
	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>記事</title></head><body><article><p>本文です。前提知識の確認に使います。文章をもう少し続けて本文らしくしておきます。</p></article></body></html>`))
	}))
	defer pageSrv.Close()

	srv := New(&stubCatalog{}, &stubVerifier{}, nil, nil).
		WithExtractor(webpage.NewExtractor(pageSrv.Client(), 0))

	rec := doRequest(t, srv, http.MethodGet, "/api/page?url="+url.QueryEscape(pageSrv.URL), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var page pageJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(page.Text, "本文です") {
		t.Fatalf("expected extracted text, got %#v", page)
	}
}

func TestPageHandlerDegradesToEmpty(t *testing.T) {
	srv := New(&stubCatalog{}, &stubVerifier{}, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/page?url=http%3A%2F%2F127.0.0.1%3A1%2Fx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unreachable page must degrade to empty 200, got %d", rec.Code)
	}
	var page pageJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Text != "" {
		t.Fatalf("expected empty text, got %q", page.Text)
	}
}

func TestVerifyHandler(t *testing.T) {
	verifier := &stubVerifier{result: map[string]openbd.VerifiedBook{
		"9784000000000": {Title: "例のタイトル", Author: "山田 太郎", Publisher: "岩波書店", Year: "2015", Price: "1980円（税込）"},
	}}
	srv := New(&stubCatalog{}, verifier, nil, nil)

	rec := doRequest(t, srv, http.MethodPost, "/api/books/verify", `{"isbns":["9784000000000","unknown"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out map[string]verifiedJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 verified entry, got %d", len(out))
	}
	if out["9784000000000"].Author != "山田 太郎" {
		t.Fatalf("unexpected entry: %#v", out["9784000000000"])
	}
}
