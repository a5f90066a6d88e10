package ndl

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/csheth/bookscout/internal/jtext"
)

// SearchQuery is one keyword search to run against the catalog, labelled
// with why it was issued ("find an introductory text" etc). Queries come
// from the caller, typically a language model's suggestions, and are
// never mutated here.
type SearchQuery struct {
	Keywords []string `json:"keywords"`
	Intent   string   `json:"intent"`
}

// Candidate is a Book annotated with the intent of the query that found it.
type Candidate struct {
	Book
	SearchIntent string
}

const maxConcurrentQueries = 4

// Aggregate runs every query concurrently and merges the results into one
// deduplicated candidate list. A failed query contributes zero candidates
// and never aborts its siblings; if everything fails the result is simply
// empty. Aggregate never returns an error.
func (c *Client) Aggregate(ctx context.Context, queries []SearchQuery) []Candidate {
	perQuery := make([][]Candidate, len(queries))

	var g errgroup.Group
	g.SetLimit(maxConcurrentQueries)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			books, err := c.SearchKeywords(ctx, q.Keywords)
			if err != nil {
				return nil // partial-failure tolerance: this query yields nothing
			}
			candidates := make([]Candidate, 0, len(books))
			for _, b := range books {
				candidates = append(candidates, Candidate{Book: b, SearchIntent: q.Intent})
			}
			perQuery[i] = candidates
			return nil
		})
	}
	_ = g.Wait()

	var merged []Candidate
	for _, list := range perQuery {
		merged = append(merged, list...)
	}
	return collapseEditions(dedupeByISBN(merged))
}

// dedupeByISBN keeps the first candidate seen for each non-empty ISBN.
// Candidates without an ISBN all pass through.
func dedupeByISBN(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0:0]
	for _, cand := range candidates {
		if cand.ISBN != "" {
			if _, dup := seen[cand.ISBN]; dup {
				continue
			}
			seen[cand.ISBN] = struct{}{}
		}
		out = append(out, cand)
	}
	return out
}

// collapseEditions merges entries that are different printings of the same
// work (same normalized title and publisher), keeping the most recent
// edition. Year strings compare lexicographically, so an empty year loses
// to any dated edition; on a tie the first-encountered candidate stays,
// which keeps the output independent of map iteration order.
func collapseEditions(candidates []Candidate) []Candidate {
	type slot struct{ idx int }
	groups := make(map[string]slot, len(candidates))
	out := make([]Candidate, 0, len(candidates))

	for _, cand := range candidates {
		key := editionKey(cand.Title) + "\x00" + cand.Publisher
		if s, ok := groups[key]; ok {
			if cand.Year > out[s.idx].Year {
				out[s.idx] = cand
			}
			continue
		}
		groups[key] = slot{idx: len(out)}
		out = append(out, cand)
	}
	return out
}

var (
	subtitleSeparators = "：:―—‐〜~"
	editionSuffix      = regexp.MustCompile(`(?:第?[0-9０-９]+版|改訂版|増補版|新版)$`)
)

// editionKey normalizes a title for edition grouping: the subtitle (from
// the first separator on), whitespace and a trailing edition suffix
// ("第2版", "改訂版", ...) are all stripped.
func editionKey(title string) string {
	if i := strings.IndexAny(title, subtitleSeparators); i >= 0 {
		title = title[:i]
	}
	title = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, title)
	title = editionSuffix.ReplaceAllString(title, "")
	return jtext.NormalizeTitle(title)
}
