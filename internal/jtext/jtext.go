// Package jtext holds the text normalization helpers shared by the catalog
// and verification clients. All of them are pure functions over Japanese
// (and mixed-script) bibliographic strings.
package jtext

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	bracketRunes = "（()）[]【】「」『』〈〉《》"
	punctRunes   = "：:・、。,.―─-–—~〜"

	// Role words that NDL appends to creator names ("山田太郎 著" etc).
	// The leading whitespace requirement keeps names containing these
	// characters intact (e.g. 著 inside a surname).
	roleWordRegexp = regexp.MustCompile(`(?s)[\s　]+(?:著者|著|訳|編|監修|文|絵|写真|選|校|注|解説|原著).*$`)
	bracketNote    = regexp.MustCompile(`\[[^\]]*\]`)
)

// NormalizeTitle reduces a title to a comparison key: whitespace, paired
// brackets and common punctuation removed, full-width alphanumerics folded
// to half-width, lower-cased. The result is for matching only, never for
// display. Idempotent.
func NormalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			continue
		case strings.ContainsRune(bracketRunes, r):
			continue
		case strings.ContainsRune(punctRunes, r):
			continue
		}
		b.WriteRune(unicode.ToLower(foldWidth(r)))
	}
	return b.String()
}

// foldWidth maps full-width ASCII alphanumerics to their half-width forms.
// Kana are left alone: the catalog never mixes widths there, and folding
// them would change which bigrams survive comparison.
func foldWidth(r rune) rune {
	if (r >= 'Ａ' && r <= 'Ｚ') || (r >= 'ａ' && r <= 'ｚ') || (r >= '０' && r <= '９') {
		return r - 0xFEE0
	}
	return r
}

// CleanAuthorName strips role annotations from a raw NDL creator value.
// "山田太郎, 著" and "山田太郎 著" both become "山田太郎"; bracketed notes
// like "[ほか]" are dropped. Returns "" when nothing remains; callers are
// expected to filter those out.
func CleanAuthorName(raw string) string {
	if i := strings.IndexAny(raw, ",，"); i >= 0 {
		raw = raw[:i]
	}
	raw = roleWordRegexp.ReplaceAllString(raw, "")
	raw = bracketNote.ReplaceAllString(raw, "")
	return strings.TrimSpace(raw)
}

// Bigrams returns the set of overlapping two-rune substrings of s.
// Strings shorter than two runes yield an empty set.
func Bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{}, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}

// Dice computes the Sørensen–Dice coefficient of two bigram sets.
// Returns 0 when either set is empty.
func Dice(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for bg := range a {
		if _, ok := b[bg]; ok {
			intersection++
		}
	}
	return 2 * float64(intersection) / float64(len(a)+len(b))
}
