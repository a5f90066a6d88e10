package openbd

import (
	"strings"

	"github.com/csheth/bookscout/internal/jtext"
)

// DiceThreshold is the bigram-similarity cutoff above which two titles are
// considered the same work. 0.3 is an empirical setting: loose enough for
// word-order and punctuation variation between catalogs, tight enough to
// reject unrelated titles. Character bigrams suit CJK text; space-delimited
// scripts may want token bigrams instead.
const DiceThreshold = 0.3

// TitleMatches reports whether two independently sourced titles denote the
// same work. Containment after normalization matches immediately (one
// source often carries the subtitle the other drops); otherwise the
// character-bigram Dice coefficient decides. Symmetric and pure.
func TitleMatches(titleA, titleB string) bool {
	a := jtext.NormalizeTitle(titleA)
	b := jtext.NormalizeTitle(titleB)
	if a == "" || b == "" {
		return false
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	bigramsA := jtext.Bigrams(a)
	bigramsB := jtext.Bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return false
	}
	return jtext.Dice(bigramsA, bigramsB) >= DiceThreshold
}
