package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	// Search-grounded models decorate text with citation markers like
	// "[1]" or a trailing "[2, 4, 7]"; they never belong in a reason.
	trailingCitationRe = regexp.MustCompile(`\s*\[\d+(?:,\s*\d+)*\]\s*$`)
	inlineCitationRe   = regexp.MustCompile(`\[\d+\]`)
)

func buildSelectionPrompt(bookTitle, summary string, candidates []CandidateBook) string {
	if bookTitle == "" {
		bookTitle = "対象書籍"
	}
	listing, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		listing = []byte("[]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "あなたは読書アドバイザーです。ユーザーが「%s」を読もうとしています。\n\n", bookTitle)
	if summary = strings.TrimSpace(summary); summary != "" {
		fmt.Fprintf(&b, "■ この本の概要\n%s\n\n", summary)
	}
	b.WriteString("以下は国立国会図書館サーチから取得した書籍候補リストです。各候補の searchIntent はその本が検索された意図です。\n\n")
	b.Write(listing)
	fmt.Fprintf(&b, `

■ タスク
候補リストの中から「入門書」を3冊、「発展書」を3冊、合計6冊選べ。
- 入門: 「%s」を読む前に前提知識を補える教科書・入門書。
- 発展: 同じテーマをより深く扱う専門書、著者の他の重要著作、影響源となった古典。
- 各候補の searchIntent に合ったカテゴリへ分類し、同程度なら出版年が新しい方を優先せよ。
- 全集、辞典、事典、ハンドブック、年鑑、白書、講座もの、紀要は選ぶな。

以下のJSON配列のみを返すこと。コードブロック記法や追加テキストは含めないこと：
[{"index": 0, "reason": "選んだ理由を2〜3文で", "category": "入門"}]

category は必ず "入門" または "発展"、index はリストの index をそのまま使うこと。`, bookTitle)
	return b.String()
}

// parseSelections recovers the selection array from a raw model response,
// tolerating code fences and surrounding prose. Invalid categories,
// out-of-range indexes and repeated indexes are dropped; at most
// maxSelections survive.
func parseSelections(raw string, candidateCount int) ([]Selection, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty selection response")
	}

	tryArrays := []string{raw}
	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.LastIndex(raw, "]"); end > start {
			tryArrays = append(tryArrays, raw[start:end+1])
		}
	}

	for _, candidate := range tryArrays {
		var arr []Selection
		if err := json.Unmarshal([]byte(candidate), &arr); err == nil && len(arr) > 0 {
			if clean := sanitizeSelections(arr, candidateCount); len(clean) > 0 {
				return clean, nil
			}
		}
	}
	return nil, fmt.Errorf("unable to parse selection payload")
}

func sanitizeSelections(selections []Selection, candidateCount int) []Selection {
	seen := make(map[int]struct{}, len(selections))
	result := make([]Selection, 0, maxSelections)
	for _, s := range selections {
		if len(result) == maxSelections {
			break
		}
		if s.Index < 0 || s.Index >= candidateCount {
			continue
		}
		if s.Category != CategoryIntroductory && s.Category != CategoryAdvanced {
			continue
		}
		if _, dup := seen[s.Index]; dup {
			continue
		}
		seen[s.Index] = struct{}{}
		result = append(result, Selection{
			Index:    s.Index,
			Reason:   stripCitations(s.Reason),
			Category: s.Category,
		})
	}
	return result
}

func stripCitations(s string) string {
	s = trailingCitationRe.ReplaceAllString(s, "")
	s = inlineCitationRe.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
