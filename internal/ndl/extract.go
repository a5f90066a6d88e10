package ndl

import (
	"fmt"
	"regexp"
	"strings"
)

// The dcndl feed is treated as a flat XML subset rather than run through a
// general XML parser: tags never nest, there is no CDATA, and tag names keep
// their namespace prefix ("dcterms:title"). Extraction is plain regex over
// that restricted grammar; feeding it arbitrary XML is out of contract.

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// decodeEntities replaces the five standard escaped XML entities with their
// literal characters. No other entities are decoded.
func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// extractAll returns the trimmed text content of every <tag>...</tag>
// element in document order, tolerating attributes on the opening tag and
// skipping elements whose content trims to empty. Namespace prefixes are
// part of the tag name and matched literally.
func extractAll(text, tag string) []string {
	quoted := regexp.QuoteMeta(tag)
	re := regexp.MustCompile(fmt.Sprintf(`<%s(?:\s[^>]*)?>([^<]+)</%s>`, quoted, quoted))

	var values []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v := strings.TrimSpace(m[1]); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// extractFirst returns the first value extractAll would yield, or "".
func extractFirst(text, tag string) string {
	if values := extractAll(text, tag); len(values) > 0 {
		return values[0]
	}
	return ""
}
