package ndl

import (
	"regexp"
	"strings"

	"github.com/csheth/bookscout/internal/jtext"
)

// Book is one bibliographic entry extracted from an NDL search response.
type Book struct {
	Title     string
	Authors   []string
	Publisher string
	Year      string
	ISBN      string
}

const bookTypeMarker = "type : book"

// Values that can appear in foaf:name alongside the publisher. Holding
// libraries end with one of these suffixes; author affiliations contain a
// comma ("surname, given-name").
var librarySuffixes = []string{"図書館", "図書室", "図書センター", "資料館", "ライブラリー"}

const nationalLibrary = "国立国会図書館"

var (
	recordDataRegexp = regexp.MustCompile(`(?s)<recordData>(.*?)</recordData>`)
	isbnRegexp       = regexp.MustCompile(`<dcterms:identifier[^>]*ISBN[^>]*>([^<]+)<`)
)

// ParseRecords extracts every book entry from a raw SRU response body.
// Non-book records (serials, articles) and records without a title are
// skipped; a body with no recordData blocks yields an empty slice.
func ParseRecords(body string) []Book {
	var books []Book
	for _, m := range recordDataRegexp.FindAllStringSubmatch(body, -1) {
		inner := decodeEntities(m[1])

		if !isBookRecord(inner) {
			continue
		}

		title := extractFirst(inner, "dcterms:title")
		if title == "" {
			continue
		}

		var authors []string
		for _, raw := range extractAll(inner, "dc:creator") {
			if name := jtext.CleanAuthorName(raw); name != "" {
				authors = append(authors, name)
			}
		}

		year := extractFirst(inner, "dcterms:issued")
		if i := strings.Index(year, "-"); i >= 0 {
			year = year[:i]
		}

		isbn := ""
		if im := isbnRegexp.FindStringSubmatch(inner); im != nil {
			isbn = strings.TrimSpace(im[1])
		}

		books = append(books, Book{
			Title:     title,
			Authors:   authors,
			Publisher: resolvePublisher(extractAll(inner, "foaf:name")),
			Year:      year,
			ISBN:      isbn,
		})
	}
	return books
}

func isBookRecord(inner string) bool {
	for _, desc := range extractAll(inner, "dcterms:description") {
		if strings.Contains(desc, bookTypeMarker) {
			return true
		}
	}
	return false
}

// resolvePublisher picks the publisher out of the foaf:name values, which
// mix author affiliations, holding libraries and the publisher itself.
// The first value that is neither an affiliation nor a library wins.
func resolvePublisher(names []string) string {
	for _, name := range names {
		if strings.Contains(name, ",") {
			continue
		}
		if name == nationalLibrary {
			continue
		}
		if hasLibrarySuffix(name) {
			continue
		}
		return strings.TrimSpace(name)
	}
	return ""
}

func hasLibrarySuffix(name string) bool {
	for _, suffix := range librarySuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
