// Package filter extracts visible text from markup and counts vocabulary words.
package filter

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/essay-wordfreq/internal/essays"
)

// ExtractText returns the visible text of an HTML document. Script, style and
// other non-content elements are stripped first. Inputs that do not parse as
// HTML degrade to their raw text, which matches how lenient parsers treat
// plain-text bodies.
func ExtractText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return string(body)
	}
	doc.Find("script, style, noscript, iframe").Remove()
	return doc.Text()
}

// WordCounts tokenizes the visible text of body on whitespace and counts each
// token present in the vocabulary. Matching is case-insensitive: tokens are
// lowercased before lookup, mirroring the lowercased vocabulary.
func WordCounts(body []byte, vocabulary essays.Vocabulary) essays.WordCounts {
	counts := make(essays.WordCounts)
	for _, token := range strings.Fields(ExtractText(body)) {
		word := strings.ToLower(token)
		if vocabulary.Contains(word) {
			counts[word]++
		}
	}
	return counts
}
