// file: internal/matcher/normalize.go
// version: 1.1.0
// guid: d8e2f665-ebaa-4e89-a20d-3329d92b98f1

package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// termFolder maps compatibility forms to their canonical equivalents and
// strips combining marks, so OCR output like "ＡＳＰＩＲＩＮ" or "Aspirín"
// lands on the same term as plain ASCII input.
var termFolder = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeTerm applies the pipeline-wide term normalization: Unicode
// fold, lowercase, trim surrounding whitespace. Every string compared by
// the scorer passes through here exactly once.
func NormalizeTerm(s string) string {
	folded, _, err := transform.String(termFolder, s)
	if err != nil {
		// Malformed input falls back to byte-level handling.
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// appendTerm normalizes s and appends it to terms unless it is empty or
// already present. seen holds the normalized forms appended so far.
func appendTerm(terms []string, seen map[string]struct{}, s string) []string {
	t := NormalizeTerm(s)
	if t == "" {
		return terms
	}
	if _, ok := seen[t]; ok {
		return terms
	}
	seen[t] = struct{}{}
	return append(terms, t)
}
