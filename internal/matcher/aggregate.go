// file: internal/matcher/aggregate.go
// version: 1.0.0
// guid: 0b64e4f1-0064-4cf0-9b16-144add8dcede

package matcher

import "github.com/jdfalk/medication-identifier/internal/models"

// AggregateSignals merges recognized text, semantic labels, AI-suggested
// terms, and the detected color/shape labels into one deduplicated,
// normalized query term list. Recognized-text entries below minConfidence
// are dropped; with the default 0.0 everything passes and any stricter
// filtering is the caller's choice. The external code is deliberately
// not a term — it drives the barcode shortcut, not scoring.
func AggregateSignals(signals models.QuerySignals, minConfidence float64) []string {
	seen := make(map[string]struct{}, 8)
	terms := make([]string, 0, 8)

	for _, txt := range signals.Texts {
		if txt.Confidence < minConfidence {
			continue
		}
		terms = appendTerm(terms, seen, txt.Text)
	}
	for _, label := range signals.Labels {
		terms = appendTerm(terms, seen, label)
	}
	for _, t := range signals.AITerms {
		terms = appendTerm(terms, seen, t)
	}
	terms = appendTerm(terms, seen, signals.Color)
	terms = appendTerm(terms, seen, signals.Shape)
	return terms
}
