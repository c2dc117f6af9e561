// file: internal/matcher/scorer.go
// version: 1.1.0
// guid: 0f049bb3-687e-42d3-a34f-b4a5ffbf4e27

package matcher

import "strings"

// ScoreTerms computes the relevance of a record term set against a
// query term list. Each query term is matched through three tiers in
// strict order, and the first tier that hits wins:
//
//	exact   — the term equals a record term
//	partial — the term contains or is contained in a record term
//	fuzzy   — the minimum edit distance to any record term is within
//	          the cutoff
//
// The per-term contributions are summed and divided by the number of
// query terms, keeping the result in [0, 1]. An empty query term list
// scores 0. Inputs must already be normalized; both ExtractTerms and
// AggregateSignals guarantee that.
func ScoreTerms(queryTerms, recordTerms []string, p Params) float64 {
	if len(queryTerms) == 0 || len(recordTerms) == 0 {
		return 0
	}

	sum := 0.0
	for _, q := range queryTerms {
		sum += termContribution(q, recordTerms, p)
	}
	return sum / float64(len(queryTerms))
}

// termContribution evaluates the tiers for a single query term. The
// ordering and early exit determine score magnitude downstream, so the
// tiers must not be reordered or combined.
func termContribution(q string, recordTerms []string, p Params) float64 {
	for _, t := range recordTerms {
		if q == t {
			return p.ExactWeight
		}
	}
	for _, t := range recordTerms {
		if strings.Contains(t, q) || strings.Contains(q, t) {
			return p.PartialWeight
		}
	}
	best := -1
	for _, t := range recordTerms {
		d := Distance(q, t)
		if best < 0 || d < best {
			best = d
		}
	}
	if best >= 0 && best <= p.FuzzyCutoff {
		return p.FuzzyWeight
	}
	return 0
}
