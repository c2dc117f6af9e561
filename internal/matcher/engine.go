// file: internal/matcher/engine.go
// version: 1.2.0
// guid: 14d7e8d5-d0dc-4a8d-a122-b44ca2455191

package matcher

import (
	"strconv"
	"time"

	"github.com/jdfalk/medication-identifier/internal/cache"
	"github.com/jdfalk/medication-identifier/internal/models"
)

// termCacheTTL bounds how long a derived term set is reused. Metadata is
// the single source of truth, so cached sets are keyed by the record's
// update timestamp and expire on their own.
const termCacheTTL = 5 * time.Minute

// Engine is the identification pipeline: signal aggregation, barcode
// shortcut, relevance scoring, ranking. It holds no per-request state
// and is safe for concurrent use; the only mutable member is the term
// set cache, which is itself concurrency-safe.
type Engine struct {
	params Params
	terms  *cache.Cache[[]string]
}

// New creates an Engine with the given parameters.
func New(params Params) *Engine {
	return &Engine{
		params: params,
		terms:  cache.New[[]string](termCacheTTL),
	}
}

// Params returns the engine's scoring parameters.
func (e *Engine) Params() Params { return e.params }

// Identify runs the full pipeline over one signal bundle and candidate
// set and returns up to MaxResults scored records, best first.
//
// When the signals carry an external code that exactly matches a
// candidate's code, that candidate is returned alone at score 1.0 and
// ranking is skipped entirely. An unmatched code falls through to
// normal scoring with the remaining signals.
func (e *Engine) Identify(signals models.QuerySignals, candidates []models.Record) []models.ScoredRecord {
	if len(candidates) == 0 {
		return []models.ScoredRecord{}
	}

	if code := NormalizeTerm(signals.ExternalCode); code != "" {
		for _, c := range candidates {
			if NormalizeTerm(c.ExternalCode()) == code {
				return []models.ScoredRecord{{Record: c, Score: 1.0}}
			}
		}
	}

	queryTerms := AggregateSignals(signals, e.params.MinConfidence)
	return Rank(candidates, queryTerms, e.params, e.recordTerms)
}

// Score exposes the raw relevance of a single record against an
// already-aggregated query term list, for callers that layer their own
// ranking policy on top.
func (e *Engine) Score(queryTerms []string, rec models.Record) float64 {
	normalized := make([]string, 0, len(queryTerms))
	seen := make(map[string]struct{}, len(queryTerms))
	for _, q := range queryTerms {
		normalized = appendTerm(normalized, seen, q)
	}
	return ScoreTerms(normalized, e.recordTerms(rec), e.params)
}

// recordTerms memoizes ExtractTerms per stored record. Records without
// an ID (not yet persisted) are derived directly.
func (e *Engine) recordTerms(rec models.Record) []string {
	if rec.ID == "" {
		return ExtractTerms(rec)
	}
	key := rec.ID + "@" + strconv.FormatInt(rec.UpdatedAt.UnixNano(), 10)
	if terms, ok := e.terms.Get(key); ok {
		return terms
	}
	terms := ExtractTerms(rec)
	e.terms.Set(key, terms)
	return terms
}
