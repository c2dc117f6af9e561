// file: internal/matcher/ranker.go
// version: 1.1.0
// guid: 87114d8f-5a8c-4706-9492-f384b8633588

package matcher

import (
	"runtime"
	"sort"
	"sync"

	"github.com/jdfalk/medication-identifier/internal/models"
)

// parallelThreshold is the candidate count above which scoring fans out
// across workers. Below it the goroutine overhead costs more than the
// scoring itself.
const parallelThreshold = 64

// TermsFunc supplies a candidate's term set. Rank uses ExtractTerms by
// default; the engine substitutes a caching wrapper.
type TermsFunc func(rec models.Record) []string

// Rank scores every candidate against the query term list, drops those
// at or below the relevance threshold, sorts by descending score, and
// truncates to MaxResults. Ties keep the candidates' original order, so
// results are reproducible for identical inputs. Empty candidate sets
// and empty term lists yield an empty list, never an error.
func Rank(candidates []models.Record, queryTerms []string, p Params, terms TermsFunc) []models.ScoredRecord {
	if len(candidates) == 0 || len(queryTerms) == 0 {
		return []models.ScoredRecord{}
	}
	if terms == nil {
		terms = ExtractTerms
	}

	// Scores land in a slice indexed by original candidate position, so
	// the stable tie-break key survives the parallel map.
	scores := make([]float64, len(candidates))
	if len(candidates) >= parallelThreshold {
		scoreParallel(candidates, queryTerms, p, terms, scores)
	} else {
		for i, c := range candidates {
			scores[i] = ScoreTerms(queryTerms, terms(c), p)
		}
	}

	ranked := make([]models.ScoredRecord, 0, len(candidates))
	for i, c := range candidates {
		if scores[i] > p.MinRelevance {
			ranked = append(ranked, models.ScoredRecord{Record: c, Score: scores[i]})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if p.MaxResults > 0 && len(ranked) > p.MaxResults {
		ranked = ranked[:p.MaxResults]
	}
	return ranked
}

func scoreParallel(candidates []models.Record, queryTerms []string, p Params, terms TermsFunc, scores []float64) {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(candidates) {
		workers = len(candidates)
	}

	var wg sync.WaitGroup
	indexes := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				scores[i] = ScoreTerms(queryTerms, terms(candidates[i]), p)
			}
		}()
	}
	for i := range candidates {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}
