// file: internal/matcher/params.go
// version: 1.0.0
// guid: c7f50920-c22b-4fc5-bc14-5a9c0c87f549

package matcher

// Params holds the tunable constants of the scoring pipeline. The
// defaults reproduce the reference behavior; boundary semantics (the
// exclusive relevance threshold, the fuzzy cutoff) are fixed contracts
// asserted by tests.
type Params struct {
	// ExactWeight is the per-term contribution of an exact match.
	ExactWeight float64
	// PartialWeight is the per-term contribution of a substring match
	// in either direction.
	PartialWeight float64
	// FuzzyWeight is the per-term contribution when the minimum edit
	// distance to any record term is at most FuzzyCutoff.
	FuzzyWeight float64
	// FuzzyCutoff is the maximum edit distance the fuzzy tier accepts.
	FuzzyCutoff int
	// MinRelevance excludes candidates scoring at or below it. The
	// boundary is exclusive: a score equal to MinRelevance is dropped.
	MinRelevance float64
	// MaxResults truncates the ranked result list.
	MaxResults int
	// MinConfidence drops recognized-text entries below it during
	// aggregation. Zero accepts everything.
	MinConfidence float64
}

// DefaultParams returns the reference configuration.
func DefaultParams() Params {
	return Params{
		ExactWeight:   1.0,
		PartialWeight: 0.5,
		FuzzyWeight:   0.3,
		FuzzyCutoff:   2,
		MinRelevance:  0.1,
		MaxResults:    10,
		MinConfidence: 0.0,
	}
}
