// file: internal/matcher/distance.go
// version: 1.0.0
// guid: 64cfcfcd-13ae-44cc-92ab-61286ef2ca04

package matcher

// Distance computes the Levenshtein edit distance between two strings:
// the minimum number of single-character insertions, deletions, or
// substitutions needed to transform one into the other. It operates on
// Unicode scalar sequences; callers normalize case beforehand. Inputs
// here are short medication terms, so the single-row DP is plenty.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, min(prev[j]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
