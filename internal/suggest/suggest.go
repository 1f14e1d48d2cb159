// Package suggest finds the closest known keyword to a misspelled one,
// the "did you mean" enrichment SPEC_FULL.md adds to unrecognised
// section/sub-section diagnostics. It scores candidates with
// hbollon/go-edlib's Jaro-Winkler similarity, the same algorithm and
// library the retrieval pack's fuzzy matcher uses for identifier
// lookups.
package suggest

import "github.com/hbollon/go-edlib"

// threshold below which a candidate is considered too dissimilar to be
// worth suggesting.
const threshold = 0.75

// Closest returns the candidate most similar to got, or "" if none
// clears threshold. Ties keep the first candidate encountered, so
// callers get a stable result regardless of map iteration order.
func Closest(got string, candidates []string) string {
	best := ""
	var bestScore float32
	for _, c := range candidates {
		score, err := edlib.StringsSimilarity(got, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < threshold {
		return ""
	}
	return best
}
