package matching

import (
	"github.com/agnivade/levenshtein"
)

// Component weights of the fuzzy score. Name dominates; volume is a weak
// discriminator because many products share standard bottle sizes.
const (
	nameWeight   = 0.60
	brandWeight  = 0.25
	volumeWeight = 0.15
)

// ratio is a Levenshtein similarity in [0,100]: 100 for identical strings,
// 0 for entirely dissimilar ones.
func ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(distance)/float64(longest))
}

// tokenSortRatio compares two already-normalized strings with their tokens
// sorted, so word order does not affect the score.
func tokenSortRatio(a, b string) float64 {
	return ratio(sortTokens(a), sortTokens(b))
}

// brandSimilarity scores brand agreement. A missing brand on one side is a
// partial penalty rather than a mismatch; both missing is full agreement.
func brandSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 70
	}
	return tokenSortRatio(a, b)
}

// volumeSimilarity scores bottle-size agreement. Exact match is 100; a
// relative difference decays linearly; one-sided volume is 50; neither side
// having a volume is 100.
func volumeSimilarity(a, b *int) float64 {
	if a == nil && b == nil {
		return 100
	}
	if a == nil || b == nil {
		return 50
	}
	if *a == *b {
		return 100
	}
	va, vb := float64(*a), float64(*b)
	max := va
	if vb > max {
		max = vb
	}
	diff := va - vb
	if diff < 0 {
		diff = -diff
	}
	score := 100 - 200*diff/max
	if score < 0 {
		return 0
	}
	return score
}

// fuzzyScore combines name, brand and volume similarity into the cascade's
// fuzzy score in [0,100].
func fuzzyScore(nameA, nameB, brandA, brandB string, volA, volB *int) float64 {
	return nameWeight*tokenSortRatio(nameA, nameB) +
		brandWeight*brandSimilarity(NormalizeName(brandA), NormalizeName(brandB)) +
		volumeWeight*volumeSimilarity(volA, volB)
}
