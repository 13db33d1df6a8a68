package matching

import (
	"testing"
)

func intPtr(v int) *int { return &v }

func TestTokenSortRatioIgnoresWordOrder(t *testing.T) {
	a := NormalizeName("Eagle Rare Reserve")
	b := NormalizeName("Reserve Eagle Rare")
	if got := tokenSortRatio(a, b); got != 100 {
		t.Fatalf("token sort ratio: want 100 got %v", got)
	}
}

func TestVolumeSimilarity(t *testing.T) {
	cases := []struct {
		a, b *int
		want float64
	}{
		{nil, nil, 100},
		{intPtr(750), nil, 50},
		{intPtr(750), intPtr(750), 100},
		{intPtr(750), intPtr(1500), 0},
		{intPtr(1000), intPtr(900), 80},
	}
	for _, c := range cases {
		if got := volumeSimilarity(c.a, c.b); got != c.want {
			t.Fatalf("volumeSimilarity(%v, %v): want %v got %v", c.a, c.b, c.want, got)
		}
	}
}

func TestBrandSimilarityPartialPenalty(t *testing.T) {
	if got := brandSimilarity("", ""); got != 100 {
		t.Fatalf("both empty: want 100 got %v", got)
	}
	if got := brandSimilarity("buffalo trace", ""); got != 70 {
		t.Fatalf("one empty: want 70 got %v", got)
	}
}

func TestFuzzyScoreIdenticalProductIs100(t *testing.T) {
	score := fuzzyScore(
		NormalizeName("Eagle Rare 10 Year 750ml"), NormalizeName("Eagle Rare 10 Year"),
		"Buffalo Trace", "Buffalo Trace",
		intPtr(750), intPtr(750),
	)
	if score != 100 {
		t.Fatalf("identical product: want 100 got %v", score)
	}
}

func TestFuzzyScoreDisjointProductBelowReview(t *testing.T) {
	score := fuzzyScore(
		NormalizeName("Eagle Rare Bourbon"), NormalizeName("Casa Noble Anejo"),
		"Buffalo Trace", "Casa Noble",
		intPtr(750), intPtr(1750),
	)
	if score >= ReviewThreshold {
		t.Fatalf("disjoint product: want < %d got %v", ReviewThreshold, score)
	}
}
