package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Size, proof and edition qualifiers that distributors append to listing
	// names but which carry no identity: "750ml", "1.75L", "12oz", "80 proof",
	// "40% abv", "limited edition", "gift set".
	sizePattern      = regexp.MustCompile(`\b\d+(\.\d+)?\s*(ml|l|liter|litre|oz|gal|pk|pack|ct|cs)\b\.?`)
	abvPattern       = regexp.MustCompile(`\b\d+(\.\d+)?\s*(%|proof|abv)\b`)
	editionPattern   = regexp.MustCompile(`\b(limited edition|special edition|gift set|gift box|holiday pack|new)\b`)
	punctPattern     = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multiSpacePattern = regexp.MustCompile(`\s+`)

	// NFKD + strip combining marks, so "Jägermeister" and "Jagermeister"
	// normalize to the same tokens.
	deaccent = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeName lowercases a listing or product name and strips size/ABV/
// edition qualifiers, diacritics and punctuation, leaving the identity tokens
// that similarity scoring compares.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	s = sizePattern.ReplaceAllString(s, " ")
	s = abvPattern.ReplaceAllString(s, " ")
	s = editionPattern.ReplaceAllString(s, " ")
	s = punctPattern.ReplaceAllString(s, " ")
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeUPC strips whitespace and leading zeros so the same code matches
// regardless of zero-padding conventions.
func NormalizeUPC(upc string) string {
	s := strings.TrimSpace(upc)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimLeft(s, "0")
	return s
}

// sortTokens returns the fields of s in sorted order, which makes the
// similarity ratio insensitive to token order ("Reserve Eagle Rare" vs
// "Eagle Rare Reserve").
func sortTokens(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return s
	}
	for i := 1; i < len(tokens); i++ {
		for j := i; j > 0 && tokens[j] < tokens[j-1]; j-- {
			tokens[j], tokens[j-1] = tokens[j-1], tokens[j]
		}
	}
	return strings.Join(tokens, " ")
}
