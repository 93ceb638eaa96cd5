package scoring

import (
	"math"
	"strings"
	"unicode"
)

// tokenize lowercases and splits on anything that is not a letter or a
// digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termVector builds a bag-of-words term-frequency vector.
func termVector(s string) map[string]float64 {
	vec := make(map[string]float64)
	for _, tok := range tokenize(s) {
		vec[tok]++
	}
	return vec
}

// TextSimilarity returns the cosine similarity of the bag-of-words
// vectors of two texts, in [0,1]. Empty texts score 0.
func TextSimilarity(a, b string) float64 {
	va, vb := termVector(a), termVector(b)
	if len(va) == 0 || len(vb) == 0 {
		return 0
	}

	var dot, na, nb float64
	for term, fa := range va {
		na += fa * fa
		if fb, ok := vb[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range vb {
		nb += fb * fb
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// CosineSimilarity returns the cosine similarity of two dense vectors,
// e.g. externally supplied image embeddings. Mismatched or empty
// vectors score 0; negative similarity is floored at 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim < 0 {
		return 0
	}
	return sim
}
