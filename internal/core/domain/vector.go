package domain

import "math"

// VectorRecord is a stored chunk with its embedding.
type VectorRecord struct {
	ID        string
	Text      string
	Metadata  Metadata
	Embedding []float32
}

// CosineDistance returns 1 - cosine similarity. Vectors of different length
// or zero magnitude are maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// MatchesFilter reports whether metadata satisfies an exact-match filter.
func MatchesFilter(m Metadata, where map[string]string) bool {
	for k, want := range where {
		if m.String(k) != want {
			return false
		}
	}
	return true
}
