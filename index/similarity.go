package index

import "math"

// Similarity maps the cosine of a and b from [-1,1] onto [0,1].
// A zero vector on either side yields 0.5, the midpoint.
func Similarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0.5
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push |cos| slightly past 1
	cos = max(-1, min(1, cos))
	return (cos + 1) / 2
}
