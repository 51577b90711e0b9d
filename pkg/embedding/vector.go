package embedding

import "math"

// Normalize scales a vector to unit length (magnitude = 1).
// L2 ranking over normalized vectors matches cosine ranking, which the vector store relies on.
func Normalize(vec []float32) []float32 {
	magnitude := L2Norm(vec)

	normalized := make([]float32, len(vec))
	// Avoid division by zero
	if magnitude == 0 {
		copy(normalized, vec)
		return normalized
	}
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func L2Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// L2Distance is the Euclidean distance; extra entries of the longer vector count against it.
func L2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = float64(a[i])
		}
		if i < len(b) {
			y = float64(b[i])
		}
		d := x - y
		sum += d * d
	}
	return math.Sqrt(sum)
}
