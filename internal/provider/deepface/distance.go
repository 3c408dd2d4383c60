package deepface

import (
	"math"
)

// EuclideanDistance calculates the L2 distance between two embedding vectors.
// This is the metric the classic dlib face pipeline uses: identical faces are
// near 0.0 and a distance above ~0.6 is usually a different person.
// Returns -1 when the vectors cannot be compared.
func EuclideanDistance(embedding1, embedding2 []float64) float64 {
	if len(embedding1) != len(embedding2) || len(embedding1) == 0 {
		return -1
	}

	var sum float64
	for i := range embedding1 {
		d := embedding1[i] - embedding2[i]
		sum += d * d
	}

	return math.Sqrt(sum)
}

// NormalizeEmbedding normalizes an embedding vector to unit length.
// This is useful for consistent distance calculations across models.
func NormalizeEmbedding(embedding []float64) []float64 {
	if len(embedding) == 0 {
		return embedding
	}

	var norm float64
	for _, v := range embedding {
		norm += v * v
	}

	if norm == 0 {
		return embedding
	}

	norm = math.Sqrt(norm)
	normalized := make([]float64, len(embedding))
	for i, v := range embedding {
		normalized[i] = v / norm
	}

	return normalized
}
