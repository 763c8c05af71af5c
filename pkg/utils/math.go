package utils

import "math"

// RoundDecimal rounds a float64 value to the specified number of decimal places.
// For example, RoundDecimal(3.14159, 2) returns 3.14.
func RoundDecimal(value float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(value*pow) / pow
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the vectors differ in length or either has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
