package domain

const ScoreDecimalPlaces = 4

// CosineToScore maps a cosine distance in [0, 2] onto a similarity in [-1, 1].
func CosineToScore(distance float64) float64 {
	return 1 - distance
}
