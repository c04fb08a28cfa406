package domain

import "math"

// MaxRating is the highest star rating.
const MaxRating = 5.0

// ValidStarRating reports whether r is a settable rating: 0.5 to 5.0 in
// half-star steps. Zero means "not rated" and is not settable.
func ValidStarRating(r float64) bool {
	if r <= 0 || r > MaxRating {
		return false
	}
	return r*2 == math.Trunc(r*2)
}

// AverageRating returns the mean of the non-zero ratings. A rating of 0
// means "not rated" and counts toward neither the sum nor the count. When
// nothing is left the result is absent, which is distinct from an average of 0.
func AverageRating(ratings []float64) Optional[float64] {
	var (
		sum   float64
		count int
	)
	for _, r := range ratings {
		if r == 0 {
			continue
		}
		sum += r
		count++
	}
	if count == 0 {
		return None[float64]()
	}
	return Some(sum / float64(count))
}
