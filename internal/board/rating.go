package board

import "math"

// AverageRating returns the arithmetic mean of the comments' ratings. The
// second return is false for an empty set, which has no defined average; a
// plain mean there would be NaN and must never reach a caller.
func AverageRating(comments []Comment) (float64, bool) {
	if len(comments) == 0 {
		return 0, false
	}

	var total float64
	for _, c := range comments {
		total += c.Rating
	}
	return total / float64(len(comments)), true
}

// StarLabel is the numeric label shown beside the stars: the 0..1 average
// scaled to 0..5 and rounded to two decimal places. 0.65 labels as 3.25.
func StarLabel(avg float64) float64 {
	return math.Round(avg*500) / 100
}

// StarFilled reports whether star i (1..5) renders filled for the given 0..1
// average. Fill compares against the unrounded scaled value: star i is filled
// iff i <= avg*5, so 0.8 fills stars 1 through 4 and leaves 5 empty.
func StarFilled(i int, avg float64) bool {
	return float64(i) <= avg*5
}

// Stars returns the five fill flags for an average.
func Stars(avg float64) [5]bool {
	var filled [5]bool
	for i := 1; i <= 5; i++ {
		filled[i-1] = StarFilled(i, avg)
	}
	return filled
}
