package render

import "strconv"

// FormatDelta formats a rank change with an explicit sign: "+3", "0", "-2".
func FormatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// FormatScore formats a normalized score with two decimals.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}
