package numberutil

import "math"

// Round2 rounds to two decimal places, the precision used for currency
// amounts and progress percentages.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
