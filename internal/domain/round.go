package domain

import "math"

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func round2(v float64) float64 { return roundTo(v, 2) }
func round1(v float64) float64 { return roundTo(v, 1) }
func round0(v float64) int     { return int(math.Round(v)) }

// percent returns num/den*100, or 0 when den is zero.
func percent(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}
