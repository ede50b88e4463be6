package utils

import "math"

// ToCents converts a decimal dollar amount to integer cents.
// All persistence and arithmetic happen in cents; floats exist only at
// the API boundary.
func ToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

// ToDollars converts integer cents to a decimal dollar amount
func ToDollars(cents int64) float64 {
	return float64(cents) / 100
}
