// Package grading holds the arithmetic helpers used when shaping marks for
// display. They never error: bad or zero input yields 0 so a single odd mark
// cannot break a whole result card.
package grading

import "math"

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Percentage returns obtained/total*100, or 0 when total is 0 or either
// value is not a finite number.
func Percentage(obtained, total float64) float64 {
	if !finite(obtained) || !finite(total) || total == 0 {
		return 0
	}
	return (obtained / total) * 100
}

// SafeDivide returns value/divisor, or 0 when divisor is 0 or either value
// is not a finite number.
func SafeDivide(value, divisor float64) float64 {
	if !finite(value) || !finite(divisor) || divisor == 0 {
		return 0
	}
	return value / divisor
}

// Multiply returns value*factor, or 0 when either value is not finite.
func Multiply(value, factor float64) float64 {
	if !finite(value) || !finite(factor) {
		return 0
	}
	return value * factor
}
