package grading

import (
	"math"
	"testing"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		obtained float64
		total    float64
		want     float64
	}{
		{"normal", 45, 50, 90},
		{"full marks", 50, 50, 100},
		{"zero obtained", 0, 50, 0},
		{"zero total", 45, 0, 0},
		{"both zero", 0, 0, 0},
		{"fractional", 48, 50, 96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentage(tt.obtained, tt.total)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentage(%v, %v) = %v, want %v", tt.obtained, tt.total, got, tt.want)
			}
		})
	}
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"normal", 10, 4, 2.5},
		{"divide by zero", 10, 0, 0},
		{"zero numerator", 0, 5, 0},
		{"nan input", math.NaN(), 5, 0},
		{"inf input", math.Inf(1), 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeDivide(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("SafeDivide(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestMultiply(t *testing.T) {
	if got := Multiply(2.5, 4); got != 10 {
		t.Errorf("Multiply(2.5, 4) = %v, want 10", got)
	}
	if got := Multiply(math.NaN(), 4); got != 0 {
		t.Errorf("Multiply(NaN, 4) = %v, want 0", got)
	}
	if got := Multiply(3, math.Inf(-1)); got != 0 {
		t.Errorf("Multiply(3, -Inf) = %v, want 0", got)
	}
}
