package logspace

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// LogZero is the sentinel standing for ln(0).
// Any value at or below LogZero is treated as an impossible event.
const LogZero = -1e300

// LogOne is ln(1).
const LogOne = 0.0

// IsZero reports whether x encodes probability zero.
func IsZero(x float64) bool {
	return x <= LogZero || math.IsNaN(x) || math.IsInf(x, -1)
}

// Eln returns ln(p), or LogZero when p is zero, negative or NaN.
func Eln(p float64) float64 {
	if !(p > 0) {
		return LogZero
	}
	if math.IsInf(p, 1) {
		return math.MaxFloat64
	}

	return math.Log(p)
}

// Eexp returns exp(x), mapping the sentinel back to exactly 0.
func Eexp(x float64) float64 {
	if IsZero(x) {
		return 0
	}

	return math.Exp(x)
}

// Product multiplies two probabilities given in log space.
// Either operand being LogZero yields LogZero.
func Product(x, y float64) float64 {
	if IsZero(x) || IsZero(y) {
		return LogZero
	}
	p := x + y
	if p <= LogZero {
		return LogZero
	}

	return p
}

// Div divides x by y in log space.
// Division by LogZero is defined as LogZero, never an arithmetic error.
func Div(x, y float64) float64 {
	if IsZero(x) || IsZero(y) {
		return LogZero
	}
	d := x - y
	if d <= LogZero {
		return LogZero
	}

	return d
}

// Sum returns ln(exp(x) + exp(y)).
//
// The larger operand is factored out so the exponent is always ≤ 0:
//
//	ln(e^x + e^y) = max + ln(1 + e^(min-max))
//
// Complexity: O(1).
func Sum(x, y float64) float64 {
	switch {
	case IsZero(x):
		if IsZero(y) {
			return LogZero
		}
		return y
	case IsZero(y):
		return x
	}
	if x > y {
		return x + math.Log1p(math.Exp(y-x))
	}

	return y + math.Log1p(math.Exp(x-y))
}

// SumSlice returns ln(Σ exp(xs[i])) with the maximum factored out.
// An empty slice, or one holding only LogZero entries, yields LogZero.
// xs is not modified.
//
// Complexity: O(len(xs)).
func SumSlice(xs []float64) float64 {
	if len(xs) == 0 {
		return LogZero
	}
	if IsZero(floats.Max(xs)) {
		return LogZero
	}
	// entries equal to LogZero contribute exp(LogZero-max) == 0.
	s := floats.LogSumExp(xs)
	if IsZero(s) {
		return LogZero
	}

	return s
}

// Normalize rewrites xs in place so that Σ exp(xs[i]) == 1 and returns the
// log of the original total. A row with zero total mass is left untouched
// and LogZero is returned.
//
// Complexity: O(len(xs)).
func Normalize(xs []float64) float64 {
	total := SumSlice(xs)
	if IsZero(total) {
		return LogZero
	}
	for i := range xs {
		xs[i] = Div(xs[i], total)
	}

	return total
}

// Mass returns Σ exp(xs[i]) in probability space.
func Mass(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += Eexp(x)
	}

	return s
}
