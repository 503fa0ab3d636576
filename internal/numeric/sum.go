package numeric

import "math"

// TwoSum returns s = fl(a+b) and the exact rounding error e so that
// a + b == s + e holds in real arithmetic. e is meaningless when s is
// not finite.
func TwoSum(a, b float64) (s, e float64) {
	s = a + b
	bv := s - a
	av := s - bv
	e = (a - av) + (b - bv)
	return s, e
}

// SumSafe adds xs with Kahan-Babuska (Neumaier) compensation. The error
// is bounded independently of len(xs). An empty slice sums to 0.
// Non-finite values propagate: once the running sum is NaN or Inf it is
// returned as is.
func SumSafe(xs []float64) float64 {
	var sum, c float64
	for _, x := range xs {
		t := sum + x
		if math.Abs(sum) >= math.Abs(x) {
			c += (sum - t) + x
		} else {
			c += (x - t) + sum
		}
		sum = t
	}
	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return sum
	}
	return sum + c
}

// NaiveSum is the plain left-to-right fold
func NaiveSum(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum
}
