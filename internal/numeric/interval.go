package numeric

import (
	"fmt"
	"math"
)

// Interval is a value known only to lie within [Lower, Upper]
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// NewInterval validates lower <= upper
func NewInterval(lower, upper float64) (Interval, error) {
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		return Interval{}, fmt.Errorf("%w: [%g, %g]", ErrInvalidInterval, lower, upper)
	}
	return Interval{Lower: lower, Upper: upper}, nil
}

// PointInterval is the zero-width interval [x, x]
func PointInterval(x float64) Interval {
	return Interval{Lower: x, Upper: x}
}

func (i Interval) Kind() Kind { return KindInterval }

// Scalar collapses the interval to its midpoint
func (i Interval) Scalar() float64 { return i.Midpoint() }

// Midpoint returns the center of the interval
func (i Interval) Midpoint() float64 {
	if i.Lower == i.Upper {
		return i.Lower
	}
	return i.Lower/2 + i.Upper/2
}

// Width returns Upper - Lower
func (i Interval) Width() float64 {
	return i.Upper - i.Lower
}

// Contains reports whether x lies within the bounds
func (i Interval) Contains(x float64) bool {
	return i.Lower <= x && x <= i.Upper
}

// Add returns an interval that contains every sum of a point in i and a
// point in other. Each bound is stepped one ulp outward only when the
// rounded float sum landed on the wrong side of the exact sum.
func (i Interval) Add(other Interval) Interval {
	return Interval{
		Lower: addRoundDown(i.Lower, other.Lower),
		Upper: addRoundUp(i.Upper, other.Upper),
	}
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.Lower, i.Upper)
}

func addRoundDown(a, b float64) float64 {
	s, e := TwoSum(a, b)
	switch {
	case math.IsNaN(s):
		return s
	case math.IsInf(s, 0):
		return math.Nextafter(s, math.Inf(-1))
	case e < 0:
		return math.Nextafter(s, math.Inf(-1))
	}
	return s
}

func addRoundUp(a, b float64) float64 {
	s, e := TwoSum(a, b)
	switch {
	case math.IsNaN(s):
		return s
	case math.IsInf(s, 0):
		return math.Nextafter(s, math.Inf(1))
	case e > 0:
		return math.Nextafter(s, math.Inf(1))
	}
	return s
}
