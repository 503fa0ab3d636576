package numeric

import (
	"fmt"
	"math"
)

type kindPair struct {
	left, right Kind
}

// rule adds two operands whose kinds match the table key
type rule func(a, b Value, epsilon float64) (Value, []Anomaly)

// rules maps every supported operand pair to its addition rule.
// Pairs that are absent are type mismatches.
var rules = map[kindPair]rule{
	{KindScalar, KindScalar}:         addScalars,
	{KindInterval, KindInterval}:     addIntervals,
	{KindDual, KindDual}:             addDuals,
	{KindStochastic, KindStochastic}: addStochastics,
	{KindTraced, KindTraced}:         addTraced,
}

func init() {
	for _, k := range []Kind{KindInterval, KindDual, KindStochastic, KindTraced} {
		same := rules[kindPair{k, k}]
		target := k
		rules[kindPair{KindScalar, k}] = func(a, b Value, eps float64) (Value, []Anomaly) {
			return same(Promote(a.(Scalar), target), b, eps)
		}
		rules[kindPair{k, KindScalar}] = func(a, b Value, eps float64) (Value, []Anomaly) {
			return same(a, Promote(b.(Scalar), target), eps)
		}
	}
}

// Supported reports whether a and b can be added
func Supported(a, b Kind) bool {
	_, ok := rules[kindPair{a, b}]
	return ok
}

// Add combines two values through the dispatch table. Anomalies describe
// precision problems with the result; err is non-nil only for
// ErrTypeMismatch.
func Add(a, b Value, epsilon float64) (Value, []Anomaly, error) {
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("%w: nil operand", ErrTypeMismatch)
	}
	r, ok := rules[kindPair{a.Kind(), b.Kind()}]
	if !ok {
		return nil, nil, fmt.Errorf("%w: cannot add %s and %s", ErrTypeMismatch, a.Kind(), b.Kind())
	}
	result, anomalies := r(a, b, epsilon)
	return result, anomalies, nil
}

// Promote lifts a scalar into another representation: a zero-width
// interval, a constant dual number, a zero-variance measurement or a
// traced value with empty history.
func Promote(s Scalar, to Kind) Value {
	x := float64(s)
	switch to {
	case KindInterval:
		return PointInterval(x)
	case KindDual:
		return Constant(x)
	case KindStochastic:
		return StochasticValue{Mean: x}
	case KindTraced:
		return NewTracedValue(x)
	default:
		return s
	}
}

func addScalars(a, b Value, eps float64) (Value, []Anomaly) {
	x, y := float64(a.(Scalar)), float64(b.(Scalar))
	r := x + y
	return Scalar(r), Inspect("add", x, y, r, eps)
}

func addIntervals(a, b Value, eps float64) (Value, []Anomaly) {
	x, y := a.(Interval), b.(Interval)
	r := x.Add(y)
	return r, inspectInterval(x, y, r, eps)
}

// inspectInterval classifies non-finite results per bound, since the
// midpoint of a valid unbounded interval is NaN. A bound that is infinite
// because an operand bound already was is not an anomaly. Cancellation and
// precision checks use the midpoints when all three are finite.
func inspectInterval(x, y, r Interval, eps float64) []Anomaly {
	bounds := [2][3]float64{
		{x.Lower, y.Lower, r.Lower},
		{x.Upper, y.Upper, r.Upper},
	}
	for _, b := range bounds {
		switch {
		case !math.IsNaN(b[2]) && !math.IsInf(b[2], 0):
			continue
		case math.IsInf(b[2], 0) && (math.IsInf(b[0], 0) || math.IsInf(b[1], 0)):
			continue
		}
		return Inspect("interval_add", b[0], b[1], b[2], eps)
	}

	xm, ym, rm := x.Midpoint(), y.Midpoint(), r.Midpoint()
	for _, m := range [3]float64{xm, ym, rm} {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			return nil
		}
	}
	return Inspect("interval_add", xm, ym, rm, eps)
}

func addDuals(a, b Value, eps float64) (Value, []Anomaly) {
	x, y := a.(DualNumber), b.(DualNumber)
	r := x.Add(y)
	return r, Inspect("dual_add", x.Value, y.Value, r.Value, eps)
}

func addStochastics(a, b Value, eps float64) (Value, []Anomaly) {
	x, y := a.(StochasticValue), b.(StochasticValue)
	r := x.Add(y)
	return r, Inspect("stochastic_add", x.Mean, y.Mean, r.Mean, eps)
}

func addTraced(a, b Value, eps float64) (Value, []Anomaly) {
	r, anomalies := a.(TracedValue).Add(b.(TracedValue), eps)
	return r, anomalies
}
