package numeric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// StochasticValue models a measurement as mean and variance.
//
// Addition assumes the operands are independent: variances add and no
// covariance term is tracked. Adding correlated measurements therefore
// under- or over-states the resulting uncertainty.
type StochasticValue struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// NewStochasticValue rejects negative or NaN variance
func NewStochasticValue(mean, variance float64) (StochasticValue, error) {
	if math.IsNaN(variance) || variance < 0 {
		return StochasticValue{}, fmt.Errorf("%w: got %g", ErrNegativeVariance, variance)
	}
	return StochasticValue{Mean: mean, Variance: variance}, nil
}

// MeasuredMean builds the value of a sample mean: the mean of samples with
// the variance of that mean estimate (sample variance / n).
func MeasuredMean(samples []float64) (StochasticValue, error) {
	if len(samples) < 2 {
		return StochasticValue{}, ErrTooFewSamples
	}
	mean, variance := stat.MeanVariance(samples, nil)
	return StochasticValue{Mean: mean, Variance: variance / float64(len(samples))}, nil
}

func (s StochasticValue) Kind() Kind      { return KindStochastic }
func (s StochasticValue) Scalar() float64 { return s.Mean }

// Add sums means and variances of independent operands
func (s StochasticValue) Add(other StochasticValue) StochasticValue {
	return StochasticValue{
		Mean:     s.Mean + other.Mean,
		Variance: s.Variance + other.Variance,
	}
}

// StdDev returns the standard deviation
func (s StochasticValue) StdDev() float64 {
	return math.Sqrt(s.Variance)
}

// ConfidenceInterval returns mean ± k standard deviations
func (s StochasticValue) ConfidenceInterval(k float64) Interval {
	half := math.Abs(k) * s.StdDev()
	return Interval{Lower: s.Mean - half, Upper: s.Mean + half}
}

func (s StochasticValue) String() string {
	return fmt.Sprintf("%g ± %g", s.Mean, s.StdDev())
}
