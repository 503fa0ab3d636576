package numeric

import "errors"

var (
	// ErrTypeMismatch is returned when two representations cannot be combined.
	ErrTypeMismatch = errors.New("numeric: incompatible value types")

	// ErrInvalidInterval is returned when lower > upper or a bound is NaN.
	ErrInvalidInterval = errors.New("numeric: invalid interval bounds")

	// ErrNegativeVariance is returned for negative or NaN variances.
	ErrNegativeVariance = errors.New("numeric: variance must be non-negative")

	// ErrTooFewSamples is returned when a variance cannot be estimated.
	ErrTooFewSamples = errors.New("numeric: at least two samples required")
)
