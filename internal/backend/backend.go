package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendNotFound is returned when a backend name is not registered
	ErrBackendNotFound = errors.New("backend: not found")
	// ErrLengthMismatch is returned by AddElementwise for unequal inputs
	ErrLengthMismatch = errors.New("backend: length mismatch")
	// ErrMalformedResult is returned when a backend's output does not
	// match its input length
	ErrMalformedResult = errors.New("backend: malformed result")
)

// Backend is an execution strategy for batch additions. Implementations
// must return results in input order and must be safe for concurrent use.
type Backend interface {
	Name() string
	// AddElementwise returns a[i] + b[i] for every i
	AddElementwise(a, b []float64) ([]float64, error)
	// AddReduce sums xs, combining in input order
	AddReduce(xs []float64) (float64, error)
}

func checkLengths(a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(a), len(b))
	}
	return nil
}

// CheckResult reports an elementwise result whose length differs from the
// input it was computed from
func CheckResult(name string, in, out []float64) error {
	if len(out) != len(in) {
		return fmt.Errorf("%w: %s returned %d values for %d inputs", ErrMalformedResult, name, len(out), len(in))
	}
	return nil
}
