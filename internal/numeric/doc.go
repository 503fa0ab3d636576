// Package numeric defines the value representations a sum can be carried in
// and the rules for adding them.
//
// Representations:
//   - Scalar: a plain float64
//   - Interval: [Lower, Upper] with outward-rounded addition
//   - DualNumber: value plus derivative (forward-mode differentiation)
//   - StochasticValue: mean plus variance of independent measurements
//   - TracedValue: a float64 carrying its operation history
//
// Value is a closed variant over these five types. Add looks the operand
// pair up in a dispatch table; a Scalar promotes to the other operand's
// representation and every other mixed pair fails with ErrTypeMismatch.
//
// LazyExpr is separate from the variant: it is a deferred tree of additions
// that can be evaluated and differentiated with respect to a named leaf.
//
// Compensated kernels:
//   - TwoSum: error-free transformation of a single addition
//   - SumSafe: Kahan-Babuska (Neumaier) summation with O(eps) error
//   - NaiveSum: left-to-right fold, kept for comparison
package numeric
