package numeric

import "strconv"

// Kind tags the concrete representation behind a Value
type Kind uint8

const (
	KindScalar Kind = iota
	KindInterval
	KindDual
	KindStochastic
	KindTraced
)

// String returns the kind name used in errors and JSON payloads
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindInterval:
		return "interval"
	case KindDual:
		return "dual"
	case KindStochastic:
		return "stochastic"
	case KindTraced:
		return "traced"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is implemented only by the representations in this package.
type Value interface {
	// Kind reports the concrete representation.
	Kind() Kind
	// Scalar collapses the value to a single float64 for interop.
	Scalar() float64

	sealed()
}

// Scalar is a plain float64 operand
type Scalar float64

func (s Scalar) Kind() Kind      { return KindScalar }
func (s Scalar) Scalar() float64 { return float64(s) }
func (Scalar) sealed()           {}

func (Interval) sealed()        {}
func (DualNumber) sealed()      {}
func (StochasticValue) sealed() {}
func (TracedValue) sealed()     {}
