package numeric

import "fmt"

// DualNumber carries a value and its derivative with respect to one
// parameter. Addition is componentwise, the forward-mode rule for +.
type DualNumber struct {
	Value      float64 `json:"value"`
	Derivative float64 `json:"derivative"`
}

// Variable seeds a dual number for the parameter being differentiated
func Variable(x float64) DualNumber {
	return DualNumber{Value: x, Derivative: 1}
}

// Constant is a dual number that does not depend on the parameter
func Constant(x float64) DualNumber {
	return DualNumber{Value: x}
}

func (d DualNumber) Kind() Kind      { return KindDual }
func (d DualNumber) Scalar() float64 { return d.Value }

// Add returns (v1+v2, d1+d2)
func (d DualNumber) Add(other DualNumber) DualNumber {
	return DualNumber{
		Value:      d.Value + other.Value,
		Derivative: d.Derivative + other.Derivative,
	}
}

func (d DualNumber) String() string {
	return fmt.Sprintf("%g + %gε", d.Value, d.Derivative)
}
