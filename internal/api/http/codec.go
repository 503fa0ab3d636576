package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GriffinCanCode/nuclear-add/internal/numeric"
	"github.com/GriffinCanCode/nuclear-add/internal/shared/types"
)

// maxExprDepth bounds decoded expression trees
const maxExprDepth = 256

var errBadValue = errors.New("invalid value")

// ValueJSON is the tagged wire form of every numeric representation.
// A bare JSON number is accepted as a scalar.
type ValueJSON struct {
	Type       string          `json:"type"`
	Value      *types.Float    `json:"value,omitempty"`
	Lower      *types.Float    `json:"lower,omitempty"`
	Upper      *types.Float    `json:"upper,omitempty"`
	Derivative *types.Float    `json:"derivative,omitempty"`
	Mean       *types.Float    `json:"mean,omitempty"`
	Variance   *types.Float    `json:"variance,omitempty"`
	StdDev     *types.Float    `json:"std_dev,omitempty"`
	History    []OperationJSON `json:"history,omitempty"`
}

// OperationJSON is one traced history entry
type OperationJSON struct {
	Name     string         `json:"name"`
	Operands [2]types.Float `json:"operands"`
	Result   types.Float    `json:"result"`
	At       string         `json:"at"`
}

func (v *ValueJSON) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var f types.Float
		if err := json.Unmarshal(trimmed, &f); err != nil {
			return fmt.Errorf("%w: %v", errBadValue, err)
		}
		*v = ValueJSON{Type: "scalar", Value: &f}
		return nil
	}

	type plain ValueJSON
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*v = ValueJSON(p)
	return nil
}

func ptr(x float64) *types.Float {
	f := types.Float(x)
	return &f
}

func need(name string, f *types.Float) (float64, error) {
	if f == nil {
		return 0, fmt.Errorf("%w: missing %q", errBadValue, name)
	}
	return float64(*f), nil
}

// Decode converts the wire form into a numeric value
func (v ValueJSON) Decode() (numeric.Value, error) {
	switch v.Type {
	case "", "scalar":
		x, err := need("value", v.Value)
		if err != nil {
			return nil, err
		}
		return numeric.Scalar(x), nil
	case "interval":
		lo, err := need("lower", v.Lower)
		if err != nil {
			return nil, err
		}
		hi, err := need("upper", v.Upper)
		if err != nil {
			return nil, err
		}
		iv, err := numeric.NewInterval(lo, hi)
		if err != nil {
			return nil, err
		}
		return iv, nil
	case "dual":
		x, err := need("value", v.Value)
		if err != nil {
			return nil, err
		}
		d := 0.0
		if v.Derivative != nil {
			d = float64(*v.Derivative)
		}
		return numeric.DualNumber{Value: x, Derivative: d}, nil
	case "stochastic":
		mean, err := need("mean", v.Mean)
		if err != nil {
			return nil, err
		}
		variance := 0.0
		if v.Variance != nil {
			variance = float64(*v.Variance)
		}
		sv, err := numeric.NewStochasticValue(mean, variance)
		if err != nil {
			return nil, err
		}
		return sv, nil
	case "traced":
		x, err := need("value", v.Value)
		if err != nil {
			return nil, err
		}
		return numeric.NewTracedValue(x), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errBadValue, v.Type)
	}
}

// EncodeValue converts a numeric value into its wire form
func EncodeValue(v numeric.Value) ValueJSON {
	switch x := v.(type) {
	case numeric.Scalar:
		return ValueJSON{Type: "scalar", Value: ptr(float64(x))}
	case numeric.Interval:
		return ValueJSON{Type: "interval", Lower: ptr(x.Lower), Upper: ptr(x.Upper)}
	case numeric.DualNumber:
		return ValueJSON{Type: "dual", Value: ptr(x.Value), Derivative: ptr(x.Derivative)}
	case numeric.StochasticValue:
		return ValueJSON{Type: "stochastic", Mean: ptr(x.Mean), Variance: ptr(x.Variance), StdDev: ptr(x.StdDev())}
	case numeric.TracedValue:
		history := x.History()
		ops := make([]OperationJSON, len(history))
		for i, op := range history {
			ops[i] = OperationJSON{
				Name:     op.Name,
				Operands: [2]types.Float{types.Float(op.Operands[0]), types.Float(op.Operands[1])},
				Result:   types.Float(op.Result),
				At:       op.At.UTC().Format(time.RFC3339Nano),
			}
		}
		return ValueJSON{Type: "traced", Value: ptr(x.Value()), History: ops}
	default:
		return ValueJSON{Type: "unknown"}
	}
}

// ExprJSON is the wire form of a LazyExpr tree
type ExprJSON struct {
	Op    string       `json:"op"`
	Name  string       `json:"name,omitempty"`
	Value *types.Float `json:"value,omitempty"`
	Left  *ExprJSON    `json:"left,omitempty"`
	Right *ExprJSON    `json:"right,omitempty"`
	Terms []*ExprJSON  `json:"terms,omitempty"`
}

// Decode builds the expression tree
func (e *ExprJSON) Decode() (*numeric.LazyExpr, error) {
	return e.decode(0)
}

func (e *ExprJSON) decode(depth int) (*numeric.LazyExpr, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: missing expression", errBadValue)
	}
	if depth > maxExprDepth {
		return nil, fmt.Errorf("%w: expression deeper than %d", errBadValue, maxExprDepth)
	}

	switch e.Op {
	case "leaf":
		if e.Name == "" {
			return nil, fmt.Errorf("%w: leaf needs a name", errBadValue)
		}
		x, err := need("value", e.Value)
		if err != nil {
			return nil, err
		}
		return numeric.Leaf(e.Name, x), nil
	case "const":
		x, err := need("value", e.Value)
		if err != nil {
			return nil, err
		}
		return numeric.Const(x), nil
	case "add":
		left, err := e.Left.decode(depth + 1)
		if err != nil {
			return nil, err
		}
		right, err := e.Right.decode(depth + 1)
		if err != nil {
			return nil, err
		}
		return numeric.AddExpr(left, right), nil
	case "sum":
		terms := make([]*numeric.LazyExpr, 0, len(e.Terms))
		for _, t := range e.Terms {
			term, err := t.decode(depth + 1)
			if err != nil {
				return nil, err
			}
			terms = append(terms, term)
		}
		return numeric.SumExpr(terms...), nil
	default:
		return nil, fmt.Errorf("%w: unknown expression op %q", errBadValue, e.Op)
	}
}
