package types

import (
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 that survives JSON. Finite values encode as numbers;
// NaN and the infinities encode as the strings "NaN", "+Inf" and "-Inf",
// which plain JSON numbers cannot express.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	text := string(data)
	if text == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return fmt.Errorf("invalid float %s: %w", text, err)
		}
		v, err := strconv.ParseFloat(unquoted, 64)
		if err != nil || !(math.IsNaN(v) || math.IsInf(v, 0)) {
			return fmt.Errorf("invalid float string %s: only NaN, +Inf and -Inf may be quoted", text)
		}
		*f = Float(v)
		return nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid float %s: %w", text, err)
	}
	*f = Float(v)
	return nil
}

// Floats converts a slice for encoding
func Floats(xs []float64) []Float {
	if xs == nil {
		return nil
	}
	out := make([]Float, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}

// Float64s converts a decoded slice back
func Float64s(xs []Float) []float64 {
	if xs == nil {
		return nil
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}
