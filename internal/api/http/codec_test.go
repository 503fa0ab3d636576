package http

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/nuclear-add/internal/numeric"
)

func decodeValue(t *testing.T, raw string) (numeric.Value, error) {
	t.Helper()
	var v ValueJSON
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v.Decode()
}

func TestValueJSONBareNumbers(t *testing.T) {
	v, err := decodeValue(t, `2.5`)
	require.NoError(t, err)
	assert.Equal(t, numeric.Scalar(2.5), v)

	v, err = decodeValue(t, `"-Inf"`)
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.Scalar(), -1))
}

func TestValueJSONDefaults(t *testing.T) {
	v, err := decodeValue(t, `{"type": "dual", "value": 3}`)
	require.NoError(t, err)
	assert.Equal(t, numeric.DualNumber{Value: 3}, v)

	v, err = decodeValue(t, `{"type": "stochastic", "mean": 1}`)
	require.NoError(t, err)
	assert.Equal(t, numeric.StochasticValue{Mean: 1}, v)
}

func TestValueJSONMissingField(t *testing.T) {
	_, err := decodeValue(t, `{"type": "interval", "lower": 1}`)
	assert.ErrorIs(t, err, errBadValue)
	assert.Contains(t, err.Error(), `"upper"`)
}

func TestEncodeValueStochasticIncludesStdDev(t *testing.T) {
	sv, err := numeric.NewStochasticValue(2, 4)
	require.NoError(t, err)

	out, err := json.Marshal(EncodeValue(sv))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "stochastic", "mean": 2, "variance": 4, "std_dev": 2}`, string(out))
}

func TestEncodeValueNonFinite(t *testing.T) {
	out, err := json.Marshal(EncodeValue(numeric.PointInterval(math.Inf(1))))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type": "interval", "lower": "+Inf", "upper": "+Inf"}`, string(out))
}

func TestExprJSONRejectsMalformedTrees(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown op", `{"op": "mul"}`},
		{"unnamed leaf", `{"op": "leaf", "value": 1}`},
		{"add missing right", `{"op": "add", "left": {"op": "const", "value": 1}}`},
		{"const missing value", `{"op": "const"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e ExprJSON
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &e))
			_, err := e.Decode()
			assert.ErrorIs(t, err, errBadValue)
		})
	}
}

func TestExprJSONEmptySumIsZero(t *testing.T) {
	e := ExprJSON{Op: "sum"}
	expr, err := e.Decode()
	require.NoError(t, err)
	assert.Equal(t, 0.0, expr.Evaluate())
}
