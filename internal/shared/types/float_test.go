package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatMarshal(t *testing.T) {
	data, err := json.Marshal([]Float{1.5, 0, -2e-310, Float(math.Inf(1)), Float(math.Inf(-1)), Float(math.NaN())})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,0,-2e-310,"+Inf","-Inf","NaN"]`, string(data))
}

func TestFloatUnmarshal(t *testing.T) {
	var got []Float
	require.NoError(t, json.Unmarshal([]byte(`[1e308, "+Inf", "-Inf", "NaN", "inf", -0.25]`), &got))

	require.Len(t, got, 6)
	assert.Equal(t, Float(1e308), got[0])
	assert.True(t, math.IsInf(float64(got[1]), 1))
	assert.True(t, math.IsInf(float64(got[2]), -1))
	assert.True(t, math.IsNaN(float64(got[3])))
	assert.True(t, math.IsInf(float64(got[4]), 1))
	assert.Equal(t, Float(-0.25), got[5])
}

func TestFloatUnmarshalRejects(t *testing.T) {
	for _, input := range []string{`"1.5"`, `"abc"`, `true`, `1e400`} {
		var f Float
		assert.Error(t, json.Unmarshal([]byte(input), &f), input)
	}
}

func TestFloatsConversion(t *testing.T) {
	assert.Nil(t, Floats(nil))
	assert.Nil(t, Float64s(nil))
	assert.Equal(t, []float64{1, 2}, Float64s(Floats([]float64{1, 2})))
}
