package numeric

import (
	"math"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const machineEps = 0x1p-52

func exactSum(xs []float64) *big.Float {
	acc := new(big.Float).SetPrec(4096)
	for _, x := range xs {
		acc.Add(acc, new(big.Float).SetPrec(4096).SetFloat64(x))
	}
	return acc
}

func illConditioned(rng *rand.Rand, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		mag := math.Pow(10, float64(rng.Intn(20)-10))
		xs[i] = (rng.Float64()*2 - 1) * mag
	}
	return xs
}

func TestSumSafeClassicSequence(t *testing.T) {
	xs := []float64{1.0, 1e16, 1.0, -1e16}

	assert.Equal(t, 0.0, NaiveSum(xs))
	assert.Equal(t, 2.0, SumSafe(xs))
}

func TestSumSafeEmpty(t *testing.T) {
	assert.Equal(t, 0.0, SumSafe(nil))
	assert.Equal(t, 0.0, SumSafe([]float64{}))
}

func TestSumSafeMatchesExactSum(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		xs := illConditioned(rng, 1+rng.Intn(500))

		exact, _ := exactSum(xs).Float64()
		var absSum float64
		for _, x := range xs {
			absSum += math.Abs(x)
		}

		got := SumSafe(xs)
		n := float64(len(xs))
		bound := 2*machineEps*math.Abs(exact) + n*n*machineEps*machineEps*absSum
		assert.LessOrEqual(t, math.Abs(got-exact), bound, "trial %d", trial)
	}
}

func TestSumSafeOrderIndependence(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 50; trial++ {
		xs := illConditioned(rng, 2+rng.Intn(400))
		reversed := make([]float64, len(xs))
		for i, x := range xs {
			reversed[len(xs)-1-i] = x
		}

		var absSum float64
		for _, x := range xs {
			absSum += math.Abs(x)
		}

		diff := math.Abs(SumSafe(xs) - SumSafe(reversed))
		assert.LessOrEqual(t, diff, 4*machineEps*float64(len(xs))*absSum, "trial %d", trial)
	}
}

func TestSumSafeBeatsNaiveSum(t *testing.T) {
	xs := make([]float64, 0, 10001)
	xs = append(xs, 1)
	for i := 0; i < 10000; i++ {
		xs = append(xs, 1e-16)
	}

	exact, _ := exactSum(xs).Float64()
	safeErr := math.Abs(SumSafe(xs) - exact)
	naiveErr := math.Abs(NaiveSum(xs) - exact)

	assert.Less(t, safeErr, naiveErr)
	assert.InDelta(t, 1+1e-12, SumSafe(xs), 1e-15)
}

func TestSumSafeNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		input []float64
		check func(float64) bool
	}{
		{"nan propagates", []float64{1, math.NaN(), 2}, math.IsNaN},
		{"inf propagates", []float64{1, math.Inf(1), 2}, func(x float64) bool { return math.IsInf(x, 1) }},
		{"opposite infinities", []float64{math.Inf(1), math.Inf(-1)}, math.IsNaN},
		{"overflow", []float64{math.MaxFloat64, math.MaxFloat64}, func(x float64) bool { return math.IsInf(x, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(SumSafe(tt.input)))
		})
	}
}

func TestTwoSumIsErrorFree(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 1000; i++ {
		pair := illConditioned(rng, 2)
		s, e := TwoSum(pair[0], pair[1])

		exact := exactSum(pair)
		recovered := exactSum([]float64{s, e})
		require.Zero(t, exact.Cmp(recovered), "a=%g b=%g", pair[0], pair[1])
	}
}
