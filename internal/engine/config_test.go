package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, Compensated, c.PrecisionMode())
	assert.Equal(t, "sequential", c.Backend())
	assert.True(t, c.TracingEnabled())
	assert.False(t, c.Strict())
	assert.Equal(t, 1e-10, c.CancellationEpsilon())
}

func TestPresets(t *testing.T) {
	fast := FastConfig()
	assert.Equal(t, Fast, fast.PrecisionMode())
	assert.False(t, fast.TracingEnabled())

	paranoid := ParanoidConfig()
	assert.Equal(t, Traced, paranoid.PrecisionMode())
	assert.True(t, paranoid.Strict())
	assert.True(t, paranoid.TracingEnabled())
}

func TestWithReturnsCopy(t *testing.T) {
	base := DefaultConfig()

	strict, err := base.With(WithStrict(true), WithBackend("parallel"))
	require.NoError(t, err)

	assert.True(t, strict.Strict())
	assert.Equal(t, "parallel", strict.Backend())
	assert.False(t, base.Strict(), "original must not change")
	assert.Equal(t, "sequential", base.Backend())
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"empty backend", []Option{WithBackend("")}},
		{"negative epsilon", []Option{WithCancellationEpsilon(-1)}},
		{"unknown mode", []Option{WithPrecisionMode(PrecisionMode(99))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParsePrecisionMode(t *testing.T) {
	for _, m := range []PrecisionMode{Compensated, Fast, IntervalMode, Traced} {
		parsed, err := ParsePrecisionMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	parsed, err := ParsePrecisionMode(" Interval ")
	require.NoError(t, err)
	assert.Equal(t, IntervalMode, parsed)

	_, err = ParsePrecisionMode("quad")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	var m PrecisionMode
	require.NoError(t, m.UnmarshalText([]byte("traced")))
	assert.Equal(t, Traced, m)
}

func TestConfigString(t *testing.T) {
	assert.Equal(t, "mode=compensated backend=sequential tracing=true strict=false epsilon=1e-10",
		DefaultConfig().String())
}
