package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/nuclear-add/internal/backend/backendtest"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(Sequential{}))
	require.NoError(t, r.Register(Gonum{}))

	b, err := r.Get("gonum")
	require.NoError(t, err)
	assert.Equal(t, "gonum", b.Name())

	assert.Equal(t, []string{"gonum", "sequential"}, r.List())

	r.Unregister("gonum")
	_, err = r.Get("gonum")
	assert.ErrorIs(t, err, ErrBackendNotFound)
	assert.Contains(t, err.Error(), `"gonum"`)
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(backendtest.New("")))
	assert.Empty(t, r.List())
}

func TestGlobalRegistryHasBuiltins(t *testing.T) {
	names := List()
	assert.Subset(t, names, []string{"gonum", "parallel", "sequential"})

	_, err := Get("cuda")
	assert.ErrorIs(t, err, ErrBackendNotFound)
}

func TestGlobalRegisterAndUnregister(t *testing.T) {
	m := backendtest.New("mock-global")
	require.NoError(t, Register(m))
	t.Cleanup(func() { Unregister("mock-global") })

	got, err := Get("mock-global")
	require.NoError(t, err)
	assert.Same(t, m, got)
}
