// Package backendtest provides test doubles for backend.Backend.
package backendtest

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a testify mock of backend.Backend
type MockBackend struct {
	mock.Mock
	name string
}

// New creates a mock with no expectations
func New(name string) *MockBackend {
	return &MockBackend{name: name}
}

// NewFailing creates a mock whose every call fails with err
func NewFailing(t *testing.T, name string, err error) *MockBackend {
	t.Helper()
	m := New(name)
	m.On("AddElementwise", mock.Anything, mock.Anything).Return(nil, err).Maybe()
	m.On("AddReduce", mock.Anything).Return(0.0, err).Maybe()
	return m
}

// Name mocks the Name method.
func (m *MockBackend) Name() string { return m.name }

// AddElementwise mocks the AddElementwise method.
func (m *MockBackend) AddElementwise(a, b []float64) ([]float64, error) {
	args := m.Called(a, b)
	out, _ := args.Get(0).([]float64)
	return out, args.Error(1)
}

// AddReduce mocks the AddReduce method.
func (m *MockBackend) AddReduce(xs []float64) (float64, error) {
	args := m.Called(xs)
	return args.Get(0).(float64), args.Error(1)
}
