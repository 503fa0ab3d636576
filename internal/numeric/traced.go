package numeric

import (
	"fmt"
	"time"
)

// Operation is one entry in a TracedValue's history
type Operation struct {
	Name     string     `json:"name"`
	Operands [2]float64 `json:"operands"`
	Result   float64    `json:"result"`
	At       time.Time  `json:"at"`
}

// TracedValue is a float64 instrumented with the operations that
// produced it. History is append-only: Add never touches the operands'
// histories and always returns a fresh slice.
type TracedValue struct {
	value   float64
	history []Operation
}

// NewTracedValue starts a value with an empty history
func NewTracedValue(x float64) TracedValue {
	return TracedValue{value: x}
}

func (t TracedValue) Kind() Kind      { return KindTraced }
func (t TracedValue) Scalar() float64 { return t.value }

// Value returns the underlying float64
func (t TracedValue) Value() float64 { return t.value }

// History returns a copy of the applied operations, oldest first
func (t TracedValue) History() []Operation {
	out := make([]Operation, len(t.history))
	copy(out, t.history)
	return out
}

// Add performs the float addition and appends an "add" record.
// Cancellation, overflow and the other anomalies Inspect knows about are
// reported through the returned slice; Add itself never fails.
func (t TracedValue) Add(other TracedValue, epsilon float64) (TracedValue, []Anomaly) {
	result := t.value + other.value

	history := make([]Operation, 0, len(t.history)+len(other.history)+1)
	history = append(history, t.history...)
	history = append(history, other.history...)
	history = append(history, Operation{
		Name:     "add",
		Operands: [2]float64{t.value, other.value},
		Result:   result,
		At:       time.Now(),
	})

	return TracedValue{value: result, history: history},
		Inspect("traced_add", t.value, other.value, result, epsilon)
}

func (t TracedValue) String() string {
	return fmt.Sprintf("%g (%d ops)", t.value, len(t.history))
}
