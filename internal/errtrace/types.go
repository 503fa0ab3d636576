package errtrace

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/nuclear-add/internal/shared/id"
	"github.com/GriffinCanCode/nuclear-add/internal/shared/types"
)

// ErrorType classifies a numerically significant occurrence
type ErrorType int

const (
	Overflow ErrorType = iota
	Underflow
	CancellationLoss
	NaNProduced
	InfProduced
	PrecisionLoss
)

var errorTypeNames = [...]string{
	Overflow:         "overflow",
	Underflow:        "underflow",
	CancellationLoss: "cancellation_loss",
	NaNProduced:      "nan_produced",
	InfProduced:      "inf_produced",
	PrecisionLoss:    "precision_loss",
}

// ErrorTypes lists every error type in declaration order
func ErrorTypes() []ErrorType {
	return []ErrorType{Overflow, Underflow, CancellationLoss, NaNProduced, InfProduced, PrecisionLoss}
}

// String returns the snake_case name of the type
func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "unknown"
	}
	return errorTypeNames[t]
}

// MarshalText implements encoding.TextMarshaler
func (t ErrorType) MarshalText() ([]byte, error) {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return nil, fmt.Errorf("errtrace: unknown error type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *ErrorType) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range errorTypeNames {
		if n == name {
			*t = ErrorType(i)
			return nil
		}
	}
	return fmt.Errorf("errtrace: unknown error type %q", text)
}

// ErrorSeverity is totally ordered: Info < Warning < Critical
type ErrorSeverity int

const (
	Info ErrorSeverity = iota
	Warning
	Critical
)

// String returns the lowercase name of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a severity name to its value
func ParseSeverity(name string) (ErrorSeverity, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return Info, nil
	case "warning", "warn":
		return Warning, nil
	case "critical":
		return Critical, nil
	default:
		return Info, fmt.Errorf("errtrace: unknown severity %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s ErrorSeverity) MarshalText() ([]byte, error) {
	if s < Info || s > Critical {
		return nil, fmt.Errorf("errtrace: unknown severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *ErrorSeverity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ErrorEvent is an immutable record of one anomaly.
// Seq is the tracer's logical timestamp and defines event order.
type ErrorEvent struct {
	Seq        uint64        `json:"seq"`
	ID         id.EventID    `json:"id"`
	Type       ErrorType     `json:"error_type"`
	Severity   ErrorSeverity `json:"severity"`
	Operation  string        `json:"operation,omitempty"`
	Operands   []float64     `json:"operands"`
	Magnitude  float64       `json:"magnitude"`
	Message    string        `json:"message,omitempty"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// MarshalJSON encodes non-finite operands and magnitudes as strings
func (e ErrorEvent) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Seq        uint64        `json:"seq"`
		ID         id.EventID    `json:"id"`
		Type       ErrorType     `json:"error_type"`
		Severity   ErrorSeverity `json:"severity"`
		Operation  string        `json:"operation,omitempty"`
		Operands   []types.Float `json:"operands"`
		Magnitude  types.Float   `json:"magnitude"`
		Message    string        `json:"message,omitempty"`
		RecordedAt time.Time     `json:"recorded_at"`
	}{
		Seq:        e.Seq,
		ID:         e.ID,
		Type:       e.Type,
		Severity:   e.Severity,
		Operation:  e.Operation,
		Operands:   types.Floats(e.Operands),
		Magnitude:  types.Float(e.Magnitude),
		Message:    e.Message,
		RecordedAt: e.RecordedAt,
	})
}

// clone returns a copy that shares no memory with e
func (e ErrorEvent) clone() ErrorEvent {
	if e.Operands != nil {
		ops := make([]float64, len(e.Operands))
		copy(ops, e.Operands)
		e.Operands = ops
	}
	return e
}

// String renders the event for logs and CLI output
func (e ErrorEvent) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s [%s]", e.Seq, e.Type, e.Severity)
	if e.Operation != "" {
		fmt.Fprintf(&sb, " op=%s", e.Operation)
	}
	fmt.Fprintf(&sb, " operands=%v magnitude=%g", e.Operands, e.Magnitude)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	return sb.String()
}

// EventOption decorates an event before it is appended
type EventOption func(*ErrorEvent)

// WithOperation names the operation that produced the event
func WithOperation(op string) EventOption {
	return func(e *ErrorEvent) { e.Operation = op }
}

// WithMessage attaches a human readable explanation
func WithMessage(msg string) EventOption {
	return func(e *ErrorEvent) { e.Message = msg }
}
