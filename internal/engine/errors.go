package engine

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/nuclear-add/internal/errtrace"
)

var (
	// ErrInvalidConfig is returned for out-of-range configuration values
	ErrInvalidConfig = errors.New("engine: invalid config")
	// ErrNumericAnomaly is matched by every strict-mode failure
	ErrNumericAnomaly = errors.New("engine: numeric anomaly")
)

// AnomalyError is returned in strict mode. It carries the event that was
// recorded for the anomaly.
type AnomalyError struct {
	Event errtrace.ErrorEvent
}

func (e *AnomalyError) Error() string {
	return fmt.Sprintf("%s: %s during %s (seq %d)",
		ErrNumericAnomaly, e.Event.Type, e.Event.Operation, e.Event.Seq)
}

func (e *AnomalyError) Unwrap() error {
	return ErrNumericAnomaly
}
