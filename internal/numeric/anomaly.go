package numeric

import (
	"fmt"
	"math"

	"github.com/GriffinCanCode/nuclear-add/internal/errtrace"
)

// minNormal is the smallest positive normal float64
const minNormal = 0x1p-1022

// Anomaly describes a numerically significant condition found while adding.
// Value types return anomalies instead of failing; the engine decides
// whether to record them or surface them as errors.
type Anomaly struct {
	Type      errtrace.ErrorType
	Severity  errtrace.ErrorSeverity
	Operation string
	Operands  []float64
	Magnitude float64
	Message   string
}

// Inspect classifies the result of result = a + b.
// Cancellation is reported when |result| < epsilon * max(|a|, |b|);
// an epsilon of zero disables that check.
func Inspect(op string, a, b, result, epsilon float64) []Anomaly {
	operands := []float64{a, b}
	anomaly := func(t errtrace.ErrorType, s errtrace.ErrorSeverity, msg string) Anomaly {
		return Anomaly{
			Type:      t,
			Severity:  s,
			Operation: op,
			Operands:  operands,
			Magnitude: math.Abs(result),
			Message:   msg,
		}
	}

	switch {
	case math.IsNaN(result):
		msg := "addition produced NaN"
		if math.IsNaN(a) || math.IsNaN(b) {
			msg = "NaN operand propagated"
		}
		return []Anomaly{anomaly(errtrace.NaNProduced, errtrace.Critical, msg)}
	case math.IsInf(result, 0):
		if math.IsInf(a, 0) || math.IsInf(b, 0) {
			return []Anomaly{anomaly(errtrace.InfProduced, errtrace.Warning, "infinite operand propagated")}
		}
		return []Anomaly{anomaly(errtrace.Overflow, errtrace.Critical,
			fmt.Sprintf("finite operands overflowed to %v", result))}
	}

	var out []Anomaly
	scale := math.Max(math.Abs(a), math.Abs(b))
	abs := math.Abs(result)

	if epsilon > 0 && scale > 0 && abs < epsilon*scale {
		out = append(out, anomaly(errtrace.CancellationLoss, errtrace.Warning,
			fmt.Sprintf("catastrophic cancellation: |result| %g below %g of operand scale %g", abs, epsilon, scale)))
	}

	if result != 0 && abs < minNormal {
		out = append(out, anomaly(errtrace.Underflow, errtrace.Info, "result is subnormal"))
	}

	if len(out) == 0 && a != 0 && b != 0 && (result == a || result == b) {
		out = append(out, anomaly(errtrace.PrecisionLoss, errtrace.Info, "smaller operand absorbed by rounding"))
	}

	return out
}

// Worst returns the most severe anomaly, or false when there is none
func Worst(anomalies []Anomaly) (Anomaly, bool) {
	if len(anomalies) == 0 {
		return Anomaly{}, false
	}
	worst := anomalies[0]
	for _, a := range anomalies[1:] {
		if a.Severity > worst.Severity {
			worst = a
		}
	}
	return worst, true
}
