package engine

import (
	"fmt"
	"strings"
)

// PrecisionMode selects the representation used when both operands are
// plain scalars.
type PrecisionMode int

const (
	// Compensated adds with an error-free transformation; sums use
	// Kahan-Babuska compensation
	Compensated PrecisionMode = iota
	// Fast is plain float64 arithmetic; sums use the backend's reduce
	Fast
	// IntervalMode produces outward-rounded intervals
	IntervalMode
	// Traced produces values carrying their operation history
	Traced
)

var modeNames = map[PrecisionMode]string{
	Compensated:  "compensated",
	Fast:         "fast",
	IntervalMode: "interval",
	Traced:       "traced",
}

func (m PrecisionMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParsePrecisionMode accepts the lower-case mode names
func ParsePrecisionMode(s string) (PrecisionMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown precision mode %q", ErrInvalidConfig, s)
}

func (m PrecisionMode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("%w: precision mode %d", ErrInvalidConfig, int(m))
	}
	return []byte(m.String()), nil
}

func (m *PrecisionMode) UnmarshalText(text []byte) error {
	parsed, err := ParsePrecisionMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
