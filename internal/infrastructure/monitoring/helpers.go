package monitoring

import (
	"github.com/GriffinCanCode/nuclear-add/internal/errtrace"
)

// WatchTracer counts every event recorded on t until cancel is called
func (m *Metrics) WatchTracer(t *errtrace.NumericTracer) (cancel func()) {
	if m == nil || t == nil {
		return func() {}
	}
	return t.Observe(func(e errtrace.ErrorEvent) {
		m.RecordAnomaly(e.Type.String(), e.Severity.String())
	})
}
