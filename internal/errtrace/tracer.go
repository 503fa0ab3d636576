package errtrace

import (
	"io"
	"iter"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/nuclear-add/internal/shared/id"
)

// Observer receives every event right after it is appended.
// Observers run inside the tracer's critical section and must not
// call back into the tracer.
type Observer func(ErrorEvent)

// NumericTracer is an append-only log of ErrorEvents
type NumericTracer struct {
	logger *zap.Logger

	mu        sync.RWMutex
	events    []ErrorEvent
	seq       uint64
	observers map[uint64]Observer
	nextObs   uint64
}

// New creates an empty tracer. A nil logger disables log mirroring.
func New(logger *zap.Logger) *NumericTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NumericTracer{
		logger:    logger.Named("errtrace"),
		observers: make(map[uint64]Observer),
	}
}

// Record appends a new event and returns it.
// Appends are serialized; Seq values are strictly increasing and are
// never reused, even after Clear.
func (t *NumericTracer) Record(errType ErrorType, severity ErrorSeverity, operands []float64, magnitude float64, opts ...EventOption) ErrorEvent {
	ops := make([]float64, len(operands))
	copy(ops, operands)

	event := ErrorEvent{
		ID:         id.NewEventID(),
		Type:       errType,
		Severity:   severity,
		Operands:   ops,
		Magnitude:  magnitude,
		RecordedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(&event)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	event.Seq = t.seq
	t.events = append(t.events, event)

	t.log(event)
	for _, obs := range t.observers {
		obs(event.clone())
	}

	return event.clone()
}

// log mirrors an event to the structured logger
func (t *NumericTracer) log(e ErrorEvent) {
	fields := []zap.Field{
		zap.Uint64("seq", e.Seq),
		zap.String("event_id", e.ID.String()),
		zap.Stringer("error_type", e.Type),
		zap.Float64s("operands", e.Operands),
		zap.Float64("magnitude", e.Magnitude),
	}
	if e.Operation != "" {
		fields = append(fields, zap.String("operation", e.Operation))
	}

	msg := "numeric anomaly"
	if e.Message != "" {
		msg = e.Message
	}

	switch e.Severity {
	case Critical:
		t.logger.Error(msg, fields...)
	case Warning:
		t.logger.Warn(msg, fields...)
	default:
		t.logger.Debug(msg, fields...)
	}
}

// snapshot copies the current log under the read lock
func (t *NumericTracer) snapshot() []ErrorEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]ErrorEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Events returns a lazy sequence of all events in append order.
// Every range over the sequence starts from a fresh snapshot.
func (t *NumericTracer) Events() iter.Seq[ErrorEvent] {
	return func(yield func(ErrorEvent) bool) {
		for _, e := range t.snapshot() {
			if !yield(e.clone()) {
				return
			}
		}
	}
}

// EventsAtOrAbove filters Events by minimum severity
func (t *NumericTracer) EventsAtOrAbove(severity ErrorSeverity) iter.Seq[ErrorEvent] {
	return func(yield func(ErrorEvent) bool) {
		for e := range t.Events() {
			if e.Severity < severity {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of events currently in the log
func (t *NumericTracer) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.events)
}

// Last returns the most recent event, if any
func (t *NumericTracer) Last() (ErrorEvent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.events) == 0 {
		return ErrorEvent{}, false
	}
	return t.events[len(t.events)-1].clone(), true
}

// Summary counts events per error type
func (t *NumericTracer) Summary() map[ErrorType]int {
	counts := make(map[ErrorType]int)
	for e := range t.Events() {
		counts[e.Type]++
	}
	return counts
}

// Clear truncates the log. The sequence counter keeps running.
func (t *NumericTracer) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.events = nil
	t.logger.Debug("trace log cleared", zap.Uint64("last_seq", t.seq))
}

// Observe registers fn for future events and returns a function that
// removes it again.
func (t *NumericTracer) Observe(fn Observer) (cancel func()) {
	t.mu.Lock()
	key := t.nextObs
	t.nextObs++
	t.observers[key] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.observers, key)
			t.mu.Unlock()
		})
	}
}

// WriteNDJSON writes every event as one JSON object per line
func (t *NumericTracer) WriteNDJSON(w io.Writer) error {
	enc := sonic.ConfigDefault.NewEncoder(w)
	for e := range t.Events() {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
