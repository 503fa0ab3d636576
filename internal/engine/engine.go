package engine

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/nuclear-add/internal/backend"
	"github.com/GriffinCanCode/nuclear-add/internal/errtrace"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/nuclear-add/internal/logging"
	"github.com/GriffinCanCode/nuclear-add/internal/numeric"
	"github.com/GriffinCanCode/nuclear-add/internal/shared/id"
)

// Engine dispatches additions according to its Config, runs batch work on
// its bound backend and records anomalies on the tracer it owns. An Engine
// is safe for concurrent use.
type Engine struct {
	id       id.EngineID
	cfg      Config
	tracer   *errtrace.NumericTracer
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	registry *backend.Registry
	breaker  resilience.Settings

	mu      sync.RWMutex
	backend backend.Backend
}

// EngineOption configures an Engine at construction
type EngineOption func(*engineOptions)

type engineOptions struct {
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	registry *backend.Registry
	backend  backend.Backend
	breaker  resilience.Settings
}

// WithLogger sets the logger; nil means no logging
func WithLogger(l *zap.Logger) EngineOption {
	return func(o *engineOptions) { o.logger = l }
}

// WithMetrics reports operations and anomalies to m
func WithMetrics(m *monitoring.Metrics) EngineOption {
	return func(o *engineOptions) { o.metrics = m }
}

// WithRegistry resolves the config's backend name in r instead of the
// process-wide registry
func WithRegistry(r *backend.Registry) EngineOption {
	return func(o *engineOptions) { o.registry = r }
}

// WithBackendInstance binds b directly, skipping the name lookup
func WithBackendInstance(b backend.Backend) EngineOption {
	return func(o *engineOptions) { o.backend = b }
}

// WithBreakerSettings configures the breaker around non-sequential backends
func WithBreakerSettings(s resilience.Settings) EngineOption {
	return func(o *engineOptions) { o.breaker = s }
}

// New builds an engine bound to cfg. The backend named by cfg must be
// registered, otherwise backend.ErrBackendNotFound is returned.
func New(cfg Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := engineOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	engineID := id.NewEngineID()
	logger := logging.OrNop(o.logger).Named("engine").With(zap.String("engine_id", engineID.String()))

	e := &Engine{
		id:       engineID,
		cfg:      cfg,
		tracer:   errtrace.New(logger),
		logger:   logger,
		metrics:  o.metrics,
		registry: o.registry,
		breaker:  o.breaker,
	}

	b := o.backend
	if b == nil {
		var err error
		b, err = e.lookup(cfg.Backend())
		if err != nil {
			return nil, err
		}
	}
	e.backend = e.guard(b)

	e.metrics.WatchTracer(e.tracer)

	logger.Debug("Engine created", zap.Stringer("config", cfg), zap.String("backend", b.Name()))
	return e, nil
}

func (e *Engine) lookup(name string) (backend.Backend, error) {
	if e.registry != nil {
		return e.registry.Get(name)
	}
	return backend.Get(name)
}

// guard wraps everything but the sequential backend in a breaker that
// falls back to sequential execution
func (e *Engine) guard(b backend.Backend) backend.Backend {
	if b == nil || b.Name() == backend.SequentialName {
		if b == nil {
			return backend.Sequential{}
		}
		return b
	}
	if _, ok := b.(*backend.Guarded); ok {
		return b
	}

	settings := e.breaker
	onChange := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to resilience.State) {
		e.metrics.SetBreakerState(b.Name(), int(to))
		if onChange != nil {
			onChange(name, from, to)
		}
	}
	return backend.Guard(b, backend.Sequential{}, settings, e.logger)
}

// ID returns the engine's identifier
func (e *Engine) ID() id.EngineID { return e.id }

// Config returns the bound configuration
func (e *Engine) Config() Config { return e.cfg }

// Tracer exposes the engine's anomaly log
func (e *Engine) Tracer() *errtrace.NumericTracer { return e.tracer }

// Backend returns the backend used for batch operations
func (e *Engine) Backend() backend.Backend {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.backend
}

// BindBackend replaces the batch backend. Scalar additions are unaffected.
// A nil backend rebinds sequential execution.
func (e *Engine) BindBackend(b backend.Backend) {
	b = e.guard(b)

	e.mu.Lock()
	prev := e.backend
	e.backend = b
	e.mu.Unlock()

	e.logger.Info("Backend bound", zap.String("from", prev.Name()), zap.String("to", b.Name()))
}

// Add adds two values under the bound config
func (e *Engine) Add(a, b numeric.Value) (numeric.Value, error) {
	return e.AddWithConfig(a, b, nil)
}

// AddWithConfig adds two values under cfg, or the bound config when cfg
// is nil. Two scalars are routed by the precision mode; anything else
// goes through the pair dispatch table. numeric.ErrTypeMismatch is always
// returned as an error. Anomalies are recorded on the tracer and, in
// strict mode, the first one at Warning or above fails the call with an
// *AnomalyError.
func (e *Engine) AddWithConfig(a, b numeric.Value, cfg *Config) (numeric.Value, error) {
	c := e.cfg
	if cfg != nil {
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		c = *cfg
	}

	start := time.Now()
	result, anomalies, err := e.dispatch(a, b, c)
	e.metrics.RecordOperation("add", c.mode.String(), time.Since(start))
	if err != nil {
		return nil, err
	}

	if err := e.observe(c, anomalies); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) dispatch(a, b numeric.Value, c Config) (numeric.Value, []numeric.Anomaly, error) {
	x, xok := a.(numeric.Scalar)
	y, yok := b.(numeric.Scalar)
	if !xok || !yok {
		return numeric.Add(a, b, c.epsilon)
	}

	switch c.mode {
	case Fast:
		return numeric.Add(x, y, c.epsilon)
	case IntervalMode:
		return numeric.Add(numeric.PointInterval(float64(x)), numeric.PointInterval(float64(y)), c.epsilon)
	case Traced:
		return numeric.Add(numeric.NewTracedValue(float64(x)), numeric.NewTracedValue(float64(y)), c.epsilon)
	default:
		s, _ := numeric.TwoSum(float64(x), float64(y))
		return numeric.Scalar(s), numeric.Inspect("compensated_add", float64(x), float64(y), s, c.epsilon), nil
	}
}

// observe records anomalies and applies strict mode
func (e *Engine) observe(c Config, anomalies []numeric.Anomaly) error {
	if !c.tracing || len(anomalies) == 0 {
		return nil
	}

	var failure *AnomalyError
	for _, a := range anomalies {
		ev := e.tracer.Record(a.Type, a.Severity, a.Operands, a.Magnitude,
			errtrace.WithOperation(a.Operation),
			errtrace.WithMessage(a.Message))
		if c.strict && failure == nil && ev.Severity >= errtrace.Warning {
			failure = &AnomalyError{Event: ev}
		}
	}

	if failure != nil {
		e.metrics.RecordStrictFailure(failure.Event.Type.String())
		return failure
	}
	return nil
}

// AddWithError returns the compensated sum of a and b together with an
// outward-rounded interval that contains the exact sum. The scalar always
// lies inside the interval.
func (e *Engine) AddWithError(a, b float64) (float64, numeric.Interval, error) {
	start := time.Now()
	s, _ := numeric.TwoSum(a, b)
	bound := numeric.PointInterval(a).Add(numeric.PointInterval(b))
	e.metrics.RecordOperation("add_with_error", e.cfg.mode.String(), time.Since(start))

	if err := e.observe(e.cfg, numeric.Inspect("add_with_error", a, b, s, e.cfg.epsilon)); err != nil {
		return 0, numeric.Interval{}, err
	}
	return s, bound, nil
}

// SumSafe adds xs with Kahan-Babuska compensation. A non-finite result is
// recorded as NaNProduced, InfProduced or Overflow.
func (e *Engine) SumSafe(xs []float64) (float64, error) {
	start := time.Now()
	sum := numeric.SumSafe(xs)
	e.metrics.RecordOperation("sum_safe", e.cfg.mode.String(), time.Since(start))

	if err := e.observe(e.cfg, inspectSum("sum_safe", xs, sum)); err != nil {
		return 0, err
	}
	return sum, nil
}

// Sum uses the backend's reduction in fast mode and SumSafe otherwise
func (e *Engine) Sum(xs []float64) (float64, error) {
	if e.cfg.mode != Fast {
		return e.SumSafe(xs)
	}
	return e.Reduce(xs)
}

// Reduce adds xs on the bound backend without compensation, whatever the
// precision mode
func (e *Engine) Reduce(xs []float64) (float64, error) {
	b := e.Backend()
	start := time.Now()
	timer := monitoring.NewTimer(e.metrics, b.Name(), "add_reduce")
	sum, err := b.AddReduce(xs)
	timer.Stop(err)
	e.metrics.RecordOperation("reduce", e.cfg.mode.String(), time.Since(start))
	if err != nil {
		return 0, fmt.Errorf("engine: reduce on %s: %w", b.Name(), err)
	}

	if err := e.observe(e.cfg, inspectSum("add_reduce", xs, sum)); err != nil {
		return 0, err
	}
	return sum, nil
}

// AddElementwise adds two equal-length batches on the backend. Each
// element is inspected after the backend returns; the backend itself never
// writes to the tracer.
func (e *Engine) AddElementwise(a, b []float64) ([]float64, error) {
	be := e.Backend()
	start := time.Now()
	timer := monitoring.NewTimer(e.metrics, be.Name(), "add_elementwise")
	out, err := be.AddElementwise(a, b)
	timer.Stop(err)
	e.metrics.RecordOperation("add_elementwise", e.cfg.mode.String(), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("engine: elementwise on %s: %w", be.Name(), err)
	}
	if err := backend.CheckResult(be.Name(), a, out); err != nil {
		return nil, fmt.Errorf("engine: elementwise: %w", err)
	}

	if !e.cfg.tracing {
		return out, nil
	}
	var anomalies []numeric.Anomaly
	for i := range out {
		anomalies = append(anomalies, numeric.Inspect("add_elementwise", a[i], b[i], out[i], e.cfg.epsilon)...)
	}
	if err := e.observe(e.cfg, anomalies); err != nil {
		return nil, err
	}
	return out, nil
}

// Gradient differentiates expr with respect to the leaf named wrt
func (e *Engine) Gradient(expr *numeric.LazyExpr, wrt string) float64 {
	start := time.Now()
	g := numeric.Gradient(expr, wrt)
	e.metrics.RecordOperation("gradient", e.cfg.mode.String(), time.Since(start))
	return g
}

// EvaluateSafe evaluates expr with a compensated sum over its terms
func (e *Engine) EvaluateSafe(expr *numeric.LazyExpr) (float64, error) {
	start := time.Now()
	terms := expr.Terms()
	sum := numeric.SumSafe(terms)
	e.metrics.RecordOperation("evaluate", e.cfg.mode.String(), time.Since(start))

	if err := e.observe(e.cfg, inspectSum("evaluate", terms, sum)); err != nil {
		return 0, err
	}
	return sum, nil
}

// inspectSum classifies a non-finite reduction result
func inspectSum(op string, xs []float64, sum float64) []numeric.Anomaly {
	if !math.IsNaN(sum) && !math.IsInf(sum, 0) {
		return nil
	}

	var offending []float64
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			offending = append(offending, x)
		}
	}

	a := numeric.Anomaly{
		Operation: op,
		Operands:  offending,
		Magnitude: math.Abs(sum),
	}
	switch {
	case math.IsNaN(sum):
		a.Type, a.Severity, a.Message = errtrace.NaNProduced, errtrace.Critical, "sum is NaN"
	case len(offending) > 0:
		a.Type, a.Severity, a.Message = errtrace.InfProduced, errtrace.Warning, "infinite term propagated"
	default:
		a.Type, a.Severity, a.Message = errtrace.Overflow, errtrace.Critical, "finite terms overflowed"
	}
	return []numeric.Anomaly{a}
}
