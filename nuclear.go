// Package nuclear provides numerically robust addition: compensated
// summation, outward-rounded intervals, dual numbers, variance-carrying
// measurements, traced values and lazily differentiated expressions, all
// behind one Add entry point that records precision anomalies.
//
// The package-level functions delegate to a process-wide default engine,
// created on first use with DefaultConfig and replaceable with SetEngine.
package nuclear

import (
	"github.com/GriffinCanCode/nuclear-add/internal/backend"
	"github.com/GriffinCanCode/nuclear-add/internal/engine"
	"github.com/GriffinCanCode/nuclear-add/internal/errtrace"
	"github.com/GriffinCanCode/nuclear-add/internal/numeric"
)

type (
	Value           = numeric.Value
	Kind            = numeric.Kind
	Scalar          = numeric.Scalar
	Interval        = numeric.Interval
	DualNumber      = numeric.DualNumber
	StochasticValue = numeric.StochasticValue
	TracedValue     = numeric.TracedValue
	Operation       = numeric.Operation
	LazyExpr        = numeric.LazyExpr

	Engine        = engine.Engine
	EngineOption  = engine.EngineOption
	Config        = engine.Config
	Option        = engine.Option
	PrecisionMode = engine.PrecisionMode
	AnomalyError  = engine.AnomalyError

	Backend = backend.Backend

	NumericTracer = errtrace.NumericTracer
	ErrorEvent    = errtrace.ErrorEvent
	ErrorType     = errtrace.ErrorType
	ErrorSeverity = errtrace.ErrorSeverity
)

const (
	Compensated  = engine.Compensated
	Fast         = engine.Fast
	IntervalMode = engine.IntervalMode
	Traced       = engine.Traced

	Info     = errtrace.Info
	Warning  = errtrace.Warning
	Critical = errtrace.Critical

	Overflow         = errtrace.Overflow
	Underflow        = errtrace.Underflow
	CancellationLoss = errtrace.CancellationLoss
	NaNProduced      = errtrace.NaNProduced
	InfProduced      = errtrace.InfProduced
	PrecisionLoss    = errtrace.PrecisionLoss
)

var (
	ErrTypeMismatch    = numeric.ErrTypeMismatch
	ErrBackendNotFound = backend.ErrBackendNotFound
	ErrNumericAnomaly  = engine.ErrNumericAnomaly
	ErrInvalidConfig   = engine.ErrInvalidConfig
)

// Constructors re-exported from the implementation packages.
var (
	NewEngine          = engine.New
	NewConfig          = engine.NewConfig
	DefaultConfig      = engine.DefaultConfig
	FastConfig         = engine.FastConfig
	ParanoidConfig     = engine.ParanoidConfig
	ParsePrecisionMode = engine.ParsePrecisionMode

	WithPrecisionMode       = engine.WithPrecisionMode
	WithBackend             = engine.WithBackend
	WithTracing             = engine.WithTracing
	WithStrict              = engine.WithStrict
	WithCancellationEpsilon = engine.WithCancellationEpsilon
	WithLogger              = engine.WithLogger
	WithMetrics             = engine.WithMetrics

	NewInterval        = numeric.NewInterval
	PointInterval      = numeric.PointInterval
	Variable           = numeric.Variable
	Constant           = numeric.Constant
	NewStochasticValue = numeric.NewStochasticValue
	MeasuredMean       = numeric.MeasuredMean
	NewTracedValue     = numeric.NewTracedValue
	Leaf               = numeric.Leaf
	Const              = numeric.Const
	AddExpr            = numeric.AddExpr
	SumExpr            = numeric.SumExpr
)

// Add adds a and b on the default engine
func Add(a, b Value) (Value, error) {
	return engine.Default().Add(a, b)
}

// AddWithConfig adds a and b on the default engine under cfg
func AddWithConfig(a, b Value, cfg Config) (Value, error) {
	return engine.Default().AddWithConfig(a, b, &cfg)
}

// SumSafe is compensated summation on the default engine
func SumSafe(xs []float64) (float64, error) {
	return engine.Default().SumSafe(xs)
}

// AddWithError returns the best estimate of a+b and an interval that
// contains the exact sum
func AddWithError(a, b float64) (float64, Interval, error) {
	return engine.Default().AddWithError(a, b)
}

// Gradient is the derivative of expr with respect to the leaf named wrt
func Gradient(expr *LazyExpr, wrt string) float64 {
	return engine.Default().Gradient(expr, wrt)
}

// GetEngine returns the process-wide engine
func GetEngine() *Engine {
	return engine.Default()
}

// SetEngine replaces the process-wide engine; nil restores the lazily
// created default
func SetEngine(e *Engine) {
	engine.SetDefault(e)
}

// GetBackend looks a backend up by name
func GetBackend(name string) (Backend, error) {
	return backend.Get(name)
}

// RegisterBackend makes b available to engines by name
func RegisterBackend(b Backend) error {
	return backend.Register(b)
}

// ListAvailableBackends returns the registered backend names, sorted
func ListAvailableBackends() []string {
	return backend.List()
}
