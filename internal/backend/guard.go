package backend

import (
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/nuclear-add/internal/infrastructure/resilience"
)

// Guarded routes calls to a primary backend through a circuit breaker and
// falls back to a second backend when the breaker rejects or the primary
// fails. Argument errors such as ErrLengthMismatch are returned as is.
type Guarded struct {
	primary  Backend
	fallback Backend
	breaker  *resilience.Breaker
	logger   *zap.Logger
}

// Guard wraps primary. The returned backend keeps the primary's name.
func Guard(primary, fallback Backend, settings resilience.Settings, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("backend").With(zap.String("primary", primary.Name()))

	onChange := settings.OnStateChange
	settings.OnStateChange = func(name string, from, to resilience.State) {
		logger.Warn("Backend breaker changed state",
			zap.String("from", from.String()),
			zap.String("to", to.String()))
		if onChange != nil {
			onChange(name, from, to)
		}
	}

	return &Guarded{
		primary:  primary,
		fallback: fallback,
		breaker:  resilience.New("backend:"+primary.Name(), settings),
		logger:   logger,
	}
}

func (g *Guarded) Name() string { return g.primary.Name() }

// Primary returns the wrapped backend
func (g *Guarded) Primary() Backend { return g.primary }

// State reports the breaker state
func (g *Guarded) State() resilience.State { return g.breaker.State() }

func (g *Guarded) AddElementwise(a, b []float64) ([]float64, error) {
	if err := checkLengths(a, b); err != nil {
		return nil, err
	}
	out, err := resilience.Run(g.breaker, func() ([]float64, error) {
		out, err := g.primary.AddElementwise(a, b)
		if err != nil {
			return nil, err
		}
		return out, CheckResult(g.primary.Name(), a, out)
	})
	if err == nil {
		return out, nil
	}
	g.degrade("add_elementwise", err)
	return g.fallback.AddElementwise(a, b)
}

func (g *Guarded) AddReduce(xs []float64) (float64, error) {
	sum, err := resilience.Run(g.breaker, func() (float64, error) {
		return g.primary.AddReduce(xs)
	})
	if err == nil {
		return sum, nil
	}
	g.degrade("add_reduce", err)
	return g.fallback.AddReduce(xs)
}

func (g *Guarded) degrade(op string, err error) {
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		g.logger.Debug("Primary backend short-circuited", zap.String("op", op))
		return
	}
	g.logger.Warn("Primary backend failed, using fallback",
		zap.String("op", op),
		zap.String("fallback", g.fallback.Name()),
		zap.Error(err))
}
