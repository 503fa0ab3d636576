package engine

import (
	"sync/atomic"

	"github.com/GriffinCanCode/nuclear-add/internal/backend"
)

var defaultEngine atomic.Pointer[Engine]

// Default returns the process-wide engine, creating it with DefaultConfig
// on first use
func Default() *Engine {
	if e := defaultEngine.Load(); e != nil {
		return e
	}

	e, err := New(DefaultConfig(), WithBackendInstance(backend.Sequential{}))
	if err != nil {
		// DefaultConfig always validates
		panic(err)
	}
	// a concurrent SetDefault or first use wins over this instance
	if defaultEngine.CompareAndSwap(nil, e) {
		return e
	}
	return Default()
}

// SetDefault replaces the process-wide engine in a single store. Readers
// observe either the old or the new engine. nil restores lazy creation.
func SetDefault(e *Engine) {
	defaultEngine.Store(e)
}
