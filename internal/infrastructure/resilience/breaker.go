package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateHalfOpen: "half-open",
	StateOpen:     "open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Settings configures a Breaker. Zero fields take the defaults listed.
type Settings struct {
	// MaxRequests caps trial calls while half-open, and is also the number
	// of consecutive trial successes that close the breaker. Default 1.
	MaxRequests uint32
	// Interval clears the counts while closed. Default 60s.
	Interval time.Duration
	// Timeout is how long the breaker stays open. Default 30s.
	Timeout time.Duration
	// ReadyToTrip decides, after a failure while closed, whether to open.
	// Default: five consecutive failures.
	ReadyToTrip func(counts Counts) bool
	// IsFailure classifies a returned error. Errors it rejects are handed
	// back to the caller but count as successes. Default: every error.
	IsFailure func(err error) bool
	// OnStateChange is called with the breaker lock held
	OnStateChange func(name string, from State, to State)
	// Now overrides the clock, for tests
	Now func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	if s.Interval == 0 {
		s.Interval = 60 * time.Second
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.ReadyToTrip == nil {
		s.ReadyToTrip = func(c Counts) bool { return c.ConsecutiveFailures >= 5 }
	}
	if s.IsFailure == nil {
		s.IsFailure = func(err error) bool { return err != nil }
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// Counts are the outcomes seen in the current epoch
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

func (c *Counts) success() {
	c.TotalSuccesses++
	c.ConsecutiveSuccesses++
	c.ConsecutiveFailures = 0
}

func (c *Counts) failure() {
	c.TotalFailures++
	c.ConsecutiveFailures++
	c.ConsecutiveSuccesses = 0
}

// Breaker stops routing work to a backend that keeps failing. Every state
// change and every closed-state Interval starts a new epoch with fresh
// counts; a call that settles in a later epoch than it was admitted in is
// not counted.
type Breaker struct {
	name string
	cfg  Settings

	mu       sync.Mutex
	state    State
	epoch    uint64
	counts   Counts
	deadline time.Time
}

// New creates a closed breaker
func New(name string, settings Settings) *Breaker {
	b := &Breaker{name: name, cfg: settings.withDefaults()}
	b.deadline = b.cfg.Now().Add(b.cfg.Interval)
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

// State returns the state after applying any elapsed deadline
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.cfg.Now())
	return b.state
}

// Counts returns a copy of the current epoch's counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

// Do runs fn if the breaker admits the call. A panic inside fn is
// recovered and returned as a failure, so a crashing backend trips the
// breaker instead of the process.
func (b *Breaker) Do(fn func() error) (err error) {
	epoch, err := b.admit()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: recovered panic: %v", b.name, r)
		}
		b.settle(epoch, err)
	}()

	return fn()
}

// Run is Do for calls that produce a value. The value is dropped on error.
func Run[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var out T
	err := b.Do(func() error {
		v, err := fn()
		if err == nil {
			out = v
		}
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.cfg.Now())
	switch {
	case b.state == StateOpen:
		return b.epoch, ErrCircuitOpen
	case b.state == StateHalfOpen && b.counts.Requests >= b.cfg.MaxRequests:
		return b.epoch, ErrTooManyRequests
	}
	b.counts.Requests++
	return b.epoch, nil
}

func (b *Breaker) settle(epoch uint64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.cfg.Now()
	b.advance(now)
	if b.epoch != epoch {
		return
	}

	if !b.cfg.IsFailure(err) {
		b.counts.success()
		if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.cfg.MaxRequests {
			b.enter(StateClosed, now)
		}
		return
	}

	switch b.state {
	case StateClosed:
		b.counts.failure()
		if b.cfg.ReadyToTrip(b.counts) {
			b.enter(StateOpen, now)
		}
	case StateHalfOpen:
		b.enter(StateOpen, now)
	}
}

// advance applies deadlines that have passed by now
func (b *Breaker) advance(now time.Time) {
	if !now.After(b.deadline) {
		return
	}
	switch b.state {
	case StateClosed:
		b.startEpoch(now)
	case StateOpen:
		b.enter(StateHalfOpen, now)
	}
}

func (b *Breaker) enter(state State, now time.Time) {
	if b.state == state {
		return
	}
	from := b.state
	b.state = state
	b.startEpoch(now)

	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.name, from, state)
	}
}

func (b *Breaker) startEpoch(now time.Time) {
	b.epoch++
	b.counts = Counts{}

	switch b.state {
	case StateClosed:
		b.deadline = now.Add(b.cfg.Interval)
	case StateOpen:
		b.deadline = now.Add(b.cfg.Timeout)
	default:
		// half-open waits for trial outcomes, not the clock
		b.deadline = farFuture
	}
}

var farFuture = time.Unix(1<<62, 0)
