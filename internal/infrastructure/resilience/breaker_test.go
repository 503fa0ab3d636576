package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced by hand so transitions do not depend on sleeps
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errBackend = errors.New("backend failure")

func outcome(ok bool) func() error {
	return func() error {
		if ok {
			return nil
		}
		return errBackend
	}
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		settings      Settings
		requests      []bool // true = success, false = failure
		advance       time.Duration
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			settings:      Settings{MaxRequests: 1, Timeout: time.Minute},
			requests:      []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name: "opens after consecutive failures",
			settings: Settings{
				MaxRequests: 1,
				Timeout:     time.Minute,
				ReadyToTrip: func(counts Counts) bool {
					return counts.ConsecutiveFailures >= 3
				},
			},
			requests:      []bool{false, false, false},
			expectedState: StateOpen,
		},
		{
			name: "success resets the failure streak",
			settings: Settings{
				MaxRequests: 1,
				ReadyToTrip: func(counts Counts) bool {
					return counts.ConsecutiveFailures >= 2
				},
			},
			requests:      []bool{false, true, false},
			expectedState: StateClosed,
		},
		{
			name: "half-open once the timeout elapses",
			settings: Settings{
				MaxRequests: 1,
				Timeout:     10 * time.Second,
				ReadyToTrip: func(counts Counts) bool {
					return counts.ConsecutiveFailures >= 2
				},
			},
			requests:      []bool{false, false},
			advance:       11 * time.Second,
			expectedState: StateHalfOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			tt.settings.Now = clock.Now
			breaker := New("test", tt.settings)

			for _, ok := range tt.requests {
				_ = breaker.Do(outcome(ok))
			}
			clock.Advance(tt.advance)

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerOpenRejects(t *testing.T) {
	calls := 0
	breaker := New("test", Settings{
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 1 },
		Timeout:     time.Minute,
		Now:         newFakeClock().Now,
	})

	require.ErrorIs(t, breaker.Do(outcome(false)), errBackend)

	err := breaker.Do(func() error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls, "open breaker must not call through")
}

func TestBreakerHalfOpen(t *testing.T) {
	clock := newFakeClock()
	breaker := New("test", Settings{
		MaxRequests: 2,
		Timeout:     time.Second,
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})

	_ = breaker.Do(outcome(false))
	clock.Advance(2 * time.Second)
	require.Equal(t, StateHalfOpen, breaker.State())

	require.NoError(t, breaker.Do(outcome(true)))
	assert.Equal(t, StateHalfOpen, breaker.State(), "one success is not enough")

	require.NoError(t, breaker.Do(outcome(true)))
	assert.Equal(t, StateClosed, breaker.State())

	_ = breaker.Do(outcome(false))
	clock.Advance(2 * time.Second)
	require.Equal(t, StateHalfOpen, breaker.State())
	_ = breaker.Do(outcome(false))
	assert.Equal(t, StateOpen, breaker.State(), "failure while half-open reopens")
}

func TestBreakerHalfOpenLimit(t *testing.T) {
	clock := newFakeClock()
	breaker := New("test", Settings{
		MaxRequests: 1,
		Timeout:     time.Second,
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})

	_ = breaker.Do(outcome(false))
	clock.Advance(2 * time.Second)

	err := breaker.Do(func() error {
		// a second caller arrives while the trial call is in flight
		assert.ErrorIs(t, breaker.Do(outcome(true)), ErrTooManyRequests)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerRecoversPanics(t *testing.T) {
	breaker := New("gpu", Settings{Now: newFakeClock().Now})

	err := breaker.Do(func() error { panic("device lost") })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lost")
	assert.Equal(t, uint32(1), breaker.Counts().ConsecutiveFailures)
}

func TestBreakerIntervalClearsCounts(t *testing.T) {
	clock := newFakeClock()
	breaker := New("test", Settings{Interval: time.Minute, Now: clock.Now})

	_ = breaker.Do(outcome(false))
	_ = breaker.Do(outcome(true))
	require.Equal(t, uint32(2), breaker.Counts().Requests)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, StateClosed, breaker.State())
	assert.Equal(t, Counts{}, breaker.Counts())
}

func TestRun(t *testing.T) {
	breaker := New("test", Settings{Now: newFakeClock().Now})

	v, err := Run(breaker, func() (float64, error) { return 2.5, nil })
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	v, err = Run(breaker, func() (float64, error) { return 7, errBackend })
	assert.ErrorIs(t, err, errBackend)
	assert.Zero(t, v, "value is dropped on error")
}

func TestBreakerCallbacks(t *testing.T) {
	clock := newFakeClock()
	var transitions []string

	breaker := New("test", Settings{
		MaxRequests: 1,
		Timeout:     time.Second,
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 1 },
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
		Now: clock.Now,
	})

	_ = breaker.Do(outcome(false))
	clock.Advance(2 * time.Second)
	_ = breaker.Do(outcome(true))

	assert.Equal(t, []string{
		"test:closed->open",
		"test:open->half-open",
		"test:half-open->closed",
	}, transitions)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestBreakerIsFailure(t *testing.T) {
	errCaller := errors.New("bad input")
	breaker := New("test", Settings{
		ReadyToTrip: func(counts Counts) bool { return counts.ConsecutiveFailures >= 1 },
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, errCaller)
		},
		Now: newFakeClock().Now,
	})

	assert.ErrorIs(t, breaker.Do(func() error { return errCaller }), errCaller)
	assert.Equal(t, StateClosed, breaker.State(), "caller errors do not trip")
	assert.Equal(t, uint32(1), breaker.Counts().TotalSuccesses)

	_ = breaker.Do(outcome(false))
	assert.Equal(t, StateOpen, breaker.State())
}
