/*
Package resilience provides the circuit breaker that guards external
numeric backends.

# Overview

Accelerated backends are external collaborators: they may be missing a
device, crash or return errors. The breaker stops routing batch work to a
backend that keeps failing and lets the caller fall back to a local one
until the backend had time to recover.

# Usage

	breaker := resilience.New("backend:parallel", resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	sum, err := resilience.Run(breaker, func() (float64, error) {
		return primary.AddReduce(xs)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience
