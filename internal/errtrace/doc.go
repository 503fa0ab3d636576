// Package errtrace records numerically significant events.
//
// A NumericTracer is an append-only log of ErrorEvent values. Engines own
// one tracer each and record every anomaly they observe: overflow,
// underflow, cancellation, NaN or Inf results and absorbed operands.
//
// Ordering:
//   - Every event gets a sequence number from a counter guarded by the
//     tracer's mutex, so concurrent writers still produce a total order.
//   - Clear truncates the log but never rewinds the counter.
//
// Reading:
//
//	for e := range tracer.EventsAtOrAbove(errtrace.Warning) {
//		fmt.Println(e)
//	}
//
// The sequence is restartable; each range takes its own snapshot.
package errtrace
