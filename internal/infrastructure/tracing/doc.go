/*
Package tracing provides request tracing for the HTTP surface.

# Overview

Every request gets a span with a UUID trace and span identifier. Incoming
X-Trace-ID and X-Span-ID headers continue an existing trace, and both
identifiers are echoed on the response. Handlers reach the active span
through SpanFromContext to tag it, for example with the precision mode or
the anomaly that failed a strict request.

Finished spans are queued on a buffered channel and logged by a single
collector goroutine. When the buffer is full spans are dropped with a
warning rather than slowing requests down.

# Usage

	tracer := tracing.New("nuclear-add", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// inside a handler
	if span := tracing.SpanFromContext(c.Request.Context()); span != nil {
		span.SetTag("numeric.anomaly", "overflow")
	}
*/
package tracing
