/*
Package monitoring provides Prometheus metrics for engines, backends and
the HTTP surface.

# Overview

Metrics are registered on a caller supplied prometheus.Registerer, so a
test can build as many collectors as it likes on private registries. All
recording methods accept a nil *Metrics, which lets the engine treat
metrics as optional.

# Usage

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Count anomalies from an engine's tracer
	stop := metrics.WatchTracer(engine.Tracer())
	defer stop()

	// Time backend calls
	timer := monitoring.NewTimer(metrics, "parallel", "add_reduce")
	sum, err := b.AddReduce(xs)
	timer.Stop(err)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
