// Package server wires the nuclear-add HTTP service together.
//
// Server Lifecycle:
//  1. Validate configuration
//  2. Create metrics, request tracer and the engine
//  3. Setup HTTP routes and middleware
//  4. Serve until the context is cancelled
//  5. Graceful shutdown within Server.ShutdownTimeout
//
// Routes:
//   - GET /health, GET /metrics
//   - POST /v1/add, /v1/add-with-error, /v1/sum, /v1/evaluate, /v1/gradient
//   - POST /v1/batch/add, /v1/batch/reduce
//   - GET /v1/backends, /v1/stats, GET|DELETE /v1/events
//   - GET /v1/stream (WebSocket)
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg, logger, prometheus.NewRegistry())
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server failed", zap.Error(err))
//	}
package server
