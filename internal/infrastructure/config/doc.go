// Package config provides 12-factor configuration management for the
// nuclear-add server and CLI.
//
// Configuration starts from Default, is optionally overlaid with a YAML or
// TOML file, and is finally overridden by environment variables.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, CORS, shutdown)
//   - Engine: precision mode, backend, tracing and strict mode
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg, err := config.LoadFile("nuclear.yaml")
//	if err != nil {
//		return err
//	}
//	engineCfg, err := cfg.Engine.Build()
//
// Environment Variables:
//   - PORT, HOST, CORS_ORIGINS, SHUTDOWN_TIMEOUT
//   - NUCLEAR_PRECISION_MODE, NUCLEAR_BACKEND, NUCLEAR_TRACING,
//     NUCLEAR_STRICT, NUCLEAR_CANCELLATION_EPSILON
//   - LOG_LEVEL, LOG_FORMAT, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
