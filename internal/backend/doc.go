// Package backend defines the batch execution capability the engine
// consumes, a process-wide registry of named backends, and the built-in
// sequential, gonum and parallel implementations.
package backend
