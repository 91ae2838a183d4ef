// Package logging provides a minimal logging interface and adapters for
// AgentHub.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the bus, orchestrator and agents use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - AgentHubLogger with contextual helpers (component, agent, workflow)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	b := bus.New(bus.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
