// Package orchestrator decomposes a user request into a dependency graph of
// subtasks, selects an agent per subtask, executes the graph in topological
// order over the communication bus, and records every lifecycle step in an
// append-only workflow history.
//
// The package is the bus's heaviest client and never the other way around:
// it consumes the bus's registry snapshots for agent selection and its
// SendAndAwait retry semantics for dispatch. Failures are contained per
// subtask; a failed branch transitively skips its dependents while
// independent branches continue, and a partial workflow still reports every
// completed result together with explicit failed/skipped reasons.
//
// Workflows are retained in a WorkflowStore (in-memory with capacity
// eviction, or SQLite-backed) and queryable by id or status.
package orchestrator
