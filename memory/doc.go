// Package memory contains the Store contract and a process-local keyword
// store used by the memory agent. Select an implementation at wiring time;
// richer backends (vector databases, embeddings indexes, etc.) can be added
// without touching callers.
package memory
