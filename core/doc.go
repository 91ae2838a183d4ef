// Package core provides the foundational domain types and interfaces used by
// AgentHub. It defines the core abstractions for:
//
//   - Messages (immutable request/response/notification records with
//     correlation ids)
//   - Agents (capability-tagged processing units with a guarded state machine)
//   - Capability sets (closed, enumerable tags matched by set operations)
//   - The shared error taxonomy (unavailable, timeout, invalid transition,
//     invalid plan, no agent available, application errors)
//
// The package intentionally keeps implementation concerns (routing, retry,
// orchestration, concrete agents) out of scope, exposing small interfaces so
// the bus, orchestrator and dispatcher packages can depend on a stable
// contract.
package core
