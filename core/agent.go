package core

import "context"

// Agent defines the contract every processing unit in AgentHub must satisfy.
//
// Agents are consumed by the bus and orchestrator purely through this
// interface: a capability set for selection, a guarded 3-state machine for
// concurrency discipline, and Process for the actual work. What an agent
// computes inside Process (model inference, tool execution, memory lookups)
// is opaque to the core; the only requirement is that Process eventually
// returns a Response or an error, respecting ctx cancellation.
//
// Implementations must:
//   - Keep Process free of internal retries; retry policy lives in the bus
//   - Reject illegal state moves via the transition table (see ValidTransition)
//   - Be safe for the bus to call State/Capabilities concurrently with Process
type Agent interface {
	// ID returns the unique agent identifier used for addressing.
	ID() string

	// Name returns the human-readable name.
	Name() string

	// Description returns a short description of the agent's purpose.
	Description() string

	// Capabilities returns the closed tag set this agent advertises.
	Capabilities() CapabilitySet

	// Process handles a query with optional context and produces a response.
	// It may suspend on downstream I/O but must eventually resolve or fail.
	Process(ctx context.Context, query string, queryCtx map[string]any) (Response, error)

	// State returns the current lifecycle state.
	State() AgentState

	// SetState transitions the state machine, failing with
	// InvalidTransitionError when (current, next) is not in the allowed table.
	SetState(next AgentState) error
}
