package agent

import (
	"sync"

	"github.com/hupe1980/agenthub/core"
)

// BaseAgent bundles identity, capability advertising and the guarded state
// machine shared by all concrete agents. Embed it and supply a Process method
// to satisfy the core.Agent interface. All exported methods are
// goroutine-safe unless otherwise documented.
type BaseAgent struct {
	id           string
	name         string
	description  string
	capabilities core.CapabilitySet

	mu    sync.Mutex // Protects state
	state core.AgentState
}

// NewBaseAgent constructs a BaseAgent in the idle state.
func NewBaseAgent(id, name, description string, capabilities ...string) BaseAgent {
	return BaseAgent{
		id:           id,
		name:         name,
		description:  description,
		capabilities: core.NewCapabilitySet(capabilities...),
		state:        core.StateIdle,
	}
}

// ID returns the unique identifier used for addressing on the bus.
func (b *BaseAgent) ID() string { return b.id }

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// Capabilities returns the capability set advertised to selectors.
func (b *BaseAgent) Capabilities() core.CapabilitySet { return b.capabilities }

// State returns the current lifecycle state.
func (b *BaseAgent) State() core.AgentState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// SetState transitions the agent to next, rejecting anything the transition
// table does not allow.
func (b *BaseAgent) SetState(next core.AgentState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !core.ValidTransition(b.state, next) {
		return &core.InvalidTransitionError{AgentID: b.id, From: b.state, To: next}
	}
	b.state = next
	return nil
}
