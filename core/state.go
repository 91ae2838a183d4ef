package core

// AgentState is the lifecycle state of an agent instance.
type AgentState string

const (
	// StateIdle means the agent is available for work.
	StateIdle AgentState = "idle"
	// StateProcessing means the agent is handling a message.
	StateProcessing AgentState = "processing"
	// StateError means the agent's last processing attempt failed and it has
	// not yet recovered.
	StateError AgentState = "error"
)

// allowedTransitions is the closed transition table guarding agent state.
// Any pair outside this table is rejected with InvalidTransitionError.
var allowedTransitions = map[AgentState][]AgentState{
	StateIdle:       {StateProcessing},
	StateProcessing: {StateIdle, StateError},
	StateError:      {StateIdle},
}

// ValidTransition reports whether moving from -> to is permitted.
func ValidTransition(from, to AgentState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
