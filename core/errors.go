package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the core taxonomy. Typed wrappers below carry detail
// while remaining matchable via errors.Is against these sentinels.
var (
	// ErrAgentUnavailable marks delivery to an unknown or deregistered agent.
	ErrAgentUnavailable = errors.New("agent unavailable")
	// ErrTimeout marks a request that produced no response within its deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrInvalidTransition marks an illegal agent state machine move.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInvalidPlan marks a workflow whose subtask graph contains a cycle.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrNoAgentAvailable marks a subtask whose required capability has no
	// candidate agent and no configured fallback.
	ErrNoAgentAvailable = errors.New("no agent available")
)

// AgentUnavailableError reports that the addressed agent is not registered.
// It is retryable by the caller's policy.
type AgentUnavailableError struct {
	AgentID string
}

func (e *AgentUnavailableError) Error() string {
	return fmt.Sprintf("agent %q unavailable", e.AgentID)
}

// Is matches ErrAgentUnavailable.
func (e *AgentUnavailableError) Is(target error) bool { return target == ErrAgentUnavailable }

// TimeoutError reports that no response arrived for a request within the
// deadline. The receiver's in-flight processing is not cancelled; a late
// result is discarded by correlation mismatch.
type TimeoutError struct {
	MessageID string
	AgentID   string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %s to agent %q timed out", e.MessageID, e.AgentID)
}

// Is matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// InvalidTransitionError reports a rejected agent state machine move.
type InvalidTransitionError struct {
	AgentID string
	From    AgentState
	To      AgentState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("agent %q: invalid state transition %s -> %s", e.AgentID, e.From, e.To)
}

// Is matches ErrInvalidTransition.
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// InvalidPlanError reports a cyclic subtask dependency detected before
// execution. Cycle holds one offending dependency path when known.
type InvalidPlanError struct {
	WorkflowID string
	Cycle      []string
}

func (e *InvalidPlanError) Error() string {
	if len(e.Cycle) == 0 {
		return fmt.Sprintf("workflow %s: cyclic subtask dependencies", e.WorkflowID)
	}
	return fmt.Sprintf("workflow %s: cyclic subtask dependencies (%s)", e.WorkflowID, strings.Join(e.Cycle, " -> "))
}

// Is matches ErrInvalidPlan.
func (e *InvalidPlanError) Is(target error) bool { return target == ErrInvalidPlan }

// NoAgentAvailableError reports that no registered agent satisfies a
// subtask's required capability and no fallback agent is configured.
type NoAgentAvailableError struct {
	Capability string
}

func (e *NoAgentAvailableError) Error() string {
	return fmt.Sprintf("no agent available for capability %q", e.Capability)
}

// Is matches ErrNoAgentAvailable.
func (e *NoAgentAvailableError) Is(target error) bool { return target == ErrNoAgentAvailable }

// ApplicationError wraps a business failure produced by an agent itself.
// It is passed through verbatim and never retried.
type ApplicationError struct {
	AgentID string
	Err     error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("agent %q: %v", e.AgentID, e.Err)
}

// Unwrap exposes the underlying agent error.
func (e *ApplicationError) Unwrap() error { return e.Err }

// IsRetryable reports whether err may be retried under the bus retry policy:
// only unavailable receivers and timeouts qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrAgentUnavailable) || errors.Is(err, ErrTimeout)
}
