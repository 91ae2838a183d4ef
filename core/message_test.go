package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseCorrelation(t *testing.T) {
	req := NewRequest("dispatcher", "echo", "ping")
	require.NotEmpty(t, req.ID)
	assert.Equal(t, MessageTypeRequest, req.Type)

	resp := req.NewResponse("pong", map[string]any{"latency_ms": 3})

	assert.Equal(t, MessageTypeResponse, resp.Type)
	assert.Equal(t, req.ID, resp.CorrelationID)
	assert.Equal(t, req.ReceiverID, resp.SenderID)
	assert.Equal(t, req.SenderID, resp.ReceiverID)
	assert.NotEqual(t, req.ID, resp.ID)
}

func TestNewErrorResponse(t *testing.T) {
	req := NewRequest("a", "b", "do it")
	resp := req.NewErrorResponse("boom", nil)

	assert.Equal(t, MessageTypeError, resp.Type)
	assert.Equal(t, req.ID, resp.CorrelationID)
}

func TestNewNotificationHasNoReceiver(t *testing.T) {
	n := NewNotification("system", "shutting down")
	assert.Equal(t, MessageTypeNotification, n.Type)
	assert.Empty(t, n.ReceiverID)
}

func TestCapabilitySet(t *testing.T) {
	s := NewCapabilitySet("echo", "code")

	assert.True(t, s.Has("echo"))
	assert.False(t, s.Has("memory"))
	assert.True(t, s.ContainsAll(NewCapabilitySet("echo")))
	assert.False(t, s.ContainsAll(NewCapabilitySet("echo", "memory")))
	assert.True(t, s.Intersects(NewCapabilitySet("memory", "code")))
	assert.False(t, s.Intersects(NewCapabilitySet("memory")))
	assert.Equal(t, []string{"code", "echo"}, s.Sorted())

	c := s.Clone()
	c.Add("memory")
	assert.False(t, s.Has("memory"))
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		sentinel  error
		retryable bool
	}{
		{"unavailable", &AgentUnavailableError{AgentID: "x"}, ErrAgentUnavailable, true},
		{"timeout", &TimeoutError{MessageID: "m", AgentID: "x"}, ErrTimeout, true},
		{"transition", &InvalidTransitionError{AgentID: "x", From: StateIdle, To: StateError}, ErrInvalidTransition, false},
		{"plan", &InvalidPlanError{WorkflowID: "w", Cycle: []string{"a", "b", "a"}}, ErrInvalidPlan, false},
		{"no-agent", &NoAgentAvailableError{Capability: "code"}, ErrNoAgentAvailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestApplicationErrorNeverRetryable(t *testing.T) {
	inner := errors.New("division by zero")
	appErr := &ApplicationError{AgentID: "code", Err: inner}

	assert.False(t, IsRetryable(appErr))
	assert.True(t, errors.Is(appErr, inner))
}
