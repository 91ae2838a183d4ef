package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/core"
)

func TestBaseAgentIdentity(t *testing.T) {
	b := NewBaseAgent("worker-1", "Worker", "Does work.", "general", "code")

	assert.Equal(t, "worker-1", b.ID())
	assert.Equal(t, "Worker", b.Name())
	assert.Equal(t, "Does work.", b.Description())
	assert.True(t, b.Capabilities().Has("code"))
	assert.Equal(t, core.StateIdle, b.State())
}

func TestBaseAgentStateMachine(t *testing.T) {
	b := NewBaseAgent("worker-1", "Worker", "Does work.")

	require.NoError(t, b.SetState(core.StateProcessing))
	assert.Equal(t, core.StateProcessing, b.State())

	// idle is unreachable while processing has not finished via error or
	// completion to idle; processing -> processing is rejected.
	err := b.SetState(core.StateProcessing)
	require.Error(t, err)
	var transErr *core.InvalidTransitionError
	require.True(t, errors.As(err, &transErr))
	assert.Equal(t, "worker-1", transErr.AgentID)
	assert.True(t, errors.Is(err, core.ErrInvalidTransition))

	require.NoError(t, b.SetState(core.StateError))
	require.NoError(t, b.SetState(core.StateIdle))
	assert.Equal(t, core.StateIdle, b.State())
}
