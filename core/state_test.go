package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	states := []AgentState{StateIdle, StateProcessing, StateError}

	allowed := map[[2]AgentState]bool{
		{StateIdle, StateProcessing}:  true,
		{StateProcessing, StateIdle}:  true,
		{StateProcessing, StateError}: true,
		{StateError, StateIdle}:       true,
	}

	// Every pair outside the allowed table must be rejected, including
	// self-transitions.
	for _, from := range states {
		for _, to := range states {
			got := ValidTransition(from, to)
			want := allowed[[2]AgentState{from, to}]
			assert.Equal(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestValidTransitionUnknownState(t *testing.T) {
	assert.False(t, ValidTransition(AgentState("bogus"), StateIdle))
	assert.False(t, ValidTransition(StateIdle, AgentState("bogus")))
}
