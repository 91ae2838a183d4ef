package agent

import (
	"context"

	"github.com/hupe1980/agenthub/core"
)

// EchoAgent returns every query verbatim. Useful for wiring checks, demos
// and as a deterministic target in tests.
type EchoAgent struct {
	BaseAgent
}

// NewEchoAgent constructs an EchoAgent with the given bus id.
func NewEchoAgent(id string) *EchoAgent {
	return &EchoAgent{
		BaseAgent: NewBaseAgent(id, "Echo", "Repeats the incoming query verbatim.", "echo", "general"),
	}
}

// Process implements core.Agent.
func (a *EchoAgent) Process(_ context.Context, query string, _ map[string]any) (core.Response, error) {
	return core.Response{
		Content:  query,
		Metadata: map[string]any{"agent": a.ID()},
	}, nil
}
