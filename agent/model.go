package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/model"
)

// ModelAgentOptions configure a ModelAgent.
type ModelAgentOptions struct {
	Name         string
	Description  string
	Instructions string
	Capabilities []string
}

// ModelAgent drives a language model. Dependency results handed over in the
// query context are folded into the prompt so downstream subtasks see the
// output of their upstream ones.
type ModelAgent struct {
	BaseAgent
	model        model.Model
	instructions string
}

// NewModelAgent constructs a ModelAgent with the given bus id and model.
func NewModelAgent(id string, m model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Name:         "Assistant",
		Description:  "General-purpose model-backed assistant.",
		Instructions: "You are a helpful assistant. Answer concisely.",
		Capabilities: []string{"general"},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelAgent{
		BaseAgent:    NewBaseAgent(id, opts.Name, opts.Description, opts.Capabilities...),
		model:        m,
		instructions: opts.Instructions,
	}
}

// NewCodeAgent is a ModelAgent preconfigured for code-related subtasks.
func NewCodeAgent(id string, m model.Model) *ModelAgent {
	return NewModelAgent(id, m, func(o *ModelAgentOptions) {
		o.Name = "Coder"
		o.Description = "Writes and explains code."
		o.Instructions = "You are an expert programmer. Provide working code with a short explanation."
		o.Capabilities = []string{"code", "general"}
	})
}

// Process implements core.Agent.
func (a *ModelAgent) Process(ctx context.Context, query string, queryCtx map[string]any) (core.Response, error) {
	resp, err := a.model.Generate(ctx, model.Request{
		Instructions: a.instructions,
		Prompt:       buildPrompt(query, queryCtx),
	})
	if err != nil {
		return core.Response{}, fmt.Errorf("model generate: %w", err)
	}

	return core.Response{
		Content: resp.Content,
		Metadata: map[string]any{
			"model":         a.model.Info().Name,
			"finish_reason": resp.FinishReason,
		},
	}, nil
}

// buildPrompt folds dependency results into the prompt, sorted by subtask id
// so the rendering is deterministic.
func buildPrompt(query string, queryCtx map[string]any) string {
	deps, _ := queryCtx["dependency_results"].(map[string]string)
	if len(deps) == 0 {
		return query
	}

	ids := make([]string, 0, len(deps))
	for id := range deps {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString("Results from earlier steps:\n")
	for _, id := range ids {
		fmt.Fprintf(&sb, "[%s] %s\n", id, deps[id])
	}
	sb.WriteString("\nTask: ")
	sb.WriteString(query)
	return sb.String()
}
