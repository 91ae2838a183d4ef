package orchestrator

import (
	"context"
	"fmt"

	"github.com/hupe1980/agenthub/core"
)

// Planner decomposes a user request into a workflow of subtasks with
// dependency edges. Implementations decide how to split the request (rule
// tables, model calls, fixed templates); the orchestrator only requires
// that the returned graph is acyclic, which it verifies before execution.
type Planner interface {
	Plan(ctx context.Context, request string, reqCtx map[string]any) (*Workflow, error)
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, request string, reqCtx map[string]any) (*Workflow, error)

// Plan implements Planner.
func (f PlannerFunc) Plan(ctx context.Context, request string, reqCtx map[string]any) (*Workflow, error) {
	return f(ctx, request, reqCtx)
}

// SubtaskSpec declares one subtask for NewWorkflow. DependsOn references
// other spec IDs; an edge A -> B exists when B's input requires A's output.
type SubtaskSpec struct {
	ID                 string
	Description        string
	RequiredCapability string
	DependsOn          []string
}

// NewWorkflow builds a workflow from subtask specs and validates the graph.
// Specs without an ID get one generated. A cyclic graph fails with
// InvalidPlanError before any execution begins.
func NewWorkflow(request string, specs []SubtaskSpec) (*Workflow, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("workflow needs at least one subtask")
	}

	w := newWorkflow(request)
	for _, spec := range specs {
		id := spec.ID
		if id == "" {
			id = core.NewID()
		}
		w.Subtasks = append(w.Subtasks, &Subtask{
			ID:                 id,
			Description:        spec.Description,
			RequiredCapability: spec.RequiredCapability,
			Dependencies:       append([]string(nil), spec.DependsOn...),
			Status:             SubtaskPending,
		})
	}

	if err := validateGraph(w); err != nil {
		return nil, err
	}
	return w, nil
}

// SingleTaskPlanner treats every request as indivisible, producing a
// one-node workflow with no edges. It is the default planner and the
// fallback behavior for requests that cannot be decomposed.
type SingleTaskPlanner struct {
	// Capability tags the single subtask; defaults to "general".
	Capability string
}

// Plan implements Planner.
func (p SingleTaskPlanner) Plan(_ context.Context, request string, _ map[string]any) (*Workflow, error) {
	capability := p.Capability
	if capability == "" {
		capability = "general"
	}
	return NewWorkflow(request, []SubtaskSpec{{
		ID:                 "task-1",
		Description:        request,
		RequiredCapability: capability,
	}})
}
