package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/bus"
	"github.com/hupe1980/agenthub/core"
)

// testAgent is a minimal core.Agent for executor tests.
type testAgent struct {
	id           string
	capabilities core.CapabilitySet
	processFn    func(ctx context.Context, query string, queryCtx map[string]any) (core.Response, error)

	mu    sync.Mutex
	state core.AgentState
}

func newTestAgent(id string, caps ...string) *testAgent {
	return &testAgent{
		id:           id,
		capabilities: core.NewCapabilitySet(caps...),
		state:        core.StateIdle,
		processFn: func(_ context.Context, query string, _ map[string]any) (core.Response, error) {
			return core.Response{Content: "done: " + query}, nil
		},
	}
}

func (a *testAgent) ID() string                       { return a.id }
func (a *testAgent) Name() string                     { return a.id }
func (a *testAgent) Description() string              { return "test agent " + a.id }
func (a *testAgent) Capabilities() core.CapabilitySet { return a.capabilities }

func (a *testAgent) Process(ctx context.Context, query string, queryCtx map[string]any) (core.Response, error) {
	return a.processFn(ctx, query, queryCtx)
}

func (a *testAgent) State() core.AgentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *testAgent) SetState(next core.AgentState) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !core.ValidTransition(a.state, next) {
		return &core.InvalidTransitionError{AgentID: a.id, From: a.state, To: next}
	}
	a.state = next
	return nil
}

func specPlanner(specs []SubtaskSpec) Planner {
	return PlannerFunc(func(_ context.Context, request string, _ map[string]any) (*Workflow, error) {
		return NewWorkflow(request, specs)
	})
}

func TestExecuteCompletedWorkflow(t *testing.T) {
	b := bus.New(bus.WithDefaultTimeout(time.Second))
	b.Register(newTestAgent("worker", "general"))

	o := New(b, WithPlanner(specPlanner([]SubtaskSpec{
		{ID: "a", Description: "step a", RequiredCapability: "general"},
		{ID: "b", Description: "step b", RequiredCapability: "general", DependsOn: []string{"a"}},
	})))

	w, err := o.Run(context.Background(), "two steps", nil)
	require.NoError(t, err)

	assert.Equal(t, WorkflowCompleted, w.Status)
	assert.Equal(t, SubtaskCompleted, w.Subtask("a").Status)
	assert.Equal(t, "done: step a", w.Subtask("a").Result)
	assert.Equal(t, "worker", w.Subtask("a").AssignedAgentID)
	require.NotNil(t, w.CompletedAt)

	// History in dispatch order: a dispatched/completed before b.
	events := make([]string, 0, len(w.History))
	for _, h := range w.History {
		events = append(events, h.SubtaskID+":"+h.Event)
	}
	assert.Equal(t, []string{"a:dispatched", "a:completed", "b:dispatched", "b:completed"}, events)
}

func TestExecuteFailureSkipsDependentsTransitively(t *testing.T) {
	failing := newTestAgent("worker", "general")
	failing.processFn = func(context.Context, string, map[string]any) (core.Response, error) {
		return core.Response{}, errors.New("step blew up")
	}

	b := bus.New(bus.WithDefaultTimeout(time.Second))
	b.Register(failing)

	// B and C both depend on A; A's failure must skip both.
	o := New(b, WithPlanner(specPlanner([]SubtaskSpec{
		{ID: "a", Description: "root", RequiredCapability: "general"},
		{ID: "b", Description: "left", RequiredCapability: "general", DependsOn: []string{"a"}},
		{ID: "c", Description: "right", RequiredCapability: "general", DependsOn: []string{"a"}},
	})))

	w, err := o.Run(context.Background(), "doomed", nil)
	require.NoError(t, err, "subtask errors are contained, not propagated")

	assert.Equal(t, WorkflowFailed, w.Status)
	assert.Equal(t, SubtaskFailed, w.Subtask("a").Status)
	assert.Equal(t, SubtaskSkipped, w.Subtask("b").Status)
	assert.Equal(t, SubtaskSkipped, w.Subtask("c").Status)

	summary := w.Summarize()
	assert.Empty(t, summary.Results)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "a", summary.Failed[0].SubtaskID)
	assert.Len(t, summary.Skipped, 2)
}

func TestExecutePartialKeepsIndependentBranch(t *testing.T) {
	worker := newTestAgent("worker", "general")
	worker.processFn = func(_ context.Context, query string, _ map[string]any) (core.Response, error) {
		if query == "bad" {
			return core.Response{}, errors.New("no luck")
		}
		return core.Response{Content: "ok: " + query}, nil
	}

	b := bus.New(bus.WithDefaultTimeout(time.Second))
	b.Register(worker)

	o := New(b, WithPlanner(specPlanner([]SubtaskSpec{
		{ID: "bad", Description: "bad", RequiredCapability: "general"},
		{ID: "child", Description: "child", RequiredCapability: "general", DependsOn: []string{"bad"}},
		{ID: "solo", Description: "solo", RequiredCapability: "general"},
	})))

	w, err := o.Run(context.Background(), "mixed", nil)
	require.NoError(t, err)

	assert.Equal(t, WorkflowPartial, w.Status)
	assert.Equal(t, SubtaskCompleted, w.Subtask("solo").Status)
	assert.Equal(t, SubtaskSkipped, w.Subtask("child").Status)

	summary := w.Summarize()
	assert.Equal(t, []string{"ok: solo"}, summary.Results)
	assert.NotEmpty(t, summary.Text())
}

func TestExecuteDependencyResultsFlowDownstream(t *testing.T) {
	var gotDeps map[string]string
	worker := newTestAgent("worker", "general")
	worker.processFn = func(_ context.Context, query string, qctx map[string]any) (core.Response, error) {
		if deps, ok := qctx["dependency_results"].(map[string]string); ok {
			gotDeps = deps
		}
		return core.Response{Content: "out: " + query}, nil
	}

	b := bus.New(bus.WithDefaultTimeout(time.Second))
	b.Register(worker)

	o := New(b, WithPlanner(specPlanner([]SubtaskSpec{
		{ID: "up", Description: "up", RequiredCapability: "general"},
		{ID: "down", Description: "down", RequiredCapability: "general", DependsOn: []string{"up"}},
	})))

	_, err := o.Run(context.Background(), "pipeline", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"up": "out: up"}, gotDeps)
}

func TestExecuteNoAgentForCapability(t *testing.T) {
	b := bus.New(bus.WithDefaultTimeout(time.Second))
	b.Register(newTestAgent("worker", "general"))

	o := New(b, WithPlanner(specPlanner([]SubtaskSpec{
		{ID: "x", Description: "special", RequiredCapability: "quantum"},
	})))

	w, err := o.Run(context.Background(), "impossible", nil)
	require.NoError(t, err)

	assert.Equal(t, WorkflowFailed, w.Status)
	assert.Equal(t, SubtaskFailed, w.Subtask("x").Status)
	assert.Contains(t, w.Subtask("x").Error, "no agent available")
}

func TestExecuteCancelledContextSkipsPendingWork(t *testing.T) {
	b := bus.New(bus.WithDefaultTimeout(time.Second))
	b.Register(newTestAgent("worker", "general"))

	o := New(b, WithPlanner(specPlanner([]SubtaskSpec{
		{ID: "a", Description: "a", RequiredCapability: "general"},
	})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := o.Run(ctx, "too late", nil)
	require.NoError(t, err)

	assert.Equal(t, WorkflowFailed, w.Status)
	assert.Equal(t, SubtaskSkipped, w.Subtask("a").Status)
	assert.Contains(t, w.Subtask("a").Error, "cancelled")
}

func TestRunRetainsWorkflowAndGetIsIdempotent(t *testing.T) {
	b := bus.New(bus.WithDefaultTimeout(time.Second))
	b.Register(newTestAgent("worker", "general"))

	o := New(b)

	w, err := o.Run(context.Background(), "hello", nil)
	require.NoError(t, err)

	first, err := o.GetWorkflow(w.ID)
	require.NoError(t, err)
	second, err := o.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	summaries, err := o.ListWorkflows(WorkflowCompleted)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, w.ID, summaries[0].ID)

	none, err := o.ListWorkflows(WorkflowFailed)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPlanWarnsButDoesNotFailOnUnmetCapability(t *testing.T) {
	b := bus.New()

	o := New(b, WithPlanner(specPlanner([]SubtaskSpec{
		{ID: "x", Description: "later", RequiredCapability: "late-binding"},
	})))

	w, err := o.Plan(context.Background(), "agents may register later", nil)
	require.NoError(t, err)
	assert.Len(t, w.Subtasks, 1)
}

func TestSingleTaskPlannerProducesOneNode(t *testing.T) {
	p := SingleTaskPlanner{}
	w, err := p.Plan(context.Background(), "indivisible", nil)
	require.NoError(t, err)

	require.Len(t, w.Subtasks, 1)
	assert.Empty(t, w.Subtasks[0].Dependencies)
	assert.Equal(t, "general", w.Subtasks[0].RequiredCapability)
}
