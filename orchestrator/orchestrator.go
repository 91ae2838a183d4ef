package orchestrator

import (
	"context"
	"fmt"

	"github.com/hupe1980/agenthub/bus"
	"github.com/hupe1980/agenthub/logging"
)

// Options configures an Orchestrator.
type Options struct {
	// Planner decomposes requests; defaults to SingleTaskPlanner.
	Planner Planner

	// Selector config (weights, fallback agent).
	Selector SelectorConfig

	// Store retains finished workflows; defaults to an in-memory store.
	Store WorkflowStore

	// SenderID identifies the orchestrator on bus messages.
	SenderID string

	// Logger defaults to NoOp if nil.
	Logger logging.Logger
}

// Orchestrator plans, dispatches and records workflows. It exclusively owns
// every Workflow it creates; callers observe workflows only through the
// store's cloned reads.
type Orchestrator struct {
	bus      *bus.Bus
	planner  Planner
	selector *Selector
	store    WorkflowStore
	senderID string
	logger   logging.Logger
}

// New creates an Orchestrator bound to the given bus.
func New(b *bus.Bus, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Planner:  SingleTaskPlanner{},
		Selector: DefaultSelectorConfig,
		SenderID: "orchestrator",
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Store == nil {
		opts.Store = NewInMemoryStore(DefaultStoreCapacity)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Orchestrator{
		bus:      b,
		planner:  opts.Planner,
		selector: NewSelector(opts.Selector),
		store:    opts.Store,
		senderID: opts.SenderID,
		logger:   opts.Logger,
	}
}

// WithPlanner overrides the default single-task planner.
func WithPlanner(p Planner) func(o *Options) {
	return func(o *Options) { o.Planner = p }
}

// WithSelectorConfig overrides the agent selection weights and fallback.
func WithSelectorConfig(cfg SelectorConfig) func(o *Options) {
	return func(o *Options) { o.Selector = cfg }
}

// WithStore overrides the workflow history store.
func WithStore(s WorkflowStore) func(o *Options) {
	return func(o *Options) { o.Store = s }
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Plan decomposes the request into a workflow and validates its graph.
// A subtask capability with no registered agent at planning time is logged
// as a soft warning only; agents may register before execution reaches it.
func (o *Orchestrator) Plan(ctx context.Context, request string, reqCtx map[string]any) (*Workflow, error) {
	w, err := o.planner.Plan(ctx, request, reqCtx)
	if err != nil {
		return nil, fmt.Errorf("plan request: %w", err)
	}
	if err := validateGraph(w); err != nil {
		return nil, err
	}

	o.warnUnmetCapabilities(w)
	o.logger.Info("workflow planned", "workflow_id", w.ID, "subtasks", len(w.Subtasks))
	return w, nil
}

// warnUnmetCapabilities logs capabilities with no current candidate agent.
func (o *Orchestrator) warnUnmetCapabilities(w *Workflow) {
	records := o.bus.Agents()
	for _, st := range w.Subtasks {
		found := false
		for _, rec := range records {
			if rec.Capabilities.Has(st.RequiredCapability) {
				found = true
				break
			}
		}
		if !found {
			o.logger.Warn("no agent registered for capability yet", "workflow_id", w.ID, "subtask_id", st.ID, "capability", st.RequiredCapability)
		}
	}
}

// Run plans and executes the request, retains the finished workflow in the
// store, and returns it. Subtask errors are contained in the workflow; Run
// only fails on planning errors or a store failure.
func (o *Orchestrator) Run(ctx context.Context, request string, reqCtx map[string]any) (*Workflow, error) {
	w, err := o.Plan(ctx, request, reqCtx)
	if err != nil {
		return nil, err
	}

	o.Execute(ctx, w)

	if err := o.store.Save(w); err != nil {
		return nil, fmt.Errorf("save workflow %s: %w", w.ID, err)
	}
	return w, nil
}

// GetWorkflow returns the full retained workflow, including history.
func (o *Orchestrator) GetWorkflow(id string) (*Workflow, error) {
	return o.store.Get(id)
}

// ListWorkflows returns summaries, optionally filtered by status. An empty
// filter lists everything.
func (o *Orchestrator) ListWorkflows(statusFilter WorkflowStatus) ([]WorkflowSummary, error) {
	return o.store.List(statusFilter)
}
