// Package agenthub provides a high-level façade over the communication bus,
// orchestrator and dispatcher, enabling rapid construction of multi-agent
// assistants. Most applications interact with this package by:
//  1. Creating an AgentHub via New() (optionally overriding defaults)
//  2. Registering one or more agents (echo, system, memory, model, custom)
//  3. Asking queries (Ask) or running explicit workflows (RunWorkflow)
//
// The façade delegates routing to dispatcher.Dispatcher and multi-step
// execution to orchestrator.Orchestrator while keeping setup ergonomics
// concise. All defaults are safe for local development and testing;
// production deployments typically supply a sqlite workflow store and a
// structured logger.
package agenthub

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/agenthub/bus"
	"github.com/hupe1980/agenthub/config"
	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/dispatcher"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/orchestrator"
)

// Options configures the AgentHub instance.
type Options struct {
	// DefaultTimeout bounds each request attempt on the bus.
	DefaultTimeout time.Duration

	// AgentTimeouts overrides the default timeout per receiver.
	AgentTimeouts map[string]time.Duration

	// RetryPolicy governs request retries on the bus.
	RetryPolicy bus.RetryPolicy

	// SelectorConfig tunes how the orchestrator scores candidate agents.
	SelectorConfig orchestrator.SelectorConfig

	// Planner decomposes requests into workflows. Defaults to the
	// single-task planner.
	Planner orchestrator.Planner

	// Store retains finished workflows. Defaults to a bounded in-memory
	// store.
	Store orchestrator.WorkflowStore

	// ClassifierRules configure the keyword classifier. Ignored when
	// Classifier is set.
	ClassifierRules []dispatcher.Rule

	// Classifier overrides the keyword classifier entirely.
	Classifier dispatcher.Classifier

	// ConfidenceThreshold below which queries are escalated to the
	// orchestrator.
	ConfidenceThreshold float64

	// DirectResponder handles queries no agent should see.
	DirectResponder dispatcher.Responder

	// Logger (defaults to a text slog logger at info level)
	Logger logging.Logger
}

// AgentHub is the high-level façade aggregating bus, orchestrator and dispatcher.
type AgentHub struct {
	opts Options
	bus  *bus.Bus
	orch *orchestrator.Orchestrator
	disp *dispatcher.Dispatcher
}

// New creates a new AgentHub instance with optional overrides. Any unset
// collaborator is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *AgentHub {
	opts := Options{
		DefaultTimeout:      bus.DefaultTimeout,
		RetryPolicy:         bus.DefaultRetryPolicy,
		SelectorConfig:      orchestrator.DefaultSelectorConfig,
		ConfidenceThreshold: dispatcher.DefaultConfidenceThreshold,
		Logger:              logging.NewDefaultSlogLogger(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	b := bus.New(func(o *bus.Options) {
		o.Logger = opts.Logger
		o.DefaultTimeout = opts.DefaultTimeout
		o.AgentTimeouts = opts.AgentTimeouts
		o.RetryPolicy = opts.RetryPolicy
	})

	orch := orchestrator.New(b, func(o *orchestrator.Options) {
		o.Logger = opts.Logger
		o.Selector = opts.SelectorConfig
		if opts.Planner != nil {
			o.Planner = opts.Planner
		}
		if opts.Store != nil {
			o.Store = opts.Store
		}
	})

	classifier := opts.Classifier
	if classifier == nil {
		classifier = dispatcher.NewKeywordClassifier(opts.ClassifierRules)
	}

	disp := dispatcher.New(b, orch,
		dispatcher.WithLogger(opts.Logger),
		dispatcher.WithClassifier(classifier),
		dispatcher.WithConfidenceThreshold(opts.ConfidenceThreshold),
		func(o *dispatcher.Options) {
			if opts.DirectResponder != nil {
				o.DirectResponder = opts.DirectResponder
			}
		})

	return &AgentHub{opts: opts, bus: b, orch: orch, disp: disp}
}

// FromConfig builds an AgentHub from a loaded configuration. The sqlite
// workflow store is opened here when configured; call Close on the returned
// hub to release it.
func FromConfig(cfg *config.Config, optFns ...func(o *Options)) (*AgentHub, error) {
	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, cfg.Log.AddSource)

	var store orchestrator.WorkflowStore
	switch cfg.Store.Backend {
	case "sqlite":
		s, err := orchestrator.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("opening workflow store: %w", err)
		}
		store = s
	default:
		store = orchestrator.NewInMemoryStore(cfg.Store.Capacity)
	}

	fns := append([]func(o *Options){func(o *Options) {
		o.Logger = logger
		o.DefaultTimeout = cfg.Bus.DefaultTimeout
		o.AgentTimeouts = cfg.Bus.AgentTimeouts
		o.RetryPolicy = bus.RetryPolicy{
			Attempts:          cfg.Bus.RetryAttempts,
			BackoffMultiplier: cfg.Bus.RetryBackoffMultiplier,
		}
		o.SelectorConfig = orchestrator.SelectorConfig{
			IdleWeight:      cfg.Selector.IdleWeight,
			SuccessWeight:   cfg.Selector.SuccessWeight,
			FailurePenalty:  cfg.Selector.FailurePenalty,
			FailureWindow:   cfg.Selector.FailureWindow,
			FallbackAgentID: cfg.Selector.FallbackAgentID,
		}
		o.ConfidenceThreshold = cfg.Dispatcher.ConfidenceThreshold
		o.Store = store
	}}, optFns...)

	return New(fns...), nil
}

// Close releases resources held by the workflow store, when it holds any.
// A hub over the in-memory store closes to a no-op.
func (h *AgentHub) Close() error {
	if c, ok := h.opts.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// RegisterAgent adds an agent to the bus registry.
func (h *AgentHub) RegisterAgent(a core.Agent) { h.bus.Register(a) }

// DeregisterAgent removes an agent from the bus registry.
func (h *AgentHub) DeregisterAgent(agentID string) { h.bus.Deregister(agentID) }

// Bus exposes the underlying communication bus.
func (h *AgentHub) Bus() *bus.Bus { return h.bus }

// Orchestrator exposes the underlying orchestrator.
func (h *AgentHub) Orchestrator() *orchestrator.Orchestrator { return h.orch }

// Ask routes a user query through the dispatcher and returns the answer.
func (h *AgentHub) Ask(ctx context.Context, query string, queryCtx map[string]any) (core.Response, error) {
	return h.disp.Process(ctx, query, queryCtx)
}

// RunWorkflow plans and executes a multi-step workflow, bypassing
// classification.
func (h *AgentHub) RunWorkflow(ctx context.Context, request string, reqCtx map[string]any) (*orchestrator.Workflow, error) {
	return h.orch.Run(ctx, request, reqCtx)
}

// GetWorkflow returns a finished workflow by id.
func (h *AgentHub) GetWorkflow(id string) (*orchestrator.Workflow, error) {
	return h.orch.GetWorkflow(id)
}

// ListWorkflows returns summaries of retained workflows, optionally filtered
// by status.
func (h *AgentHub) ListWorkflows(statusFilter orchestrator.WorkflowStatus) ([]orchestrator.WorkflowSummary, error) {
	return h.orch.ListWorkflows(statusFilter)
}
