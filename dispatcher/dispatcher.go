package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/agenthub/bus"
	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/logging"
	"github.com/hupe1980/agenthub/orchestrator"
)

// DefaultConfidenceThreshold is the minimum classifier confidence for a
// single-agent route; anything below it is escalated to the orchestrator.
const DefaultConfidenceThreshold = 0.5

// Responder produces a direct answer without involving any agent.
type Responder func(ctx context.Context, query string, queryCtx map[string]any) (core.Response, error)

// Options configure a Dispatcher.
type Options struct {
	// Classifier decides the route. Defaults to a KeywordClassifier with no
	// rules, which detects multi-step phrasing and answers the rest directly.
	Classifier Classifier

	// ConfidenceThreshold below which a classification is escalated to the
	// orchestrator.
	ConfidenceThreshold float64

	// DirectResponder handles the direct-answer route. The default returns a
	// canned acknowledgement; wire a model-backed responder for real use.
	DirectResponder Responder

	// SenderID is the bus identity of the dispatcher.
	SenderID string

	// Logger receives routing decisions.
	Logger logging.Logger
}

// WithClassifier overrides the default classifier.
func WithClassifier(c Classifier) func(o *Options) {
	return func(o *Options) { o.Classifier = c }
}

// WithConfidenceThreshold overrides the escalation threshold.
func WithConfidenceThreshold(threshold float64) func(o *Options) {
	return func(o *Options) { o.ConfidenceThreshold = threshold }
}

// WithDirectResponder overrides the direct-answer path.
func WithDirectResponder(r Responder) func(o *Options) {
	return func(o *Options) { o.DirectResponder = r }
}

// WithLogger overrides the default logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// Dispatcher routes user queries to the orchestrator, a single agent, or a
// direct responder based on classification.
type Dispatcher struct {
	bus        *bus.Bus
	orch       *orchestrator.Orchestrator
	classifier Classifier
	threshold  float64
	direct     Responder
	senderID   string
	logger     logging.Logger
}

// New constructs a Dispatcher over the given bus and orchestrator.
func New(b *bus.Bus, orch *orchestrator.Orchestrator, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		Classifier:          NewKeywordClassifier(nil),
		ConfidenceThreshold: DefaultConfidenceThreshold,
		SenderID:            "dispatcher",
		Logger:              logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.DirectResponder == nil {
		opts.DirectResponder = cannedResponder
	}

	return &Dispatcher{
		bus:        b,
		orch:       orch,
		classifier: opts.Classifier,
		threshold:  opts.ConfidenceThreshold,
		direct:     opts.DirectResponder,
		senderID:   opts.SenderID,
		logger:     opts.Logger,
	}
}

// Process classifies the query and routes it. Low-confidence or multi-step
// queries go to the orchestrator; a confident single-agent classification is
// delegated over the bus; everything else is answered directly. If the
// chosen agent is unavailable the query falls back to the direct path once
// before any error reaches the caller.
func (d *Dispatcher) Process(ctx context.Context, query string, queryCtx map[string]any) (core.Response, error) {
	c := d.classifier.Classify(query, queryCtx)
	d.logger.Debug("query classified",
		"category", string(c.Category),
		"target", c.TargetAgentID,
		"confidence", c.Confidence)

	if c.Category == CategoryWorkflow || c.Confidence < d.threshold {
		return d.orchestrate(ctx, query, queryCtx)
	}

	if c.Category == CategoryAgent && c.TargetAgentID != "" {
		msg := core.NewRequest(d.senderID, c.TargetAgentID, query).WithContext(queryCtx)
		resp, err := d.bus.SendAndAwait(ctx, msg)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, core.ErrAgentUnavailable) {
			d.logger.Warn("target agent unavailable, falling back to direct answer",
				"agent_id", c.TargetAgentID)
			return d.direct(ctx, query, queryCtx)
		}
		return core.Response{}, fmt.Errorf("delegate to %s: %w", c.TargetAgentID, err)
	}

	return d.direct(ctx, query, queryCtx)
}

func (d *Dispatcher) orchestrate(ctx context.Context, query string, queryCtx map[string]any) (core.Response, error) {
	w, err := d.orch.Run(ctx, query, queryCtx)
	if err != nil {
		return core.Response{}, fmt.Errorf("orchestrate: %w", err)
	}

	s := w.Summarize()
	return core.Response{
		Content: s.Text(),
		Metadata: map[string]any{
			"workflow_id":     w.ID,
			"workflow_status": string(w.Status),
		},
	}, nil
}

func cannedResponder(_ context.Context, query string, _ map[string]any) (core.Response, error) {
	return core.Response{
		Content:  fmt.Sprintf("I don't have a specialist for that yet, but here's what I heard: %s", query),
		Metadata: map[string]any{"route": "direct"},
	}, nil
}
