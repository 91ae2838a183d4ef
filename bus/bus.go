package bus

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/logging"
)

// DefaultTimeout bounds a single Send when neither the message nor the
// per-agent configuration overrides it.
const DefaultTimeout = 30 * time.Second

// Options configures a Bus instance.
type Options struct {
	// DefaultTimeout bounds each Send call unless overridden per message or
	// per agent type.
	DefaultTimeout time.Duration

	// AgentTimeouts overrides the default timeout per agent type (keyed by
	// agent id, e.g. "code" agents may get a longer deadline).
	AgentTimeouts map[string]time.Duration

	// RetryPolicy governs SendAndAwait.
	RetryPolicy RetryPolicy

	// Logger defaults to NoOp if nil.
	Logger logging.Logger
}

// Bus routes messages between registered agents. It exclusively owns the
// agent registry; all registry mutation happens under a single mutex so
// readers never observe a record mid-update.
type Bus struct {
	mu     sync.RWMutex
	agents map[string]*registration

	defaultTimeout time.Duration
	agentTimeouts  map[string]time.Duration
	retryPolicy    RetryPolicy
	logger         logging.Logger
}

// New creates a Bus with optional overrides.
func New(optFns ...func(o *Options)) *Bus {
	opts := Options{
		DefaultTimeout: DefaultTimeout,
		RetryPolicy:    DefaultRetryPolicy,
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Bus{
		agents:         make(map[string]*registration),
		defaultTimeout: opts.DefaultTimeout,
		agentTimeouts:  opts.AgentTimeouts,
		retryPolicy:    opts.RetryPolicy,
		logger:         opts.Logger,
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithDefaultTimeout overrides the per-call default timeout.
func WithDefaultTimeout(d time.Duration) func(o *Options) {
	return func(o *Options) { o.DefaultTimeout = d }
}

// WithAgentTimeouts sets per-agent-type timeout overrides.
func WithAgentTimeouts(timeouts map[string]time.Duration) func(o *Options) {
	return func(o *Options) { o.AgentTimeouts = timeouts }
}

// WithRetryPolicy overrides the SendAndAwait retry policy.
func WithRetryPolicy(p RetryPolicy) func(o *Options) {
	return func(o *Options) { o.RetryPolicy = p }
}

// Register adds an agent to the registry. Re-registering an existing id
// replaces the record; this is logged, not an error.
func (b *Bus) Register(a core.Agent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.agents[a.ID()]; exists {
		b.logger.Warn("replacing registered agent", "agent_id", a.ID())
	}
	b.agents[a.ID()] = newRegistration(a)
	b.logger.Info("agent registered", "agent_id", a.ID(), "capabilities", a.Capabilities().Sorted())
}

// Deregister removes an agent from the registry. Unknown ids are a no-op.
func (b *Bus) Deregister(agentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.agents[agentID]; !exists {
		return
	}
	delete(b.agents, agentID)
	b.logger.Info("agent deregistered", "agent_id", agentID)
}

// IsRegistered reports whether the agent id is currently registered.
func (b *Bus) IsRegistered(agentID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.agents[agentID]
	return ok
}

// Lookup returns a snapshot record for the agent id.
func (b *Bus) Lookup(agentID string) (AgentRecord, bool) {
	b.mu.RLock()
	reg, ok := b.agents[agentID]
	b.mu.RUnlock()
	if !ok {
		return AgentRecord{}, false
	}
	return reg.snapshot(), true
}

// Agents returns snapshot records for all registered agents ordered by id.
func (b *Bus) Agents() []AgentRecord {
	b.mu.RLock()
	regs := make([]*registration, 0, len(b.agents))
	for _, reg := range b.agents {
		regs = append(regs, reg)
	}
	b.mu.RUnlock()

	records := make([]AgentRecord, 0, len(regs))
	for _, reg := range regs {
		records = append(records, reg.snapshot())
	}
	sort.Slice(records, func(i, j int) bool { return records[i].AgentID < records[j].AgentID })
	return records
}

func (b *Bus) lookupRegistration(agentID string) (*registration, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	reg, ok := b.agents[agentID]
	return reg, ok
}

// timeoutFor resolves the effective deadline for one message: the message's
// own override wins, then the per-agent-type configuration, then the default.
func (b *Bus) timeoutFor(msg core.Message) time.Duration {
	if msg.Timeout > 0 {
		return msg.Timeout
	}
	if d, ok := b.agentTimeouts[msg.ReceiverID]; ok && d > 0 {
		return d
	}
	return b.defaultTimeout
}

// Send routes a request to its receiver and returns a Future for the
// correlated response. An unknown receiver fails the future immediately with
// an unavailable error; it never waits for the timeout. The receiver's
// Process runs on its own goroutine, serialized with any other message to
// the same agent. Expiry of the deadline fails the future but does not
// cancel the in-flight Process; its late result is discarded.
func (b *Bus) Send(ctx context.Context, msg core.Message) *Future {
	reg, ok := b.lookupRegistration(msg.ReceiverID)
	if !ok {
		b.logger.Warn("send to unknown agent", "agent_id", msg.ReceiverID, "message_id", msg.ID)
		return resolvedFuture(msg.ID, msg.ReceiverID, &core.AgentUnavailableError{AgentID: msg.ReceiverID})
	}

	fut := newFuture(msg.ID, msg.ReceiverID)
	timeout := b.timeoutFor(msg)

	timer := time.AfterFunc(timeout, func() {
		if fut.fail(&core.TimeoutError{MessageID: msg.ID, AgentID: msg.ReceiverID}) {
			b.logger.Warn("request timed out", "agent_id", msg.ReceiverID, "message_id", msg.ID, "timeout", timeout)
		}
	})

	go b.deliver(ctx, reg, msg, fut, timer)

	return fut
}

// deliver runs the receiver's Process under the per-agent semaphore and
// resolves the future with the outcome.
func (b *Bus) deliver(ctx context.Context, reg *registration, msg core.Message, fut *Future, timer *time.Timer) {
	// Queue behind any in-flight message for this agent. If the future
	// already failed (timeout) while queued, the work is abandoned before it
	// starts.
	select {
	case reg.sem <- struct{}{}:
	case <-fut.Done():
		return
	}
	defer func() { <-reg.sem }()

	select {
	case <-fut.Done():
		return
	default:
	}

	b.beginProcessing(reg)

	// The deadline stops the waiter, not the worker: Process continues on a
	// detached context and its late result is discarded below.
	resp, err := reg.agent.Process(context.WithoutCancel(ctx), msg.Content, msg.Context)
	timer.Stop()

	b.endProcessing(reg, err)
	reg.recordOutcome(err == nil && resp.Err == nil)

	if err == nil && resp.Err != nil {
		err = resp.Err
	}

	if err != nil {
		appErr := &core.ApplicationError{AgentID: reg.agent.ID(), Err: err}
		if !fut.fail(appErr) {
			b.logger.Debug("late error discarded", "agent_id", reg.agent.ID(), "message_id", msg.ID)
		}
		return
	}

	if !fut.resolve(msg.ID, resp) {
		b.logger.Debug("late response discarded", "agent_id", reg.agent.ID(), "message_id", msg.ID)
	}
}

// beginProcessing moves the agent into the processing state, recovering a
// lingering error state first. Transition failures are logged; the semaphore
// remains the hard serialization guard.
func (b *Bus) beginProcessing(reg *registration) {
	a := reg.agent
	if a.State() == core.StateError {
		if err := a.SetState(core.StateIdle); err != nil {
			b.logger.Warn("agent recovery failed", "agent_id", a.ID(), "error", err)
		}
	}
	if err := a.SetState(core.StateProcessing); err != nil {
		b.logger.Warn("agent state transition failed", "agent_id", a.ID(), "error", err)
	}
}

// endProcessing returns the agent to idle, or parks it in error state when
// processing failed.
func (b *Bus) endProcessing(reg *registration, procErr error) {
	a := reg.agent
	next := core.StateIdle
	if procErr != nil {
		next = core.StateError
	}
	if err := a.SetState(next); err != nil {
		b.logger.Warn("agent state transition failed", "agent_id", a.ID(), "error", err)
	}
}

// Broadcast delivers a notification to every registered agent except the
// sender. Delivery is best effort: responses are not awaited and failures
// are logged, never raised.
func (b *Bus) Broadcast(ctx context.Context, msg core.Message) {
	b.mu.RLock()
	regs := make([]*registration, 0, len(b.agents))
	for id, reg := range b.agents {
		if id == msg.SenderID {
			continue
		}
		regs = append(regs, reg)
	}
	b.mu.RUnlock()

	if len(regs) == 0 {
		b.logger.Debug("broadcast with no receivers", "sender_id", msg.SenderID)
		return
	}

	for _, reg := range regs {
		go func(reg *registration) {
			reg.sem <- struct{}{}
			defer func() { <-reg.sem }()

			b.beginProcessing(reg)
			_, err := reg.agent.Process(context.WithoutCancel(ctx), msg.Content, msg.Context)
			b.endProcessing(reg, err)

			if err != nil {
				b.logger.Warn("broadcast delivery failed", "agent_id", reg.agent.ID(), "error", err)
			}
		}(reg)
	}
}
