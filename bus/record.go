package bus

import (
	"sync"
	"time"

	"github.com/hupe1980/agenthub/core"
)

// successRateAlpha is the smoothing factor for the per-agent success EWMA.
const successRateAlpha = 0.2

// AgentRecord is the registry's view of a registered agent, consumed by the
// orchestrator's selector. It is a point-in-time snapshot; the live record
// stays under the bus's single-writer discipline.
type AgentRecord struct {
	AgentID       string
	Capabilities  core.CapabilitySet
	State         core.AgentState
	SuccessRate   float64
	LastFailureAt time.Time
}

// registration is the mutable per-agent entry owned by the bus. The sem
// channel (capacity 1) serializes message handling per agent instance so its
// state machine is never raced; distinct agents proceed concurrently.
type registration struct {
	agent core.Agent
	sem   chan struct{}

	mu            sync.Mutex
	successRate   float64
	lastFailureAt time.Time
}

func newRegistration(a core.Agent) *registration {
	return &registration{
		agent:       a,
		sem:         make(chan struct{}, 1),
		successRate: 1.0,
	}
}

// snapshot copies the record for external readers.
func (r *registration) snapshot() AgentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return AgentRecord{
		AgentID:       r.agent.ID(),
		Capabilities:  r.agent.Capabilities().Clone(),
		State:         r.agent.State(),
		SuccessRate:   r.successRate,
		LastFailureAt: r.lastFailureAt,
	}
}

// recordOutcome folds one call result into the success EWMA and stamps the
// failure time on errors.
func (r *registration) recordOutcome(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outcome := 0.0
	if success {
		outcome = 1.0
	}
	r.successRate = (1-successRateAlpha)*r.successRate + successRateAlpha*outcome
	if !success {
		r.lastFailureAt = time.Now()
	}
}
