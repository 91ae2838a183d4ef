package orchestrator

import (
	"sort"
	"time"

	"github.com/hupe1980/agenthub/bus"
	"github.com/hupe1980/agenthub/core"
)

// SelectorConfig tunes the agent scoring weights and fallback.
type SelectorConfig struct {
	// IdleWeight scores an agent currently in the idle state.
	IdleWeight float64
	// SuccessWeight scales the agent's success-rate EWMA.
	SuccessWeight float64
	// FailurePenalty is subtracted in full for a failure just now, decaying
	// linearly to zero over FailureWindow.
	FailurePenalty float64
	// FailureWindow bounds how long past failures count against an agent.
	FailureWindow time.Duration
	// FallbackAgentID names a last-resort agent used when no capability
	// match exists. Empty disables the fallback.
	FallbackAgentID string
}

// DefaultSelectorConfig weights idleness and track record equally and
// remembers failures for five minutes.
var DefaultSelectorConfig = SelectorConfig{
	IdleWeight:     1.0,
	SuccessWeight:  1.0,
	FailurePenalty: 0.5,
	FailureWindow:  5 * time.Minute,
}

// Selector picks the best agent for a subtask from registry snapshots.
type Selector struct {
	cfg SelectorConfig
	now func() time.Time
}

// NewSelector builds a selector; zero-valued weights fall back to defaults.
func NewSelector(cfg SelectorConfig) *Selector {
	if cfg.IdleWeight == 0 && cfg.SuccessWeight == 0 && cfg.FailurePenalty == 0 {
		fallback := cfg.FallbackAgentID
		cfg = DefaultSelectorConfig
		cfg.FallbackAgentID = fallback
	}
	if cfg.FailureWindow <= 0 {
		cfg.FailureWindow = DefaultSelectorConfig.FailureWindow
	}
	return &Selector{cfg: cfg, now: time.Now}
}

// Select returns the agent record to dispatch the subtask to.
//
// The candidate pool is built in widening stages:
//  1. idle agents advertising the required capability
//  2. any agent advertising the required capability
//  3. the configured fallback agent, if registered
//
// Within a pool, agents are ranked by a weighted composite of idleness,
// success rate and recency-of-failure penalty; ties break on the
// lexicographically smallest agent id so selection is deterministic.
func (s *Selector) Select(records []bus.AgentRecord, subtask *Subtask) (bus.AgentRecord, error) {
	capability := subtask.RequiredCapability

	exact := make([]bus.AgentRecord, 0, len(records))
	for _, rec := range records {
		if rec.Capabilities.Has(capability) {
			exact = append(exact, rec)
		}
	}

	idle := make([]bus.AgentRecord, 0, len(exact))
	for _, rec := range exact {
		if rec.State == core.StateIdle {
			idle = append(idle, rec)
		}
	}

	if pick, ok := s.best(idle); ok {
		return pick, nil
	}
	if pick, ok := s.best(exact); ok {
		return pick, nil
	}

	if s.cfg.FallbackAgentID != "" {
		for _, rec := range records {
			if rec.AgentID == s.cfg.FallbackAgentID {
				return rec, nil
			}
		}
	}

	return bus.AgentRecord{}, &core.NoAgentAvailableError{Capability: capability}
}

// best ranks a pool and returns the winner.
func (s *Selector) best(pool []bus.AgentRecord) (bus.AgentRecord, bool) {
	if len(pool) == 0 {
		return bus.AgentRecord{}, false
	}
	sort.Slice(pool, func(i, j int) bool {
		si, sj := s.score(pool[i]), s.score(pool[j])
		if si != sj {
			return si > sj
		}
		return pool[i].AgentID < pool[j].AgentID
	})
	return pool[0], true
}

// score computes the weighted composite for one agent record.
func (s *Selector) score(rec bus.AgentRecord) float64 {
	score := s.cfg.SuccessWeight * rec.SuccessRate
	if rec.State == core.StateIdle {
		score += s.cfg.IdleWeight
	}
	if !rec.LastFailureAt.IsZero() {
		elapsed := s.now().Sub(rec.LastFailureAt)
		if elapsed < s.cfg.FailureWindow {
			score -= s.cfg.FailurePenalty * (1 - float64(elapsed)/float64(s.cfg.FailureWindow))
		}
	}
	return score
}
