package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/agenthub/core"
	"github.com/hupe1980/agenthub/memory"
)

const defaultRecallLimit = 5

// MemoryAgent stores and recalls facts on behalf of the user. Queries of the
// form "remember: <fact>" (or "remember <fact>") store the fact; "forget
// <id>" drops it; everything else is treated as a recall query against the
// backing store.
type MemoryAgent struct {
	BaseAgent
	store memory.Store
}

// NewMemoryAgent constructs a MemoryAgent backed by store. A nil store gets
// a fresh in-memory one.
func NewMemoryAgent(id string, store memory.Store) *MemoryAgent {
	if store == nil {
		store = memory.NewInMemoryStore()
	}
	return &MemoryAgent{
		BaseAgent: NewBaseAgent(id, "Memory", "Stores and recalls user facts.", "memory"),
		store:     store,
	}
}

// Process implements core.Agent.
func (a *MemoryAgent) Process(_ context.Context, query string, _ map[string]any) (core.Response, error) {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "remember:") || strings.HasPrefix(lower, "remember "):
		fact := strings.TrimSpace(trimmed[len("remember"):])
		fact = strings.TrimSpace(strings.TrimPrefix(fact, ":"))
		e, err := a.store.Remember(fact, map[string]any{"agent": a.ID()})
		if err != nil {
			return core.Response{}, fmt.Errorf("remember: %w", err)
		}
		return core.Response{
			Content:  fmt.Sprintf("Remembered (%s): %s", e.ID, e.Content),
			Metadata: map[string]any{"memory_id": e.ID},
		}, nil

	case strings.HasPrefix(lower, "forget "):
		id := strings.TrimSpace(trimmed[len("forget "):])
		if err := a.store.Forget(id); err != nil {
			return core.Response{}, fmt.Errorf("forget: %w", err)
		}
		return core.Response{Content: fmt.Sprintf("Forgot %s", id)}, nil

	default:
		results, err := a.store.Search(trimmed, defaultRecallLimit)
		if err != nil {
			return core.Response{}, fmt.Errorf("recall: %w", err)
		}
		if len(results) == 0 {
			return core.Response{Content: "I don't have anything stored about that."}, nil
		}
		lines := make([]string, 0, len(results))
		for _, r := range results {
			lines = append(lines, fmt.Sprintf("- %s (%s)", r.Entry.Content, r.Entry.ID))
		}
		return core.Response{
			Content:  strings.Join(lines, "\n"),
			Metadata: map[string]any{"matches": len(results)},
		}, nil
	}
}
