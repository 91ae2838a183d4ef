package orchestrator

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultStoreCapacity bounds the in-memory workflow history store.
const DefaultStoreCapacity = 256

// WorkflowStore retains finished workflows for later inspection. The
// retention policy (capacity, TTL) belongs to the implementation, not the
// orchestrator. Implementations must be safe for concurrent callers and
// must not hand out state shared with the executor.
type WorkflowStore interface {
	// Save retains the workflow, replacing any previous version of the id.
	Save(w *Workflow) error

	// Get returns the full workflow or an error for unknown ids. Repeated
	// calls with no concurrent execution return identical data.
	Get(id string) (*Workflow, error)

	// List returns summaries ordered by creation time, optionally filtered
	// by status (empty filter returns all).
	List(statusFilter WorkflowStatus) ([]WorkflowSummary, error)
}

// InMemoryStore is a process-local WorkflowStore with capacity-based
// eviction: once full, the oldest retained workflow is dropped first.
type InMemoryStore struct {
	mu        sync.RWMutex
	capacity  int
	workflows map[string]*Workflow
	order     []string // insertion order for eviction
}

// NewInMemoryStore creates a store evicting beyond the given capacity.
// A non-positive capacity falls back to DefaultStoreCapacity.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &InMemoryStore{
		capacity:  capacity,
		workflows: make(map[string]*Workflow),
	}
}

// Save implements WorkflowStore.
func (s *InMemoryStore) Save(w *Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workflows[w.ID]; !exists {
		s.order = append(s.order, w.ID)
		for len(s.order) > s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.workflows, oldest)
		}
	}
	s.workflows[w.ID] = w.Clone()
	return nil
}

// Get implements WorkflowStore.
func (s *InMemoryStore) Get(id string) (*Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %q not found", id)
	}
	return w.Clone(), nil
}

// List implements WorkflowStore.
func (s *InMemoryStore) List(statusFilter WorkflowStatus) ([]WorkflowSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]WorkflowSummary, 0, len(s.workflows))
	for _, id := range s.order {
		w := s.workflows[id]
		if statusFilter != "" && w.Status != statusFilter {
			continue
		}
		summaries = append(summaries, w.summaryRow())
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Len returns the number of retained workflows.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workflows)
}
