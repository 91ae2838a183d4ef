package orchestrator

import (
	"fmt"
	"sort"

	"github.com/hupe1980/agenthub/core"
)

// validateGraph checks the subtask graph for unknown dependency references
// and cycles. It runs before any execution begins; a detected cycle fails
// the plan with InvalidPlanError carrying one offending path.
func validateGraph(w *Workflow) error {
	ids := make(map[string]struct{}, len(w.Subtasks))
	for _, st := range w.Subtasks {
		if _, dup := ids[st.ID]; dup {
			return fmt.Errorf("duplicate subtask id %q", st.ID)
		}
		ids[st.ID] = struct{}{}
	}
	for _, st := range w.Subtasks {
		for _, dep := range st.Dependencies {
			if _, ok := ids[dep]; !ok {
				return fmt.Errorf("subtask %q depends on unknown subtask %q", st.ID, dep)
			}
		}
	}

	if cycle := findCycle(w); cycle != nil {
		return &core.InvalidPlanError{WorkflowID: w.ID, Cycle: cycle}
	}
	return nil
}

// findCycle runs a depth-first search with coloring and returns one cyclic
// dependency path when present, nil otherwise.
func findCycle(w *Workflow) []string {
	const (
		white = 0 // unvisited
		gray  = 1 // in progress
		black = 2 // done
	)
	colors := make(map[string]int, len(w.Subtasks))
	deps := make(map[string][]string, len(w.Subtasks))
	for _, st := range w.Subtasks {
		deps[st.ID] = st.Dependencies
	}

	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = gray
		stack = append(stack, id)

		for _, dep := range deps[id] {
			switch colors[dep] {
			case gray:
				// Back edge: slice the current path from the repeated node.
				for i, n := range stack {
					if n == dep {
						cycle = append(append([]string(nil), stack[i:]...), dep)
						break
					}
				}
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}

		colors[id] = black
		stack = stack[:len(stack)-1]
		return false
	}

	// Iterate in declaration order so the reported cycle is deterministic.
	for _, st := range w.Subtasks {
		if colors[st.ID] == white && visit(st.ID) {
			return cycle
		}
	}
	return nil
}

// topologicalOrder returns subtask ids so that every dependency precedes its
// dependents. Among unordered peers the planner's declaration order is kept,
// which makes dispatch order deterministic.
func topologicalOrder(w *Workflow) []string {
	indegree := make(map[string]int, len(w.Subtasks))
	dependents := make(map[string][]string, len(w.Subtasks))
	position := make(map[string]int, len(w.Subtasks))

	for i, st := range w.Subtasks {
		position[st.ID] = i
		indegree[st.ID] = len(st.Dependencies)
		for _, dep := range st.Dependencies {
			dependents[dep] = append(dependents[dep], st.ID)
		}
	}

	frontier := make([]string, 0, len(w.Subtasks))
	for _, st := range w.Subtasks {
		if indegree[st.ID] == 0 {
			frontier = append(frontier, st.ID)
		}
	}

	order := make([]string, 0, len(w.Subtasks))
	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return position[frontier[i]] < position[frontier[j]] })
		id := frontier[0]
		frontier = frontier[1:]
		order = append(order, id)

		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				frontier = append(frontier, next)
			}
		}
	}
	return order
}

// refreshReady promotes pending subtasks whose dependencies all completed.
// A subtask becomes ready if and only if every dependency is completed.
func refreshReady(w *Workflow) {
	for _, st := range w.Subtasks {
		if st.Status != SubtaskPending {
			continue
		}
		ready := true
		for _, dep := range st.Dependencies {
			if d := w.Subtask(dep); d == nil || d.Status != SubtaskCompleted {
				ready = false
				break
			}
		}
		if ready {
			st.Status = SubtaskReady
		}
	}
}

// skipDependents marks every subtask transitively depending on failedID as
// skipped, recording the reason in status and history. Independent branches
// are untouched.
func skipDependents(w *Workflow, failedID string) {
	dependents := make(map[string][]string, len(w.Subtasks))
	for _, st := range w.Subtasks {
		for _, dep := range st.Dependencies {
			dependents[dep] = append(dependents[dep], st.ID)
		}
	}

	queue := []string{failedID}
	seen := map[string]struct{}{failedID: {}}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range dependents[id] {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			st := w.Subtask(next)
			if st.Status.Terminal() {
				continue
			}
			st.Status = SubtaskSkipped
			st.Error = fmt.Sprintf("dependency %s failed", failedID)
			w.appendHistory(st.ID, HistorySkipped, "", st.Error)
			queue = append(queue, next)
		}
	}
}
