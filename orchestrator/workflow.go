package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agenthub/core"
)

// SubtaskStatus is the lifecycle state of one unit of work.
type SubtaskStatus string

const (
	// SubtaskPending means one or more dependencies are not completed yet.
	SubtaskPending SubtaskStatus = "pending"
	// SubtaskReady means every dependency completed; the subtask may dispatch.
	SubtaskReady SubtaskStatus = "ready"
	// SubtaskRunning means the subtask has been dispatched to an agent.
	SubtaskRunning SubtaskStatus = "running"
	// SubtaskCompleted means the assigned agent produced a result.
	SubtaskCompleted SubtaskStatus = "completed"
	// SubtaskFailed means dispatch failed terminally (retries exhausted or no
	// agent available).
	SubtaskFailed SubtaskStatus = "failed"
	// SubtaskSkipped means a transitive dependency failed or the workflow
	// was cancelled before dispatch.
	SubtaskSkipped SubtaskStatus = "skipped"
)

// Terminal reports whether the status is final.
func (s SubtaskStatus) Terminal() bool {
	return s == SubtaskCompleted || s == SubtaskFailed || s == SubtaskSkipped
}

// Subtask is one unit of work within a workflow, assigned to exactly one
// agent at dispatch time.
type Subtask struct {
	ID                 string        `json:"id"`
	Description        string        `json:"description"`
	RequiredCapability string        `json:"required_capability"`
	AssignedAgentID    string        `json:"assigned_agent_id,omitempty"`
	Dependencies       []string      `json:"dependencies,omitempty"`
	Status             SubtaskStatus `json:"status"`
	Result             string        `json:"result,omitempty"`
	Error              string        `json:"error,omitempty"`
}

// WorkflowStatus is the aggregate state of a workflow.
type WorkflowStatus string

const (
	// WorkflowPlanning means the subtask graph is still being built.
	WorkflowPlanning WorkflowStatus = "planning"
	// WorkflowRunning means the executor is dispatching subtasks.
	WorkflowRunning WorkflowStatus = "running"
	// WorkflowCompleted means every subtask completed.
	WorkflowCompleted WorkflowStatus = "completed"
	// WorkflowFailed means no subtask completed.
	WorkflowFailed WorkflowStatus = "failed"
	// WorkflowPartial means some but not all subtasks completed.
	WorkflowPartial WorkflowStatus = "partial"
)

// History event names recorded per subtask in dispatch order.
const (
	HistoryDispatched = "dispatched"
	HistoryCompleted  = "completed"
	HistoryFailed     = "failed"
	HistorySkipped    = "skipped"
)

// HistoryEntry is one append-only record of a subtask lifecycle event.
type HistoryEntry struct {
	SubtaskID string    `json:"subtask_id"`
	Event     string    `json:"event"`
	AgentID   string    `json:"agent_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Workflow is a DAG of subtasks produced by the planner for one user
// request. It is created by the planner and mutated only by the executor;
// History preserves subtask lifecycle events in dispatch order.
type Workflow struct {
	ID              string         `json:"id"`
	OriginalRequest string         `json:"original_request"`
	Subtasks        []*Subtask     `json:"subtasks"`
	Status          WorkflowStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	History         []HistoryEntry `json:"history,omitempty"`
}

// Subtask returns the subtask with the given id, or nil.
func (w *Workflow) Subtask(id string) *Subtask {
	for _, st := range w.Subtasks {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// appendHistory records a lifecycle event.
func (w *Workflow) appendHistory(subtaskID, event, agentID, detail string) {
	w.History = append(w.History, HistoryEntry{
		SubtaskID: subtaskID,
		Event:     event,
		AgentID:   agentID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}

// finalize derives the terminal workflow status from subtask outcomes:
// completed when everything completed, failed when nothing did, partial
// otherwise.
func (w *Workflow) finalize() {
	completed := 0
	for _, st := range w.Subtasks {
		if st.Status == SubtaskCompleted {
			completed++
		}
	}
	switch {
	case completed == len(w.Subtasks):
		w.Status = WorkflowCompleted
	case completed == 0:
		w.Status = WorkflowFailed
	default:
		w.Status = WorkflowPartial
	}
	now := time.Now().UTC()
	w.CompletedAt = &now
}

// Clone returns a deep copy so store readers never share mutable state with
// the executor.
func (w *Workflow) Clone() *Workflow {
	c := *w
	c.Subtasks = make([]*Subtask, len(w.Subtasks))
	for i, st := range w.Subtasks {
		stCopy := *st
		stCopy.Dependencies = append([]string(nil), st.Dependencies...)
		c.Subtasks[i] = &stCopy
	}
	c.History = append([]HistoryEntry(nil), w.History...)
	if w.CompletedAt != nil {
		completedAt := *w.CompletedAt
		c.CompletedAt = &completedAt
	}
	return &c
}

// SubtaskFailure describes one failed or skipped subtask in a summary.
type SubtaskFailure struct {
	SubtaskID string `json:"subtask_id"`
	Reason    string `json:"reason"`
}

// Summary is the user-facing aggregation of a workflow run: completed
// results in dispatch order plus explicit failed and skipped subtask ids
// with reasons. A failed or partial workflow still surfaces everything that
// did complete, never a bare error.
type Summary struct {
	WorkflowID string           `json:"workflow_id"`
	Status     WorkflowStatus   `json:"status"`
	Results    []string         `json:"results,omitempty"`
	Failed     []SubtaskFailure `json:"failed,omitempty"`
	Skipped    []SubtaskFailure `json:"skipped,omitempty"`
}

// Summarize builds the user-facing summary for this workflow.
func (w *Workflow) Summarize() Summary {
	s := Summary{WorkflowID: w.ID, Status: w.Status}
	for _, st := range w.Subtasks {
		switch st.Status {
		case SubtaskCompleted:
			s.Results = append(s.Results, st.Result)
		case SubtaskFailed:
			s.Failed = append(s.Failed, SubtaskFailure{SubtaskID: st.ID, Reason: st.Error})
		case SubtaskSkipped:
			s.Skipped = append(s.Skipped, SubtaskFailure{SubtaskID: st.ID, Reason: st.Error})
		}
	}
	return s
}

// Text renders the summary as a human-readable response.
func (s Summary) Text() string {
	var b strings.Builder
	for i, r := range s.Results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(r)
	}
	if len(s.Failed) > 0 || len(s.Skipped) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Workflow %s finished with status %s.", s.WorkflowID, s.Status)
		for _, f := range s.Failed {
			fmt.Fprintf(&b, "\n- subtask %s failed: %s", f.SubtaskID, f.Reason)
		}
		for _, sk := range s.Skipped {
			fmt.Fprintf(&b, "\n- subtask %s skipped: %s", sk.SubtaskID, sk.Reason)
		}
	}
	return b.String()
}

// WorkflowSummary is the store's listing row: enough to render a workflow
// table without loading full history.
type WorkflowSummary struct {
	ID              string         `json:"id"`
	OriginalRequest string         `json:"original_request"`
	Status          WorkflowStatus `json:"status"`
	SubtaskCount    int            `json:"subtask_count"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

func (w *Workflow) summaryRow() WorkflowSummary {
	return WorkflowSummary{
		ID:              w.ID,
		OriginalRequest: w.OriginalRequest,
		Status:          w.Status,
		SubtaskCount:    len(w.Subtasks),
		CreatedAt:       w.CreatedAt,
		CompletedAt:     w.CompletedAt,
	}
}

// newWorkflow constructs an empty workflow in planning state.
func newWorkflow(request string) *Workflow {
	return &Workflow{
		ID:              core.NewID(),
		OriginalRequest: request,
		Status:          WorkflowPlanning,
		CreatedAt:       time.Now().UTC(),
	}
}
