package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/hupe1980/agenthub/core"
)

// dispatchOutcome carries one subtask's result back from its goroutine so
// outcomes can be applied, and history written, in dispatch order rather
// than completion order.
type dispatchOutcome struct {
	subtask *Subtask
	resp    core.Response
	err     error
}

// Execute dispatches the workflow's subtasks in topological order. A
// subtask is dispatched only once ready (all dependencies completed).
// Mutually independent ready subtasks run concurrently, but history and
// outcome application follow the deterministic dispatch order. A terminal
// subtask failure transitively skips its dependents while independent
// branches continue. Cancellation of ctx stops dispatching new subtasks;
// work already in flight finishes and is recorded.
func (o *Orchestrator) Execute(ctx context.Context, w *Workflow) {
	w.Status = WorkflowRunning

	position := make(map[string]int, len(w.Subtasks))
	for i, id := range topologicalOrder(w) {
		position[id] = i
	}

	for {
		if ctx.Err() != nil {
			o.cancelRemaining(w)
			break
		}

		refreshReady(w)

		ready := make([]*Subtask, 0, len(w.Subtasks))
		for _, st := range w.Subtasks {
			if st.Status == SubtaskReady {
				ready = append(ready, st)
			}
		}
		if len(ready) == 0 {
			break
		}
		sort.Slice(ready, func(i, j int) bool { return position[ready[i].ID] < position[ready[j].ID] })

		wave := o.dispatchWave(ctx, w, ready)
		o.applyOutcomes(w, wave)
	}

	w.finalize()
	o.logger.Info("workflow execution finished", "workflow_id", w.ID, "status", w.Status)
}

// dispatchWave selects an agent for each ready subtask in order and starts
// the selected ones concurrently. Selection failures are terminal for the
// subtask and skip its dependents immediately.
func (o *Orchestrator) dispatchWave(ctx context.Context, w *Workflow, ready []*Subtask) []*dispatchOutcome {
	records := o.bus.Agents()

	outcomes := make([]*dispatchOutcome, 0, len(ready))
	var wg sync.WaitGroup

	for _, st := range ready {
		rec, err := o.selector.Select(records, st)
		if err != nil {
			st.Status = SubtaskFailed
			st.Error = err.Error()
			w.appendHistory(st.ID, HistoryFailed, "", st.Error)
			o.logger.Warn("subtask has no agent", "workflow_id", w.ID, "subtask_id", st.ID, "capability", st.RequiredCapability)
			skipDependents(w, st.ID)
			continue
		}

		st.AssignedAgentID = rec.AgentID
		st.Status = SubtaskRunning
		w.appendHistory(st.ID, HistoryDispatched, rec.AgentID, "")

		outcome := &dispatchOutcome{subtask: st}
		outcomes = append(outcomes, outcome)

		wg.Add(1)
		go func(st *Subtask, agentID string, out *dispatchOutcome) {
			defer wg.Done()
			msg := core.NewRequest(o.senderID, agentID, st.Description).
				WithContext(o.subtaskContext(w, st))
			out.resp, out.err = o.bus.SendAndAwait(ctx, msg)
		}(st, rec.AgentID, outcome)
	}

	wg.Wait()
	return outcomes
}

// applyOutcomes writes wave results into the workflow in dispatch order.
func (o *Orchestrator) applyOutcomes(w *Workflow, outcomes []*dispatchOutcome) {
	for _, out := range outcomes {
		st := out.subtask
		if out.err != nil {
			st.Status = SubtaskFailed
			st.Error = out.err.Error()
			w.appendHistory(st.ID, HistoryFailed, st.AssignedAgentID, st.Error)
			o.logger.Warn("subtask failed", "workflow_id", w.ID, "subtask_id", st.ID, "agent_id", st.AssignedAgentID, "error", out.err)
			skipDependents(w, st.ID)
			continue
		}
		st.Status = SubtaskCompleted
		st.Result = out.resp.Content
		w.appendHistory(st.ID, HistoryCompleted, st.AssignedAgentID, "")
	}
}

// subtaskContext assembles the query context for one dispatch: workflow
// identifiers plus the results of every direct dependency.
func (o *Orchestrator) subtaskContext(w *Workflow, st *Subtask) map[string]any {
	qctx := map[string]any{
		"workflow_id": w.ID,
		"subtask_id":  st.ID,
	}
	if len(st.Dependencies) > 0 {
		depResults := make(map[string]string, len(st.Dependencies))
		for _, dep := range st.Dependencies {
			if d := w.Subtask(dep); d != nil {
				depResults[dep] = d.Result
			}
		}
		qctx["dependency_results"] = depResults
	}
	return qctx
}

// cancelRemaining marks every non-terminal subtask skipped after a
// cancellation. There is no resume for a cancelled or partial workflow; a
// retry is a fresh Plan + Execute producing a new workflow.
func (o *Orchestrator) cancelRemaining(w *Workflow) {
	for _, st := range w.Subtasks {
		if st.Status.Terminal() || st.Status == SubtaskRunning {
			continue
		}
		st.Status = SubtaskSkipped
		st.Error = "workflow cancelled"
		w.appendHistory(st.ID, HistorySkipped, "", st.Error)
	}
}
