package orchestrator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWorkflow(t *testing.T) *Workflow {
	t.Helper()
	w, err := NewWorkflow("sample request", []SubtaskSpec{
		{ID: "a", Description: "collect", RequiredCapability: "general"},
		{ID: "b", Description: "analyze", RequiredCapability: "code", DependsOn: []string{"a"}},
		{ID: "c", Description: "report", RequiredCapability: "general", DependsOn: []string{"b"}},
	})
	require.NoError(t, err)

	w.Subtask("a").Status = SubtaskCompleted
	w.Subtask("a").Result = "collected"
	w.Subtask("b").Status = SubtaskFailed
	w.Subtask("b").Error = "analysis crashed"
	w.Subtask("c").Status = SubtaskSkipped
	w.Subtask("c").Error = "dependency b failed"

	w.appendHistory("a", HistoryDispatched, "worker", "")
	w.appendHistory("a", HistoryCompleted, "worker", "")
	w.appendHistory("b", HistoryDispatched, "coder", "")
	w.appendHistory("b", HistoryFailed, "coder", "analysis crashed")
	w.appendHistory("c", HistorySkipped, "", "dependency b failed")
	w.finalize()
	return w
}

func TestWorkflowJSONRoundTrip(t *testing.T) {
	w := sampleWorkflow(t)

	data, err := json.Marshal(w)
	require.NoError(t, err)

	var decoded Workflow
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Subtask order and terminal statuses survive exactly.
	require.Len(t, decoded.Subtasks, len(w.Subtasks))
	for i, st := range w.Subtasks {
		assert.Equal(t, st.ID, decoded.Subtasks[i].ID)
		assert.Equal(t, st.Status, decoded.Subtasks[i].Status)
		assert.Equal(t, st.Result, decoded.Subtasks[i].Result)
		assert.Equal(t, st.Error, decoded.Subtasks[i].Error)
	}

	require.Len(t, decoded.History, len(w.History))
	for i, h := range w.History {
		assert.Equal(t, h.SubtaskID, decoded.History[i].SubtaskID)
		assert.Equal(t, h.Event, decoded.History[i].Event)
	}

	assert.Equal(t, w.Status, decoded.Status)
}

func TestFinalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []SubtaskStatus
		want     WorkflowStatus
	}{
		{"all completed", []SubtaskStatus{SubtaskCompleted, SubtaskCompleted}, WorkflowCompleted},
		{"none completed", []SubtaskStatus{SubtaskFailed, SubtaskSkipped}, WorkflowFailed},
		{"some completed", []SubtaskStatus{SubtaskCompleted, SubtaskFailed}, WorkflowPartial},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkflow("r")
			for i, s := range tt.statuses {
				w.Subtasks = append(w.Subtasks, &Subtask{ID: string(rune('a' + i)), Status: s})
			}
			w.finalize()
			assert.Equal(t, tt.want, w.Status)
			require.NotNil(t, w.CompletedAt)
			assert.WithinDuration(t, time.Now(), *w.CompletedAt, time.Minute)
		})
	}
}

func TestSummaryListsFailuresAndSkips(t *testing.T) {
	w := sampleWorkflow(t)
	s := w.Summarize()

	assert.Equal(t, WorkflowPartial, s.Status)
	assert.Equal(t, []string{"collected"}, s.Results)
	require.Len(t, s.Failed, 1)
	assert.Equal(t, SubtaskFailure{SubtaskID: "b", Reason: "analysis crashed"}, s.Failed[0])
	require.Len(t, s.Skipped, 1)
	assert.Equal(t, "c", s.Skipped[0].SubtaskID)

	text := s.Text()
	assert.Contains(t, text, "collected")
	assert.Contains(t, text, "subtask b failed")
	assert.Contains(t, text, "subtask c skipped")
}

func TestCloneIsolation(t *testing.T) {
	w := sampleWorkflow(t)
	c := w.Clone()

	c.Subtask("a").Result = "mutated"
	c.History[0].Event = "mutated"

	assert.Equal(t, "collected", w.Subtask("a").Result)
	assert.Equal(t, HistoryDispatched, w.History[0].Event)
}
