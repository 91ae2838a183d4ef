package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/memory"
	"github.com/hupe1980/agenthub/model"
)

func TestEchoAgentRepeatsQuery(t *testing.T) {
	a := NewEchoAgent("echo")

	resp, err := a.Process(context.Background(), "hello there", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Content)
	assert.Equal(t, "echo", resp.Metadata["agent"])
	assert.True(t, a.Capabilities().Has("echo"))
}

func TestSystemAgentAnswersTimeAndVersion(t *testing.T) {
	a := NewSystemAgent("system")
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	resp, err := a.Process(context.Background(), "what time is it?", nil)
	require.NoError(t, err)
	assert.Equal(t, fixed.Format(time.RFC1123), resp.Content)

	resp, err = a.Process(context.Background(), "go version", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Content, "go"))

	resp, err = a.Process(context.Background(), "status", nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "platform=")
}

func TestMemoryAgentRememberRecallForget(t *testing.T) {
	store := memory.NewInMemoryStore()
	a := NewMemoryAgent("memory", store)

	resp, err := a.Process(context.Background(), "remember: the wifi password is hunter2", nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "hunter2")
	id, ok := resp.Metadata["memory_id"].(string)
	require.True(t, ok)

	resp, err = a.Process(context.Background(), "wifi password", nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "hunter2")

	resp, err = a.Process(context.Background(), "forget "+id, nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Content, id)

	resp, err = a.Process(context.Background(), "wifi password", nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "don't have anything")
}

func TestMemoryAgentDefaultsToFreshStore(t *testing.T) {
	a := NewMemoryAgent("memory", nil)
	resp, err := a.Process(context.Background(), "anything at all", nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "don't have anything")
}

func TestModelAgentGeneratesFromPrompt(t *testing.T) {
	m := model.NewMockModel("mock-1")
	m.AddResponse("write a haiku", "silent bus hums on")

	a := NewModelAgent("assistant", m)

	resp, err := a.Process(context.Background(), "write a haiku", nil)
	require.NoError(t, err)
	assert.Equal(t, "silent bus hums on", resp.Content)
	assert.Equal(t, "mock-1", resp.Metadata["model"])
}

func TestModelAgentFoldsDependencyResultsIntoPrompt(t *testing.T) {
	m := model.NewMockModel("mock-1")
	a := NewModelAgent("assistant", m)

	resp, err := a.Process(context.Background(), "summarize", map[string]any{
		"dependency_results": map[string]string{
			"fetch": "42 rows",
			"parse": "3 anomalies",
		},
	})
	require.NoError(t, err)

	// The mock echoes the prompt, so the fold is observable in the output.
	assert.Contains(t, resp.Content, "[fetch] 42 rows")
	assert.Contains(t, resp.Content, "[parse] 3 anomalies")
	assert.Contains(t, resp.Content, "Task: summarize")
}

func TestModelAgentSurfacesProviderErrors(t *testing.T) {
	m := model.NewMockModel("mock-1")
	m.FailWith(errors.New("quota exceeded"))

	a := NewModelAgent("assistant", m)
	_, err := a.Process(context.Background(), "anything", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestCodeAgentCapabilities(t *testing.T) {
	a := NewCodeAgent("coder", model.NewMockModel("mock-1"))
	assert.True(t, a.Capabilities().Has("code"))
	assert.True(t, a.Capabilities().Has("general"))
}
