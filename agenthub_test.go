package agenthub

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agenthub/agent"
	"github.com/hupe1980/agenthub/config"
	"github.com/hupe1980/agenthub/dispatcher"
	"github.com/hupe1980/agenthub/orchestrator"
)

func TestAskRoutesThroughRegisteredAgent(t *testing.T) {
	hub := New(func(o *Options) {
		o.DefaultTimeout = time.Second
		o.ClassifierRules = []dispatcher.Rule{
			{Keywords: []string{"echo"}, TargetAgentID: "echo", Confidence: 0.9},
		}
	})
	hub.RegisterAgent(agent.NewEchoAgent("echo"))

	resp, err := hub.Ask(context.Background(), "echo hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "echo hello", resp.Content)
}

func TestRunWorkflowAndHistoryRetrieval(t *testing.T) {
	hub := New(func(o *Options) {
		o.DefaultTimeout = time.Second
	})
	hub.RegisterAgent(agent.NewEchoAgent("echo"))

	w, err := hub.RunWorkflow(context.Background(), "just one step", nil)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.WorkflowCompleted, w.Status)

	got, err := hub.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)

	summaries, err := hub.ListWorkflows("")
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestFromConfigSQLiteStoreCloseAndPersistence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Store.Backend = "sqlite"
	cfg.Store.Path = filepath.Join(dir, "workflows.db")
	cfg.Bus.DefaultTimeout = time.Second

	hub, err := FromConfig(cfg)
	require.NoError(t, err)
	hub.RegisterAgent(agent.NewEchoAgent("echo"))

	w, err := hub.RunWorkflow(context.Background(), "persist me", nil)
	require.NoError(t, err)
	require.NoError(t, hub.Close())

	// A fresh hub over the same path sees the retained workflow.
	reopened, err := FromConfig(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetWorkflow(w.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist me", got.OriginalRequest)
}

func TestCloseOnMemoryStoreIsNoOp(t *testing.T) {
	hub := New()
	assert.NoError(t, hub.Close())
}

func TestFromConfigWiresDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	hub, err := FromConfig(cfg)
	require.NoError(t, err)
	hub.RegisterAgent(agent.NewEchoAgent("echo"))

	resp, err := hub.Ask(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Content)
}
