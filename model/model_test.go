package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModelCannedAndDefaultResponses(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("ping", "pong")

	resp, err := m.Generate(context.Background(), Request{Prompt: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)

	resp, err = m.Generate(context.Background(), Request{Prompt: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: unknown", resp.Content)
}

func TestMockModelFailWith(t *testing.T) {
	m := NewMockModel("test-model")
	m.FailWith(errors.New("provider down"))

	_, err := m.Generate(context.Background(), Request{Prompt: "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestMockModelHonorsContextCancellation(t *testing.T) {
	m := NewMockModel("test-model")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, Request{Prompt: "late"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModelInfo(t *testing.T) {
	m := NewMockModel("test-model")
	info := m.Info()
	assert.Equal(t, "test-model", info.Name)
	assert.Equal(t, "mock", info.Provider)
}
