package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaziai/core/llms"
	"github.com/kaziai/core/store"
	"github.com/kaziai/core/toolkit"
)

type echoTool struct{}

func (echoTool) Info() toolkit.Info {
	return toolkit.Info{Name: "echo", Description: "Echoes its input.", Parameters: toolkit.SchemaFor(struct {
		Text string `json:"text"`
	}{})}
}

func (echoTool) Execute(_ context.Context, args map[string]interface{}) (toolkit.Result, error) {
	return toolkit.Ok(map[string]interface{}{"echo": args["text"]}), nil
}

type fakeTraceStore struct {
	store.TraceStore
	steps      []store.TraceStepRecord
	completed  []store.TraceStatus
	lastOutput string
}

func (f *fakeTraceStore) AddTraceStep(_ context.Context, step store.TraceStepRecord) error {
	f.steps = append(f.steps, step)
	return nil
}

func (f *fakeTraceStore) CompleteTrace(_ context.Context, _ string, status store.TraceStatus, output string, _, _ int) error {
	f.completed = append(f.completed, status)
	f.lastOutput = output
	return nil
}

func newTestAgent(t *testing.T, provider *llms.FakeProvider, traces store.TraceStore) *Agent {
	t.Helper()
	registry := toolkit.NewRegistry()
	registry.Register(echoTool{})
	spec := Spec{
		Name:                 "scout",
		Role:                 "finds jobs",
		SystemPromptTemplate: "You are scout.\n{{tool_descriptions}}\n",
	}
	return NewAgent(spec, registry, provider, traces, Config{MaxSteps: 5, MaxRetries: 1})
}

func TestRunReturnsFinalAnswerAfterToolCall(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{
		{Text: "calling echo", ToolCalls: []llms.ToolCall{{ID: "call_1", Name: "echo", Arguments: `{"text":"hi"}`}}}},
	}
	provider.Responses = append(provider.Responses, llms.FakeResponse{Text: "FINAL_ANSWER done"})

	traces := &fakeTraceStore{}
	agent := newTestAgent(t, provider, traces)

	out, err := agent.Run(context.Background(), "find a job", RunOptions{TraceID: "t1"})

	require.NoError(t, err)
	assert.Equal(t, "done", out)
	require.Len(t, traces.completed, 1)
	assert.Equal(t, store.TraceCompleted, traces.completed[0])
	require.Len(t, traces.steps, 1)
	assert.Equal(t, "echo", traces.steps[0].ToolName)
	assert.True(t, traces.steps[0].Success)
}

func TestRunHitsMaxStepsWithoutFinalAnswer(t *testing.T) {
	provider := &llms.FakeProvider{}
	traces := &fakeTraceStore{}
	agent := newTestAgent(t, provider, traces)
	agent.cfg.MaxSteps = 2

	out, err := agent.Run(context.Background(), "find a job", RunOptions{TraceID: "t2"})

	require.ErrorIs(t, err, ErrMaxStepsExceeded)
	assert.Contains(t, out, "Step 1")
	require.Len(t, traces.completed, 1)
	assert.Equal(t, store.TraceMaxSteps, traces.completed[0])
}

func TestRunHonorsCancelCheck(t *testing.T) {
	provider := &llms.FakeProvider{}
	traces := &fakeTraceStore{}
	agent := newTestAgent(t, provider, traces)

	out, err := agent.Run(context.Background(), "find a job", RunOptions{
		TraceID:     "t3",
		CancelCheck: func() bool { return true },
	})

	require.ErrorIs(t, err, ErrCancelled)
	assert.Contains(t, out, "cancelled after 0 steps")
	require.Len(t, traces.completed, 1)
	assert.Equal(t, store.TraceCancelled, traces.completed[0])
	assert.Equal(t, 0, provider.Calls())
}

func TestExecuteWithRetryRetriesOnFailure(t *testing.T) {
	provider := &llms.FakeProvider{}
	traces := &fakeTraceStore{}
	agent := newTestAgent(t, provider, traces)
	registry := toolkit.NewRegistry()
	registry.Register(failThenSucceedTool{attempts: new(int)})
	agent.registry = registry

	result := agent.executeWithRetry(context.Background(), "flaky", nil)
	assert.True(t, result.Succeeded())
}

type failThenSucceedTool struct{ attempts *int }

func (t failThenSucceedTool) Info() toolkit.Info {
	return toolkit.Info{Name: "flaky", Description: "fails once then succeeds."}
}

func (t failThenSucceedTool) Execute(_ context.Context, _ map[string]interface{}) (toolkit.Result, error) {
	*t.attempts++
	if *t.attempts < 2 {
		return toolkit.Fail("not yet"), nil
	}
	return toolkit.Ok(nil), nil
}
