package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaziai/core/goal"
	"github.com/kaziai/core/llms"
	"github.com/kaziai/core/router"
	"github.com/kaziai/core/runtime"
	"github.com/kaziai/core/store"
)

type fakeTraceStore struct {
	store.TraceStore
	nextID    int
	completed []store.TraceStatus
}

func (f *fakeTraceStore) CreateTrace(_ context.Context, _ int64, _ *int64, _, _, _ string) (string, error) {
	f.nextID++
	return "trace-1", nil
}

func (f *fakeTraceStore) AddTraceStep(_ context.Context, _ store.TraceStepRecord) error { return nil }

func (f *fakeTraceStore) CompleteTrace(_ context.Context, _ string, status store.TraceStatus, _ string, _, _ int) error {
	f.completed = append(f.completed, status)
	return nil
}

func TestDispatchRunsSingleAgentAndReturnsResult(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{
		{Text: "FINAL_ANSWER: found 3 matching jobs"},
	}}
	o := NewOrchestrator(provider, &fakeTraceStore{})

	routing := router.RoutingDecision{Intent: "job_search", Agents: []string{"scout"}}
	results := o.Dispatch(context.Background(), routing, "find me backend jobs", DispatchOptions{UserID: 7})

	require.Len(t, results, 1)
	assert.Equal(t, "scout", results[0].AgentName)
	assert.True(t, results[0].Success)
	assert.Contains(t, results[0].Output, "found 3 matching jobs")
}

func TestDispatchRunsMultipleAgentsInOrder(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{
		{Text: "FINAL_ANSWER: scout output"},
		{Text: "FINAL_ANSWER: match output"},
	}}
	o := NewOrchestrator(provider, &fakeTraceStore{})

	routing := router.RoutingDecision{Intent: "full_pipeline", Agents: []string{"scout", "match"}}
	results := o.Dispatch(context.Background(), routing, "help me apply", DispatchOptions{})

	require.Len(t, results, 2)
	assert.Equal(t, "scout", results[0].AgentName)
	assert.Equal(t, "match", results[1].AgentName)
}

func TestDispatchStopsOnCancelCheck(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{Text: "FINAL_ANSWER: x"}}}
	o := NewOrchestrator(provider, &fakeTraceStore{})

	routing := router.RoutingDecision{Intent: "job_search", Agents: []string{"scout", "match"}}
	results := o.Dispatch(context.Background(), routing, "hi", DispatchOptions{CancelCheck: func() bool { return true }})

	assert.Empty(t, results)
}

func TestDispatchSkipsUnknownAgent(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{Text: "FINAL_ANSWER: ok"}}}
	o := NewOrchestrator(provider, &fakeTraceStore{})

	routing := router.RoutingDecision{Intent: "job_search", Agents: []string{"unknown_agent", "scout"}}
	results := o.Dispatch(context.Background(), routing, "hi", DispatchOptions{})

	require.Len(t, results, 1)
	assert.Equal(t, "scout", results[0].AgentName)
}

func TestBuildAgentTaskIncludesProfileAndRole(t *testing.T) {
	o := &Orchestrator{}
	task := o.buildAgentTask("scout", "find jobs", map[string]interface{}{"role": "backend engineer"},
		"", map[string]interface{}{"target_role": "backend engineer", "skills": []interface{}{"go", "sql"}})

	assert.Contains(t, task, "backend engineer")
	assert.Contains(t, task, "User profile:")
}

type fixedExpertiseProvider struct{ hint string }

func (f fixedExpertiseProvider) Hint(_ context.Context, _ int64, _, _ string) runtime.ExpertiseHint {
	return runtime.ExpertiseHint(f.hint)
}

func TestDispatchInjectsExpertiseHintIntoAgentTask(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{
		{Match: func(messages []llms.Message) bool {
			for _, m := range messages {
				if strings.Contains(m.Content, "scout has a 9/10 success rate") {
					return true
				}
			}
			return false
		}, Text: "FINAL_ANSWER: matched"},
	}}
	o := NewOrchestrator(provider, &fakeTraceStore{})
	o.Expertise = fixedExpertiseProvider{hint: "scout has a 9/10 success rate"}

	routing := router.RoutingDecision{Intent: "job_search", Agents: []string{"scout"}}
	results := o.Dispatch(context.Background(), routing, "find backend jobs", DispatchOptions{UserID: 7})

	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
}

func TestAsGoalDispatcherAdaptsResults(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{Text: "FINAL_ANSWER: done"}}}
	o := NewOrchestrator(provider, &fakeTraceStore{})

	dispatcher := o.AsGoalDispatcher()
	routing := router.RoutingDecision{Intent: router.IntentGoalStep, Agents: []string{"coach"}}
	results := dispatcher.Dispatch(context.Background(), routing, "prep for interview", goal.DispatchOptions{UserID: 7})

	require.Len(t, results, 1)
	assert.Equal(t, "coach", results[0].AgentName)
	assert.True(t, results[0].Success)
}
