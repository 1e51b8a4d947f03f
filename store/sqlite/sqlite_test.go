package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kaziai/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceLifecycle(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "kaziai.db"))
	require.NoError(t, err)
	ctx := context.Background()

	traceID, err := s.CreateTrace(ctx, 1, nil, "scout", "job_search", "find remote jobs")
	require.NoError(t, err)
	require.NotEmpty(t, traceID)

	require.NoError(t, s.AddTraceStep(ctx, store.TraceStepRecord{
		TraceID: traceID, StepNumber: 1, Thought: "searching",
		ToolName: "job_search", ToolArgs: map[string]interface{}{"q": "python"},
		ToolResult: map[string]interface{}{"success": true}, Observation: "found 3", Success: true,
	}))

	require.NoError(t, s.CompleteTrace(ctx, traceID, store.TraceCompleted, "done", 1, 1))

	traces, err := s.GetTraces(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, store.TraceCompleted, traces[0].Status)

	steps, err := s.GetTraceSteps(ctx, traceID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "job_search", steps[0].ToolName)
}

func TestGoalStepOrderingAndShift(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "kaziai.db"))
	require.NoError(t, err)
	ctx := context.Background()

	goalID, err := s.CreateGoal(ctx, 1, "Land a job", "", "user")
	require.NoError(t, err)

	_, err = s.AddGoalStep(ctx, store.GoalStepRecord{GoalID: goalID, StepNumber: 1, Title: "search", AgentName: "scout", Status: store.StepPending})
	require.NoError(t, err)
	_, err = s.AddGoalStep(ctx, store.GoalStepRecord{GoalID: goalID, StepNumber: 2, Title: "match", AgentName: "match", Status: store.StepPending})
	require.NoError(t, err)

	require.NoError(t, s.ShiftStepNumbers(ctx, goalID, 2))

	steps, err := s.GetGoalSteps(ctx, goalID)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].StepNumber)
	assert.Equal(t, 3, steps[1].StepNumber)

	next, err := s.GetNextPendingStep(ctx, goalID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, 1, next.StepNumber)
}

func TestNegotiationSessionLifecycle(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "kaziai.db"))
	require.NoError(t, err)
	ctx := context.Background()

	sessionID, err := s.CreateNegotiationSession(ctx, nil, "confidence_divergence", []string{"scout", "match"})
	require.NoError(t, err)

	require.NoError(t, s.AddNegotiationRound(ctx, store.NegotiationRoundRecord{
		SessionID: sessionID, Round: 1, AgentName: "scout", ResponseType: "position", Confidence: 0.9,
	}))
	require.NoError(t, s.CompleteNegotiation(ctx, sessionID, true, "scout's position"))
}
