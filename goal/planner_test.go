package goal

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaziai/core/llms"
	"github.com/kaziai/core/router"
	"github.com/kaziai/core/store"
)

// fakeGoalStore is an in-memory store.GoalStore for testing.
type fakeGoalStore struct {
	goals  map[string]*store.GoalRecord
	steps  map[string][]*store.GoalStepRecord
	nextID int
}

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: map[string]*store.GoalRecord{}, steps: map[string][]*store.GoalStepRecord{}}
}

func (f *fakeGoalStore) newID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeGoalStore) CreateGoal(ctx context.Context, userID int64, title, description, origin string) (string, error) {
	id := f.newID()
	f.goals[id] = &store.GoalRecord{ID: id, UserID: userID, Title: title, Description: description, Status: store.GoalActive, Origin: origin}
	return id, nil
}

func (f *fakeGoalStore) AddGoalStep(ctx context.Context, step store.GoalStepRecord) (string, error) {
	id := f.newID()
	step.ID = id
	f.steps[step.GoalID] = append(f.steps[step.GoalID], &step)
	return id, nil
}

func (f *fakeGoalStore) GetGoalSteps(ctx context.Context, goalID string) ([]store.GoalStepRecord, error) {
	var out []store.GoalStepRecord
	for _, s := range f.steps[goalID] {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeGoalStore) UpdateGoalStep(ctx context.Context, step store.GoalStepRecord) error {
	for _, s := range f.steps[step.GoalID] {
		if s.ID == step.ID {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("step %s not found", step.ID)
}

func (f *fakeGoalStore) GetNextPendingStep(ctx context.Context, goalID string) (*store.GoalStepRecord, error) {
	var best *store.GoalStepRecord
	for _, s := range f.steps[goalID] {
		if s.Status != store.StepPending {
			continue
		}
		if best == nil || s.StepNumber < best.StepNumber {
			best = s
		}
	}
	if best == nil {
		return nil, nil
	}
	cp := *best
	return &cp, nil
}

func (f *fakeGoalStore) UpdateGoalStatus(ctx context.Context, goalID string, status store.GoalStatus) error {
	g, ok := f.goals[goalID]
	if !ok {
		return fmt.Errorf("goal %s not found", goalID)
	}
	g.Status = status
	return nil
}

func (f *fakeGoalStore) GetGoal(ctx context.Context, goalID string) (*store.GoalRecord, error) {
	g, ok := f.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %s not found", goalID)
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGoalStore) ShiftStepNumbers(ctx context.Context, goalID string, fromNumber int) error {
	for _, s := range f.steps[goalID] {
		if s.Status == store.StepPending && s.StepNumber >= fromNumber {
			s.StepNumber++
		}
	}
	return nil
}

// fakeDispatcher scripts a sequence of DispatchResult slices, one per call.
type fakeDispatcher struct {
	results [][]DispatchResult
	calls   int
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, routing router.RoutingDecision, userMessage string, opts DispatchOptions) []DispatchResult {
	if f.calls >= len(f.results) {
		return nil
	}
	r := f.results[f.calls]
	f.calls++
	return r
}

func TestCreatePlanFallsBackWithNilProvider(t *testing.T) {
	p := NewPlanner(nil, nil)
	plan := p.CreatePlan("land a backend role at Stripe", "")

	assert.Len(t, plan.Steps, 4)
	assert.Equal(t, "scout", plan.Steps[0].AgentName)
}

func TestCreatePlanNormalizesInvalidAgentAndTruncatesTitle(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{
		Text: `{"title":"A very long goal title that definitely exceeds sixty characters in length","steps":[{"title":"Find jobs","description":"d","agent_name":"recruiter"},{"title":"Write letter","description":"d2","agent_name":"forge"}]}`,
	}}}
	p := NewPlanner(provider, nil)

	plan := p.CreatePlan("goal", "")

	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "scout", plan.Steps[0].AgentName)
	assert.LessOrEqual(t, len(plan.Title), 60)
}

func TestCreatePlanFallsBackOnUnparseableResponse(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{Text: "not json"}}}
	p := NewPlanner(provider, nil)

	plan := p.CreatePlan("goal text", "")

	assert.Len(t, plan.Steps, 4)
}

func TestSavePlanPersistsGoalAndOrderedSteps(t *testing.T) {
	goals := newFakeGoalStore()
	p := NewPlanner(nil, goals)
	plan := Plan{Title: "Land a role", Steps: []PlanStep{
		{Title: "Research", AgentName: "scout"},
		{Title: "Analyze", AgentName: "match"},
	}}

	goalID, err := p.SavePlan(context.Background(), 42, plan)

	require.NoError(t, err)
	steps, _ := goals.GetGoalSteps(context.Background(), goalID)
	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].StepNumber)
	assert.Equal(t, 2, steps[1].StepNumber)
}

func TestExecuteNextStepMarksCompletedAndAdvancesGoal(t *testing.T) {
	goals := newFakeGoalStore()
	p := NewPlanner(nil, goals)
	goalID, _ := p.SavePlan(context.Background(), 1, Plan{Title: "Goal", Steps: []PlanStep{{Title: "Step 1", AgentName: "scout"}}})

	dispatcher := &fakeDispatcher{results: [][]DispatchResult{
		{{AgentName: "scout", Output: "found 3 jobs", Success: true}},
	}}

	result, err := p.ExecuteNextStep(context.Background(), goalID, dispatcher, DispatchOptions{})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, store.StepCompleted, result.Status)

	goalRec, _ := goals.GetGoal(context.Background(), goalID)
	assert.Equal(t, store.GoalCompleted, goalRec.Status)
}

func TestExecuteNextStepReturnsNilWhenNoPendingSteps(t *testing.T) {
	goals := newFakeGoalStore()
	p := NewPlanner(nil, goals)
	goalID, _ := goals.CreateGoal(context.Background(), 1, "Empty goal", "", "user")

	result, err := p.ExecuteNextStep(context.Background(), goalID, &fakeDispatcher{}, DispatchOptions{})

	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestAutoExecuteRunsAllStepsAndEmitsCompletion(t *testing.T) {
	goals := newFakeGoalStore()
	p := NewPlanner(nil, goals)
	goalID, _ := p.SavePlan(context.Background(), 1, Plan{Title: "Goal", Steps: []PlanStep{
		{Title: "Step 1", AgentName: "scout"},
		{Title: "Step 2", AgentName: "match"},
	}})

	dispatcher := &fakeDispatcher{results: [][]DispatchResult{
		{{AgentName: "scout", Output: "ok1", Success: true}},
		{{AgentName: "match", Output: "ok2", Success: true}},
	}}

	var events []Event
	p.AutoExecute(context.Background(), goalID, dispatcher, DispatchOptions{}, func(e Event) { events = append(events, e) })

	var types []string
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, EventStepStart)
	assert.Contains(t, types, EventStepComplete)
	assert.Equal(t, EventComplete, events[len(events)-1].Type)
	assert.Equal(t, "completed", events[len(events)-1].Data["status"])
}

func TestAutoExecuteStopsOnCancelCheck(t *testing.T) {
	goals := newFakeGoalStore()
	p := NewPlanner(nil, goals)
	goalID, _ := p.SavePlan(context.Background(), 1, Plan{Title: "Goal", Steps: []PlanStep{{Title: "Step 1", AgentName: "scout"}}})

	dispatcher := &fakeDispatcher{}
	opts := DispatchOptions{CancelCheck: func() bool { return true }}

	var events []Event
	p.AutoExecute(context.Background(), goalID, dispatcher, opts, func(e Event) { events = append(events, e) })

	require.Len(t, events, 1)
	assert.Equal(t, EventComplete, events[0].Type)
	assert.Equal(t, "cancelled", events[0].Data["status"])
	assert.Equal(t, 0, dispatcher.calls)
}

func TestAutoExecuteNotFoundGoal(t *testing.T) {
	goals := newFakeGoalStore()
	p := NewPlanner(nil, goals)

	var events []Event
	p.AutoExecute(context.Background(), "missing", &fakeDispatcher{}, DispatchOptions{}, func(e Event) { events = append(events, e) })

	require.Len(t, events, 1)
	assert.Equal(t, "not_found", events[0].Data["status"])
}

func TestGetPlanStatusComputesProgress(t *testing.T) {
	goals := newFakeGoalStore()
	p := NewPlanner(nil, goals)
	goalID, _ := p.SavePlan(context.Background(), 1, Plan{Title: "Goal", Steps: []PlanStep{
		{Title: "Step 1", AgentName: "scout"},
		{Title: "Step 2", AgentName: "match"},
	}})
	dispatcher := &fakeDispatcher{results: [][]DispatchResult{{{AgentName: "scout", Output: "ok", Success: true}}}}
	_, err := p.ExecuteNextStep(context.Background(), goalID, dispatcher, DispatchOptions{})
	require.NoError(t, err)

	status, err := p.GetPlanStatus(context.Background(), goalID)

	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 2, status.TotalSteps)
	assert.Equal(t, 1, status.CompletedSteps)
	assert.InDelta(t, 0.5, status.Progress, 0.001)
}

func TestGetPlanStatusReturnsNilForMissingGoal(t *testing.T) {
	p := NewPlanner(nil, newFakeGoalStore())

	status, err := p.GetPlanStatus(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, status)
}
