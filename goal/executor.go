package goal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kaziai/core/router"
	"github.com/kaziai/core/store"
)

// DispatchResult is one agent's result from a Dispatcher call, mirroring
// the fields planner.py reads off orchestrator.dispatch()'s return value.
type DispatchResult struct {
	AgentName string
	Output    string
	Success   bool
}

// DispatchOptions carries the per-request context a goal step dispatch
// needs, forwarded to the orchestrator unchanged.
type DispatchOptions struct {
	ResumeText  string
	Profile     map[string]interface{}
	UserID      int64
	CancelCheck func() bool
}

// Dispatcher is the narrow interface goal depends on instead of importing
// orchestrator directly (orchestrator imports goal for its adapter, so the
// reverse import would be a cycle) — mirrors toolkit.DelegationGuard's
// forward reference.
type Dispatcher interface {
	Dispatch(ctx context.Context, routing router.RoutingDecision, userMessage string, opts DispatchOptions) []DispatchResult
}

// StepResult is the outcome of executing a single goal step.
type StepResult struct {
	StepID    string
	StepTitle string
	AgentName string
	Output    string
	Status    store.StepStatus
}

// ExecuteNextStep finds and runs the next pending step of goalID, returning
// nil if there is nothing pending.
func (p *Planner) ExecuteNextStep(ctx context.Context, goalID string, dispatcher Dispatcher, opts DispatchOptions) (*StepResult, error) {
	step, err := p.Goals.GetNextPendingStep(ctx, goalID)
	if err != nil {
		return nil, &GoalError{Operation: "ExecuteNextStep", Message: "lookup failed", Err: err}
	}
	if step == nil {
		return nil, nil
	}

	goalRec, err := p.Goals.GetGoal(ctx, goalID)
	if err != nil || goalRec == nil {
		if err != nil {
			slog.Warn("goal: goal lookup failed", "goal_id", goalID, "error", err)
		}
		return nil, nil
	}

	step.Status = store.StepInProgress
	if err := p.Goals.UpdateGoalStep(ctx, *step); err != nil {
		slog.Warn("goal: step status update failed", "error", err)
	}

	routing := intentForStep(goalRec.Title, step.Title, step.AgentName)
	results := dispatcher.Dispatch(ctx, routing, fmt.Sprintf("%s: %s", goalRec.Title, step.Description), opts)

	output, status := firstResultOrFailure(results)
	step.Status = status
	step.Output = output
	if err := p.Goals.UpdateGoalStep(ctx, *step); err != nil {
		slog.Warn("goal: step completion update failed", "error", err)
	}

	p.completeGoalIfDone(ctx, goalID)

	return &StepResult{StepID: step.ID, StepTitle: step.Title, AgentName: step.AgentName, Output: output, Status: status}, nil
}

func firstResultOrFailure(results []DispatchResult) (output string, status store.StepStatus) {
	if len(results) == 0 {
		return "Agent did not produce output", store.StepFailed
	}
	if results[0].Success {
		return results[0].Output, store.StepCompleted
	}
	return results[0].Output, store.StepFailed
}

func (p *Planner) completeGoalIfDone(ctx context.Context, goalID string) {
	next, err := p.Goals.GetNextPendingStep(ctx, goalID)
	if err != nil || next != nil {
		return
	}
	steps, err := p.Goals.GetGoalSteps(ctx, goalID)
	if err != nil {
		return
	}
	for _, s := range steps {
		if s.Status != store.StepCompleted && s.Status != store.StepSkipped && s.Status != store.StepFailed {
			return
		}
	}
	if err := p.Goals.UpdateGoalStatus(ctx, goalID, store.GoalCompleted); err != nil {
		slog.Warn("goal: status completion failed", "error", err)
	}
}

// GoalStatus is the read model returned by GetPlanStatus.
type GoalStatus struct {
	Goal           store.GoalRecord
	Steps          []store.GoalStepRecord
	TotalSteps     int
	CompletedSteps int
	Progress       float64
}

// GetPlanStatus returns goalID's record plus all steps and a completion
// ratio, or nil if the goal doesn't exist.
func (p *Planner) GetPlanStatus(ctx context.Context, goalID string) (*GoalStatus, error) {
	goalRec, err := p.Goals.GetGoal(ctx, goalID)
	if err != nil {
		return nil, nil
	}
	if goalRec == nil {
		return nil, nil
	}

	steps, err := p.Goals.GetGoalSteps(ctx, goalID)
	if err != nil {
		return nil, &GoalError{Operation: "GetPlanStatus", Message: "steps lookup failed", Err: err}
	}

	completed := 0
	for _, s := range steps {
		if s.Status == store.StepCompleted {
			completed++
		}
	}
	progress := 0.0
	if len(steps) > 0 {
		progress = float64(completed) / float64(len(steps))
	}

	return &GoalStatus{Goal: *goalRec, Steps: steps, TotalSteps: len(steps), CompletedSteps: completed, Progress: progress}, nil
}
