package goal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kaziai/core/store"
)

// MaxTotalSteps bounds one AutoExecute run, including dynamically inserted
// steps, per planner.py's auto_execute safety cap.
const MaxTotalSteps = 10

// Event is one progress notification emitted during AutoExecute, analogous
// to planner.py's yielded (event_type, event_data) tuples.
type Event struct {
	Type string
	Data map[string]interface{}
}

const (
	EventStepStart    = "goal_step_start"
	EventStepComplete = "goal_step_complete"
	EventReplan       = "goal_replan"
	EventComplete     = "goal_complete"
)

// AutoExecute runs every remaining step of goalID in sequence, re-evaluating
// the plan between steps, and reports progress through onEvent. It returns
// once the goal is exhausted, cancelled, or MaxTotalSteps is reached.
func (p *Planner) AutoExecute(ctx context.Context, goalID string, dispatcher Dispatcher, opts DispatchOptions, onEvent func(Event)) {
	goalRec, err := p.Goals.GetGoal(ctx, goalID)
	if err != nil || goalRec == nil {
		onEvent(Event{Type: EventComplete, Data: map[string]interface{}{"status": "not_found"}})
		return
	}

	for i := 0; i < MaxTotalSteps; i++ {
		if opts.CancelCheck != nil && opts.CancelCheck() {
			onEvent(Event{Type: EventComplete, Data: map[string]interface{}{"status": "cancelled"}})
			return
		}

		step, err := p.Goals.GetNextPendingStep(ctx, goalID)
		if err != nil {
			slog.Warn("goal: auto-execute step lookup failed", "error", err)
			break
		}
		if step == nil {
			break
		}

		onEvent(Event{Type: EventStepStart, Data: map[string]interface{}{
			"step_number": step.StepNumber, "title": step.Title, "agent": step.AgentName,
		}})

		step.Status = store.StepInProgress
		if err := p.Goals.UpdateGoalStep(ctx, *step); err != nil {
			slog.Warn("goal: auto-execute status update failed", "error", err)
		}

		routing := intentForStep(goalRec.Title, step.Title, step.AgentName)
		results := dispatcher.Dispatch(ctx, routing, fmt.Sprintf("%s: %s", goalRec.Title, step.Description), opts)
		output, status := firstResultOrFailure(results)

		step.Status = status
		step.Output = output
		if err := p.Goals.UpdateGoalStep(ctx, *step); err != nil {
			slog.Warn("goal: auto-execute completion update failed", "error", err)
		}

		onEvent(Event{Type: EventStepComplete, Data: map[string]interface{}{
			"step_number": step.StepNumber, "status": string(status), "output_preview": truncate(output, 500),
		}})

		if status == store.StepCompleted {
			p.replanBetweenSteps(ctx, goalID, *step, output, onEvent)
		}
	}

	p.finishAutoExecute(ctx, goalID, onEvent)
}

func (p *Planner) replanBetweenSteps(ctx context.Context, goalID string, completed store.GoalStepRecord, output string, onEvent func(Event)) {
	allSteps, err := p.Goals.GetGoalSteps(ctx, goalID)
	if err != nil {
		return
	}
	var pending []store.GoalStepRecord
	for _, s := range allSteps {
		if s.Status == store.StepPending {
			pending = append(pending, s)
		}
	}
	if len(pending) == 0 {
		return
	}

	adjustment := p.reEvaluatePlan(ctx, completed, output, pending)
	if adjustment.Action == "continue" {
		return
	}

	onEvent(Event{Type: EventReplan, Data: map[string]interface{}{
		"step_number": completed.StepNumber, "agent": completed.AgentName,
		"decision": adjustment.Action, "reason": adjustment.Reason,
	}})

	next := pending[0]
	switch adjustment.Action {
	case "skip_next":
		next.Status = store.StepSkipped
		next.Output = "Skipped: " + adjustment.Reason
		if err := p.Goals.UpdateGoalStep(ctx, next); err != nil {
			slog.Warn("goal: skip_next update failed", "error", err)
		}

	case "modify_step":
		if adjustment.NewDescription != "" {
			next.Description = adjustment.NewDescription
			if err := p.Goals.UpdateGoalStep(ctx, next); err != nil {
				slog.Warn("goal: modify_step update failed", "error", err)
			}
		}

	case "add_step":
		if adjustment.NewTitle != "" && adjustment.AgentName != "" {
			if err := p.Goals.ShiftStepNumbers(ctx, goalID, next.StepNumber); err != nil {
				slog.Warn("goal: add_step shift failed", "error", err)
				return
			}
			if _, err := p.Goals.AddGoalStep(ctx, store.GoalStepRecord{
				GoalID: goalID, StepNumber: next.StepNumber, Title: adjustment.NewTitle,
				Description: adjustment.NewDescription, AgentName: adjustment.AgentName, Status: store.StepPending,
			}); err != nil {
				slog.Warn("goal: add_step insert failed", "error", err)
			}
		}
	}
}

func (p *Planner) finishAutoExecute(ctx context.Context, goalID string, onEvent func(Event)) {
	steps, err := p.Goals.GetGoalSteps(ctx, goalID)
	if err != nil {
		onEvent(Event{Type: EventComplete, Data: map[string]interface{}{"status": "partial"}})
		return
	}

	allDone := true
	for _, s := range steps {
		if s.Status != store.StepCompleted && s.Status != store.StepSkipped && s.Status != store.StepFailed {
			allDone = false
			break
		}
	}

	if allDone {
		if err := p.Goals.UpdateGoalStatus(ctx, goalID, store.GoalCompleted); err != nil {
			slog.Warn("goal: final status update failed", "error", err)
		}
		onEvent(Event{Type: EventComplete, Data: map[string]interface{}{"status": "completed"}})
		return
	}

	onEvent(Event{Type: EventComplete, Data: map[string]interface{}{"status": "partial"}})
}
