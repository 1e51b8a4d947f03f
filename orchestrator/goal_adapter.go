package orchestrator

import (
	"context"

	"github.com/kaziai/core/goal"
	"github.com/kaziai/core/router"
)

// goalDispatcherAdapter narrows Orchestrator.Dispatch's richer native
// signature down to goal.Dispatcher's shape, so the goal package can drive
// step execution without depending on the orchestrator's callback API.
type goalDispatcherAdapter struct {
	o *Orchestrator
}

// AsGoalDispatcher exposes o as a goal.Dispatcher.
func (o *Orchestrator) AsGoalDispatcher() goal.Dispatcher {
	return &goalDispatcherAdapter{o: o}
}

func (a *goalDispatcherAdapter) Dispatch(ctx context.Context, routing router.RoutingDecision, userMessage string, opts goal.DispatchOptions) []goal.DispatchResult {
	results := a.o.Dispatch(ctx, routing, userMessage, DispatchOptions{
		ResumeText:  opts.ResumeText,
		Profile:     opts.Profile,
		UserID:      opts.UserID,
		CancelCheck: opts.CancelCheck,
	})

	out := make([]goal.DispatchResult, 0, len(results))
	for _, r := range results {
		out = append(out, goal.DispatchResult{AgentName: r.AgentName, Output: r.Output, Success: r.Success})
	}
	return out
}
