package orchestrator

import (
	"context"
	"fmt"

	"github.com/kaziai/core/runtime"
	"github.com/kaziai/core/toolkit"
)

// delegationGuard implements toolkit.DelegationGuard, bounding one
// dispatch's self-delegation tree: depth-1 sub-agents get memory tools
// only (no delegate tool), and the whole tree shares one counter capped
// at toolkit.MaxDelegations, grounded on delegate_tool.py's set_context
// guards.
type delegationGuard struct {
	orchestrator *Orchestrator
	bus          runtime.Bus
	depth        int
	counter      *int
	userID       int64
	cancelCheck  func() bool
}

func (g *delegationGuard) Depth() int { return g.depth }
func (g *delegationGuard) Count() int { return *g.counter }

func (g *delegationGuard) Delegate(ctx context.Context, targetAgent, task string) (string, error) {
	spec, ok := specFor(targetAgent)
	if !ok {
		return "", fmt.Errorf("orchestrator: unknown agent %q", targetAgent)
	}

	*g.counter++

	registry := g.orchestrator.registryFor(targetAgent)
	g.orchestrator.injectSharedTools(registry, g.userID)

	agent := runtime.NewAgent(spec, registry, g.orchestrator.Provider, g.orchestrator.Traces, g.orchestrator.Config)

	traceID := ""
	if g.userID != 0 && g.orchestrator.Traces != nil {
		id, err := g.orchestrator.Traces.CreateTrace(ctx, g.userID, nil, targetAgent, "delegation", truncate(task, 2000))
		if err == nil {
			traceID = id
		}
	}

	var rlHints string
	if g.orchestrator.Expertise != nil {
		rlHints = string(g.orchestrator.Expertise.Hint(ctx, g.userID, targetAgent, "delegation"))
	}

	result := g.orchestrator.runAgent(ctx, agent, task, traceID, runtime.RunOptions{
		TraceID: traceID, UserID: g.userID, Intent: "delegation",
		Bus: g.bus, CancelCheck: g.cancelCheck, RLHints: rlHints,
	})
	if !result.Success {
		g.orchestrator.Metrics.IncDelegation(targetAgent, "failure")
		return "", fmt.Errorf("delegation to %s failed: %s", targetAgent, truncate(result.Output, 500))
	}
	g.orchestrator.Metrics.IncDelegation(targetAgent, "success")
	return truncate(result.Output, 3000), nil
}

var _ toolkit.DelegationGuard = (*delegationGuard)(nil)
