package runtime

import (
	"context"
	"fmt"

	"github.com/kaziai/core/store"
)

// ExpertiseHint is pre-computed tool-optimization guidance injected into an
// agent's system prompt, grounded on orchestrator.py's _build_agent_task
// expertise-injection block ("Inject learned expertise... and RL tool hints
// if available"). The RL feature extractor and online learner that would
// produce it are out of scope; RunOptions.RLHints only carries the already-
// computed string through to buildMessages.
type ExpertiseHint string

// RLHintProvider supplies an ExpertiseHint for one user/agent/intent
// combination. DefaultHintLookback guards against unbounded lookback; a nil
// provider (or a provider returning "") means no hint is injected, which is
// the zero-cost default.
type RLHintProvider interface {
	Hint(ctx context.Context, userID int64, agentName, intent string) ExpertiseHint
}

// DefaultHintLookback bounds how many recent traces TraceExpertiseProvider
// scans per user.
const DefaultHintLookback = 20

// TraceExpertiseProvider assembles an ExpertiseHint from a user's own trace
// history: the agent's recent success rate plus, if one exists, a snippet of
// output the user previously rated positively. It never crosses user
// boundaries, matching memory.Store's per-user isolation.
type TraceExpertiseProvider struct {
	Traces   store.TraceStore
	Lookback int
}

// NewTraceExpertiseProvider builds a TraceExpertiseProvider with the default
// lookback window.
func NewTraceExpertiseProvider(traces store.TraceStore) *TraceExpertiseProvider {
	return &TraceExpertiseProvider{Traces: traces, Lookback: DefaultHintLookback}
}

// Hint implements RLHintProvider. It returns "" whenever there isn't enough
// history to say anything useful, so callers can always inject its result
// unconditionally.
func (p *TraceExpertiseProvider) Hint(ctx context.Context, userID int64, agentName, intent string) ExpertiseHint {
	if p == nil || p.Traces == nil || userID == 0 {
		return ""
	}
	lookback := p.Lookback
	if lookback <= 0 {
		lookback = DefaultHintLookback
	}

	traces, err := p.Traces.GetTraces(ctx, userID, lookback)
	if err != nil {
		return ""
	}

	var total, succeeded int
	var positiveSnippet string
	for _, t := range traces {
		if t.AgentName != agentName {
			continue
		}
		total++
		if t.Status == store.TraceCompleted {
			succeeded++
		}
		if positiveSnippet == "" && t.Feedback != nil && *t.Feedback == "positive" && t.Output != "" {
			positiveSnippet = truncateHint(t.Output, 200)
		}
	}
	if total == 0 {
		return ""
	}

	hint := fmt.Sprintf("This agent has completed %d/%d recent %s tasks for this user.", succeeded, total, agentName)
	if positiveSnippet != "" {
		hint += " A past approach the user rated positively: " + positiveSnippet
	}
	return ExpertiseHint(hint)
}

func truncateHint(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
