// Package orchestrator implements the dispatch loop named in spec.md §4.3,
// grounded on original_source/src/agents/orchestrator.py.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/kaziai/core/bus"
	"github.com/kaziai/core/evaluator"
	"github.com/kaziai/core/internal/metrics"
	"github.com/kaziai/core/llms"
	"github.com/kaziai/core/memory"
	"github.com/kaziai/core/negotiation"
	"github.com/kaziai/core/router"
	"github.com/kaziai/core/runtime"
	"github.com/kaziai/core/store"
	"github.com/kaziai/core/toolkit"
)

// AgentResult is the outcome of dispatching a single agent.
type AgentResult struct {
	AgentName string
	Output    string
	Success   bool
	TraceID   string
}

// DispatchOptions carries the per-request collaborators and callbacks named
// in orchestrator.py's dispatch() signature.
type DispatchOptions struct {
	ResumeText     string
	Profile        map[string]interface{}
	UserID         int64
	ConversationID *int64
	CancelCheck    func() bool
	OnAgentStatus  func(agentName, status string)
	OnAgentThought func(agentName, thought, toolName string)
	OnEvaluator    func(decision evaluator.EvalDecision)
}

// Orchestrator coordinates the four specialized agents — scout, match,
// forge, coach — passing context between them via a per-dispatch
// MessageBus, driven by an optional evaluator and, after the pipeline
// completes, an optional negotiation pass over any detected conflicts.
type Orchestrator struct {
	Provider          llms.Provider
	Traces            store.TraceStore
	Memory            *memory.Store                // optional: memory tools + fact extraction
	Evaluator         *evaluator.PipelineEvaluator // optional: pipeline steering
	Negotiations      store.NegotiationStore       // optional: negotiation persistence
	JobSearchEndpoint string
	Config            runtime.Config
	Tracer            oteltrace.Tracer       // optional: per-dispatch/per-agent spans
	Metrics           *metrics.Metrics       // optional: nil is a valid no-op value
	Expertise         runtime.RLHintProvider // optional: injects learned tool-usage hints
}

// NewOrchestrator builds an Orchestrator. provider and traces are required;
// everything else is optional and degrades gracefully when nil.
func NewOrchestrator(provider llms.Provider, traces store.TraceStore) *Orchestrator {
	return &Orchestrator{Provider: provider, Traces: traces}
}

func specFor(agentName string) (runtime.Spec, bool) {
	switch agentName {
	case "scout":
		return runtime.ScoutSpec, true
	case "match":
		return runtime.MatchSpec, true
	case "forge":
		return runtime.ForgeSpec, true
	case "coach":
		return runtime.CoachSpec, true
	default:
		return runtime.Spec{}, false
	}
}

func (o *Orchestrator) registryFor(agentName string) *toolkit.Registry {
	switch agentName {
	case "scout":
		return runtime.NewScoutRegistry(o.JobSearchEndpoint)
	case "match":
		return runtime.NewMatchRegistry()
	case "forge":
		return runtime.NewForgeRegistry()
	case "coach":
		return runtime.NewCoachRegistry()
	default:
		return nil
	}
}

// Dispatch runs routing.Agents in an evaluator-driven loop with structured
// communication via an in-memory MessageBus, then runs conflict detection
// and negotiation over the results, returning one AgentResult per agent
// that actually ran.
func (o *Orchestrator) Dispatch(ctx context.Context, routing router.RoutingDecision, userMessage string, opts DispatchOptions) []AgentResult {
	start := time.Now()
	if o.Tracer != nil {
		var span oteltrace.Span
		ctx, span = o.Tracer.Start(ctx, "orchestrator.dispatch")
		defer span.End()
	}

	var results []AgentResult
	busInstance := bus.New()
	busInstance.Send("user", "orchestrator", bus.MsgRequest, map[string]interface{}{"content": userMessage, "intent": routing.Intent}, "")

	delegationCount := 0
	remaining := append([]string(nil), routing.Agents...)
	maxIterations := len(remaining) + 3
	iteration := 0

	for len(remaining) > 0 && iteration < maxIterations {
		iteration++
		agentName := remaining[0]
		remaining = remaining[1:]

		spec, ok := specFor(agentName)
		if !ok {
			continue
		}

		if opts.CancelCheck != nil && opts.CancelCheck() {
			break
		}

		if opts.OnAgentStatus != nil {
			opts.OnAgentStatus(agentName, "running")
		}

		task := o.buildAgentTask(agentName, userMessage, routing.ExtractedContext, opts.ResumeText, opts.Profile)

		traceID := ""
		if opts.UserID != 0 && o.Traces != nil {
			id, err := o.Traces.CreateTrace(ctx, opts.UserID, opts.ConversationID, agentName, routing.Intent, task)
			if err != nil {
				slog.Warn("orchestrator: trace creation failed", "agent", agentName, "error", err)
			} else {
				traceID = id
			}
		}

		agentRegistry := o.registryFor(agentName)
		o.injectSharedTools(agentRegistry, opts.UserID)
		agentRegistry.Register(toolkit.NewDelegateToAgentTool(&delegationGuard{
			orchestrator: o, bus: busInstance, depth: 0, counter: &delegationCount,
			userID: opts.UserID, cancelCheck: opts.CancelCheck,
		}))

		agent := runtime.NewAgent(spec, agentRegistry, o.Provider, o.Traces, o.Config)

		thoughtCb := func(thought, toolName string) {
			if opts.OnAgentThought != nil {
				opts.OnAgentThought(agentName, thought, toolName)
			}
		}

		var rlHints string
		if o.Expertise != nil {
			rlHints = string(o.Expertise.Hint(ctx, opts.UserID, agentName, routing.Intent))
		}

		result := o.runAgent(ctx, agent, task, traceID, runtime.RunOptions{
			TraceID: traceID, UserID: opts.UserID, ConversationID: opts.ConversationID, Intent: routing.Intent,
			Bus: busInstance, CancelCheck: opts.CancelCheck, OnThought: thoughtCb, RLHints: rlHints,
		})
		results = append(results, result)

		if result.Success {
			busInstance.Send(agentName, "orchestrator", bus.MsgResponse, map[string]interface{}{
				"content": result.Output, "confidence": 0.8, "needs_more_data": false,
			}, traceID)
			o.extractMemories(ctx, opts.UserID, opts.ConversationID, userMessage, result.Output)
		} else {
			busInstance.Send(agentName, "orchestrator", bus.MsgError, map[string]interface{}{"content": result.Output}, traceID)
		}

		if opts.OnAgentStatus != nil {
			status := "complete"
			if !result.Success {
				status = "failed"
			}
			opts.OnAgentStatus(agentName, status)
		}

		if o.Evaluator != nil && result.Success {
			remaining = o.runEvaluator(busInstance, result, remaining, routing, opts)
		}

		remaining = drainDelegations(busInstance, remaining)
	}

	o.runNegotiation(ctx, busInstance, opts)

	outcome := "success"
	for _, r := range results {
		if !r.Success {
			outcome = "partial_failure"
			break
		}
	}
	o.Metrics.ObserveDispatch(routing.Intent, outcome, time.Since(start).Seconds())

	return results
}

func (o *Orchestrator) runAgent(ctx context.Context, agent *runtime.Agent, task, traceID string, runOpts runtime.RunOptions) (result AgentResult) {
	if o.Tracer != nil {
		var span oteltrace.Span
		ctx, span = o.Tracer.Start(ctx, "orchestrator.run_agent."+agent.Name())
		defer span.End()
	}

	defer func() {
		if r := recover(); r != nil {
			result = AgentResult{AgentName: agent.Name(), Output: fmt.Sprintf("Agent failed: %v", r), Success: false, TraceID: traceID}
			if traceID != "" && o.Traces != nil {
				if err := o.Traces.CompleteTrace(ctx, traceID, store.TraceFailed, fmt.Sprintf("%v", r), 0, 0); err != nil {
					slog.Warn("orchestrator: trace completion on panic failed", "error", err)
				}
			}
		}
	}()
	output, err := agent.Run(ctx, task, runOpts)
	if err != nil {
		slog.Warn("orchestrator: agent run ended abnormally", "agent", agent.Name(), "error", err)
	}
	return AgentResult{AgentName: agent.Name(), Output: output, Success: err == nil, TraceID: traceID}
}

func (o *Orchestrator) injectSharedTools(registry *toolkit.Registry, userID int64) {
	if userID == 0 {
		return
	}
	if o.Memory != nil {
		registry.Register(&memory.RecallMemoryTool{Store: o.Memory, UserID: userID})
		registry.Register(&memory.StoreMemoryTool{Store: o.Memory, UserID: userID})
	}
	if o.Traces != nil {
		registry.Register(&memory.RecallPastWorkTool{Traces: o.Traces, UserID: userID})
	}
}

func (o *Orchestrator) extractMemories(ctx context.Context, userID int64, conversationID *int64, userMessage, output string) {
	if o.Memory == nil || userID == 0 {
		return
	}
	facts := memory.ExtractFacts(o.Provider, userMessage, output)
	for _, f := range facts {
		if _, err := o.Memory.Remember(ctx, userID, f.Content, memory.Category(f.Category)); err != nil {
			slog.Warn("orchestrator: memory extraction persistence failed", "error", err)
		}
	}
}

func (o *Orchestrator) runEvaluator(busInstance *bus.MessageBus, result AgentResult, remaining []string, routing router.RoutingDecision, opts DispatchOptions) []string {
	decision := o.Evaluator.Evaluate(
		evaluator.AgentResult{AgentName: result.AgentName, Output: result.Output},
		remaining,
		evaluator.Routing{Intent: routing.Intent},
	)

	busInstance.Send("evaluator", "orchestrator", bus.MsgObservation, map[string]interface{}{
		"content": fmt.Sprintf("[%s] %s", decision.Action, decision.Reason),
		"action":  decision.Action, "target": decision.TargetAgent,
	}, "")

	if opts.OnEvaluator != nil {
		opts.OnEvaluator(decision)
	}

	switch decision.Action {
	case evaluator.ActionStop:
		return nil
	case evaluator.ActionSkipNext:
		if len(remaining) > 0 {
			skipped := remaining[0]
			remaining = remaining[1:]
			busInstance.Send("evaluator", "orchestrator", bus.MsgObservation, map[string]interface{}{
				"content": fmt.Sprintf("Skipped %s: %s", skipped, decision.Reason),
			}, "")
		}
	case evaluator.ActionLoopBack:
		if decision.TargetAgent != "" {
			remaining = append([]string{decision.TargetAgent}, remaining...)
		}
	case evaluator.ActionAddAgent:
		if decision.TargetAgent != "" && !contains(remaining, decision.TargetAgent) {
			remaining = append(remaining, decision.TargetAgent)
		}
	}
	return remaining
}

func drainDelegations(busInstance *bus.MessageBus, remaining []string) []string {
	for _, deleg := range busInstance.Delegations() {
		target, _ := deleg.Payload["target_agent"].(string)
		if target == "" {
			continue
		}
		if _, ok := specFor(target); !ok {
			continue
		}
		if !contains(remaining, target) {
			remaining = append([]string{target}, remaining...)
		}
	}
	return remaining
}

func (o *Orchestrator) runNegotiation(ctx context.Context, busInstance *bus.MessageBus, opts DispatchOptions) {
	conflicts := negotiation.ConflictDetector{}.DetectConflicts(busInstance)
	if len(conflicts) == 0 {
		return
	}

	conflict := conflicts[0] // handle first conflict only
	session := negotiation.NewNegotiationSession(conflict, busInstance, o.Provider, o.Negotiations, opts.ConversationID)
	consensus := session.Run(ctx, nil)

	busInstance.Send("negotiator", "orchestrator", bus.MsgConsensus, map[string]interface{}{
		"content": consensus.Position, "reached": consensus.Reached, "confidence": consensus.Confidence,
		"dissenting_views": consensus.DissentingViews, "rounds_taken": consensus.RoundsTaken,
	}, "")

	o.Metrics.ObserveNegotiation(consensus.Reached, consensus.RoundsTaken)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
