// Package evaluator implements the Pipeline Evaluator named in spec.md
// §4.4, grounded on original_source/src/agents/evaluator.py.
package evaluator

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/kaziai/core/llms"
)

// The closed action set, including the unused "negotiate" action kept for
// fidelity with evaluator.py's VALID_ACTIONS — orchestrator.Dispatch has no
// case for it and falls through to its default no-op, same as the original.
const (
	ActionContinue  = "continue"
	ActionLoopBack  = "loop_back"
	ActionSkipNext  = "skip_next"
	ActionStop      = "stop"
	ActionAddAgent  = "add_agent"
	ActionNegotiate = "negotiate"
)

var validActions = map[string]bool{
	ActionContinue: true, ActionLoopBack: true, ActionSkipNext: true,
	ActionStop: true, ActionAddAgent: true, ActionNegotiate: true,
}

var validAgents = map[string]bool{"scout": true, "match": true, "forge": true, "coach": true}

// EvalPrompt is the exact system prompt used to decide the next pipeline
// action, grounded on evaluator.py's EVAL_PROMPT.
const EvalPrompt = `You are a pipeline evaluator for a career AI system. After an agent produces output, decide what should happen next.

AGENTS: scout (job search), match (resume analysis), forge (resume/cover letter writing), coach (interview prep)

DECISION OPTIONS:
- "continue": The output is good, proceed to the next agent in the pipeline.
- "loop_back": Output is poor or missing critical data. Re-run the same or a different agent.
- "skip_next": Output is so strong the next agent is unnecessary.
- "stop": All work is done; no more agents needed.
- "add_agent": Insert an additional agent that wasn't originally planned.

GUIDELINES:
- If search found 0 results → loop_back to scout with broader terms
- If ATS score is above 90% → skip_next (forge is unnecessary)
- If agent output is clearly wrong (wrong company, irrelevant data) → loop_back
- If user only asked for one thing and it's done → stop
- Default to "continue" if unsure
- Be concise in your reason (one sentence max)

Respond with ONLY valid JSON (no markdown):
{"action": "continue|loop_back|skip_next|stop|add_agent", "reason": "brief explanation", "target_agent": "agent name or empty string"}`

// EvalDecision is the evaluator's verdict after one agent runs.
type EvalDecision struct {
	Action      string
	Reason      string
	TargetAgent string
}

// AgentResult is the minimal slice of an agent's output the evaluator needs,
// avoiding a dependency on the orchestrator package.
type AgentResult struct {
	AgentName string
	Output    string
}

// Routing is the minimal slice of a routing decision the evaluator needs.
type Routing struct {
	Intent string
}

// PipelineEvaluator runs after each agent to control pipeline flow.
type PipelineEvaluator struct {
	Provider llms.Provider
}

// NewPipelineEvaluator builds an evaluator bound to provider. A nil
// provider makes every call fall back to ActionContinue, mirroring
// evaluator.py's "no LLM client" branch.
func NewPipelineEvaluator(provider llms.Provider) *PipelineEvaluator {
	return &PipelineEvaluator{Provider: provider}
}

// Evaluate analyzes agentResult's output and decides the pipeline's next
// move, given the agents still left to run and the routing decision that
// started this dispatch.
func (e *PipelineEvaluator) Evaluate(result AgentResult, remainingAgents []string, routing Routing) EvalDecision {
	if e.Provider == nil {
		return EvalDecision{Action: ActionContinue, Reason: "No LLM client"}
	}

	remainingStr := "none"
	if len(remainingAgents) > 0 {
		remainingStr = strings.Join(remainingAgents, ", ")
	}
	outputPreview := "(empty)"
	if result.Output != "" {
		outputPreview = truncate(result.Output, 1500)
	}

	userMsg := "Agent: " + result.AgentName + "\n" +
		"Intent: " + routing.Intent + "\n" +
		"Remaining agents: " + remainingStr + "\n" +
		"Agent output (preview):\n" + outputPreview

	text, _, _, err := e.Provider.Generate([]llms.Message{
		{Role: "system", Content: EvalPrompt},
		{Role: "user", Content: userMsg},
	}, nil)
	if err != nil {
		slog.Warn("evaluator: call failed, falling back to continue", "error", err)
		return EvalDecision{Action: ActionContinue, Reason: "Evaluator fallback"}
	}

	raw := stripCodeFence(strings.TrimSpace(text))
	var data struct {
		Action      string `json:"action"`
		Reason      string `json:"reason"`
		TargetAgent string `json:"target_agent"`
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("evaluator: malformed decision JSON, falling back to continue", "error", err)
		return EvalDecision{Action: ActionContinue, Reason: "Evaluator fallback"}
	}

	return normalize(data.Action, data.Reason, data.TargetAgent)
}

func normalize(action, reason, target string) EvalDecision {
	if !validActions[action] {
		action = ActionContinue
	}
	reason = truncate(reason, 200)
	if target != "" && !validAgents[target] {
		target = ""
	}

	if (action == ActionLoopBack || action == ActionAddAgent) && target == "" {
		action = ActionContinue
		if reason == "" {
			reason = "No target agent specified, continuing"
		}
	}

	return EvalDecision{Action: action, Reason: reason, TargetAgent: target}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
