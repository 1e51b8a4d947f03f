// Package router implements the Intent Router named in spec.md §4.1,
// grounded on original_source/src/agents/router.py.
package router

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/kaziai/core/llms"
)

// RouterError is this package's component-scoped error type.
type RouterError struct {
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *RouterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("router[%s]: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("router[%s]: %s", e.Operation, e.Message)
}

func (e *RouterError) Unwrap() error { return e.Err }

// The closed intent set spec.md §3 names.
const (
	IntentJobSearch      = "job_search"
	IntentAnalyzeMatch   = "analyze_match"
	IntentWriteMaterials = "write_materials"
	IntentInterviewPrep  = "interview_prep"
	IntentMultiStep      = "multi_step"
	IntentGeneralChat    = "general_chat"

	// IntentGoalStep is a synthetic intent the goal package sets on the
	// RoutingDecision it builds for each goal step (goal.intentForStep,
	// original_source/src/agents/planner.py); the router itself never
	// produces it.
	IntentGoalStep = "goal_step"
)

var validIntents = map[string]bool{
	IntentJobSearch: true, IntentAnalyzeMatch: true, IntentWriteMaterials: true,
	IntentInterviewPrep: true, IntentMultiStep: true, IntentGeneralChat: true,
}

var validAgents = map[string]bool{"scout": true, "match": true, "forge": true, "coach": true}

var defaultAgentsByIntent = map[string][]string{
	IntentJobSearch:      {"scout"},
	IntentAnalyzeMatch:   {"match"},
	IntentWriteMaterials: {"match", "forge"},
	IntentInterviewPrep:  {"coach"},
	IntentMultiStep:      {"scout", "match", "forge", "coach"},
}

// RoutingPrompt is the exact system prompt used to classify a user message,
// grounded on router.py's ROUTING_PROMPT.
const RoutingPrompt = `You are an intent classifier for KaziAI, a career assistant.
Classify the user's message into exactly one intent and determine which agents to invoke.

INTENTS:
- job_search: User wants to find, search for, or discover jobs/roles/positions
- analyze_match: User wants to compare resume vs job description, check fit, or get ATS score
- write_materials: User wants a cover letter, resume rewrite, or application materials written
- interview_prep: User wants interview preparation, practice questions, or coaching
- multi_step: User wants end-to-end help (e.g. "help me apply to X" or "help me land a role at Y")
- general_chat: Greetings, general career advice, casual conversation, or anything that doesn't need a specialized agent

AGENTS:
- scout: Job discovery and company research
- match: Skills analysis, JD parsing, and ATS scoring
- forge: Cover letter and resume writing
- coach: Interview preparation and coaching

ROUTING RULES:
- job_search → ["scout"]
- analyze_match → ["match"]
- write_materials → ["match", "forge"] (match first for context, then forge writes)
- interview_prep → ["coach"]
- multi_step → ["scout", "match", "forge", "coach"] (or a relevant subset)
- general_chat → [] (no agents needed)

CONTEXT EXTRACTION:
Extract any mentioned: company name, role/title, skills, URL, or job description text.

Respond with ONLY valid JSON (no markdown, no explanation):
{
  "intent": "one of the intents above",
  "agents": ["list", "of", "agent", "names"],
  "extracted_context": {
    "company": "company name or null",
    "role": "role/title or null",
    "skills": ["mentioned", "skills"] or [],
    "url": "any URL mentioned or null",
    "has_jd": true/false
  },
  "reasoning": "one sentence explaining why this classification",
  "needs_resume": true/false,
  "needs_profile": true/false
}`

// RoutingDecision is the result of classifying one user message.
type RoutingDecision struct {
	Intent           string
	Agents           []string
	ExtractedContext map[string]interface{}
	Reasoning        string
	NeedsResume      bool
	NeedsProfile     bool
}

// rawDecision is the loosely-typed shape the LLM actually returns, decoded
// with mapstructure's weak type coercion (e.g. "true" -> true) before being
// normalized into a RoutingDecision.
type rawDecision struct {
	Intent           string                 `mapstructure:"intent"`
	Agents           []string               `mapstructure:"agents"`
	ExtractedContext map[string]interface{} `mapstructure:"extracted_context"`
	Reasoning        string                 `mapstructure:"reasoning"`
	NeedsResume      bool                   `mapstructure:"needs_resume"`
	NeedsProfile     bool                   `mapstructure:"needs_profile"`
}

// fallbackDecision is returned whenever classification fails for any
// reason, matching router.py's broad except-and-fallback behavior.
func fallbackDecision(reason string) RoutingDecision {
	return RoutingDecision{
		Intent:           IntentGeneralChat,
		Agents:           nil,
		ExtractedContext: map[string]interface{}{},
		Reasoning:        reason,
	}
}

// AgentRouter classifies user intent with a single, cheap LLM call.
type AgentRouter struct {
	Provider llms.Provider
}

// NewAgentRouter builds a router bound to provider.
func NewAgentRouter(provider llms.Provider) *AgentRouter {
	return &AgentRouter{Provider: provider}
}

// Route classifies message into a RoutingDecision, given whether the user
// already has a resume/profile on file (folded into the prompt as a hint).
func (r *AgentRouter) Route(message string, hasResume, hasProfile bool) RoutingDecision {
	contextHint := ""
	if hasResume {
		contextHint += " The user has a resume on file."
	}
	if hasProfile {
		contextHint += " The user has a profile set up."
	}

	text, _, _, err := r.Provider.Generate([]llms.Message{
		{Role: "system", Content: RoutingPrompt},
		{Role: "user", Content: message + contextHint},
	}, nil)
	if err != nil {
		slog.Warn("router: classification call failed, falling back to general_chat", "error", err)
		return fallbackDecision("Router fallback due to classification error")
	}

	raw := strings.TrimSpace(text)
	raw = stripCodeFence(raw)

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("router: malformed classification JSON, falling back to general_chat", "error", err)
		return fallbackDecision("Router fallback due to classification error")
	}

	var parsed rawDecision
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{WeaklyTypedInput: true, Result: &parsed})
	if err != nil {
		return fallbackDecision("Router fallback due to classification error")
	}
	if err := decoder.Decode(data); err != nil {
		slog.Warn("router: decode failure, falling back to general_chat", "error", err)
		return fallbackDecision("Router fallback due to classification error")
	}

	return normalize(parsed)
}

func normalize(raw rawDecision) RoutingDecision {
	intent := raw.Intent
	if !validIntents[intent] {
		intent = IntentGeneralChat
	}

	var agents []string
	for _, a := range raw.Agents {
		if validAgents[a] {
			agents = append(agents, a)
		}
	}

	switch {
	case intent == IntentGeneralChat:
		agents = nil
	case len(agents) == 0:
		agents = defaultAgentsByIntent[intent]
	}

	ctx := raw.ExtractedContext
	if ctx == nil {
		ctx = map[string]interface{}{}
	}

	return RoutingDecision{
		Intent:           intent,
		Agents:           agents,
		ExtractedContext: ctx,
		Reasoning:        raw.Reasoning,
		NeedsResume:      raw.NeedsResume,
		NeedsProfile:     raw.NeedsProfile,
	}
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
