// Package goal implements the Goal Planner & Auto-Executor named in
// spec.md §4.7, grounded on original_source/src/agents/planner.py.
package goal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kaziai/core/llms"
	"github.com/kaziai/core/router"
	"github.com/kaziai/core/store"
)

// GoalError is this package's component-scoped error type.
type GoalError struct {
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *GoalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("goal[%s]: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("goal[%s]: %s", e.Operation, e.Message)
}

func (e *GoalError) Unwrap() error { return e.Err }

var validAgents = map[string]bool{"scout": true, "match": true, "forge": true, "coach": true}

// PlanningPrompt decomposes a career goal into 3-6 agent-assignable steps,
// grounded verbatim on planner.py's PLANNING_PROMPT.
const PlanningPrompt = `You are a career goal planner. Given a user's career goal, decompose it into 3-6 concrete, actionable steps that can each be handled by a specialized AI agent.

AVAILABLE AGENTS:
- scout: Searches for jobs, researches companies, explores the market
- match: Analyzes resume vs job description, scores ATS compatibility, identifies gaps
- forge: Writes cover letters, rewrites resume bullets, creates application materials
- coach: Prepares interview questions, provides talking points, offers strategic advice

RULES:
- Each step should be a clear, specific action (not vague)
- Assign exactly one agent per step
- Order steps logically (research before analysis, analysis before writing)
- 3-6 steps total (fewer for simple goals, more for complex)
- Step titles should be concise (under 60 chars)

Respond with ONLY valid JSON (no markdown):
{
  "title": "Short goal title (under 60 chars)",
  "steps": [
    {"title": "Step title", "description": "What this step does", "agent_name": "scout|match|forge|coach"},
    ...
  ]
}`

// ReplanPrompt decides whether a multi-step plan should continue as-is
// after a step completes, grounded verbatim on planner.py's REPLAN_PROMPT.
const ReplanPrompt = `You are a plan evaluator. After completing a step in a multi-step career plan, decide if the plan should continue as-is or be adjusted.

Given: the step that just completed, its output, and the remaining steps.

DECISIONS:
- "continue": The step succeeded, proceed with the next step as planned.
- "modify_step": The next step needs adjustment based on what we learned. Provide a new description.
- "add_step": Insert an additional step before the next one. Provide title, description, agent_name.
- "skip_next": The next step is no longer needed (already covered by this step's output).

Respond with ONLY valid JSON (no markdown):
{"action": "continue|modify_step|add_step|skip_next", "reason": "brief explanation", "new_title": "", "new_description": "", "agent_name": ""}`

// PlanStep is one proposed step of a decomposed goal, before persistence.
type PlanStep struct {
	Title       string
	Description string
	AgentName   string
}

// Plan is a decomposed goal, before persistence assigns it an ID.
type Plan struct {
	Title string
	Steps []PlanStep
}

// PlanAdjustment is the result of re-evaluating a plan between steps.
type PlanAdjustment struct {
	Action         string // "continue" | "modify_step" | "add_step" | "skip_next"
	Reason         string
	NewTitle       string
	NewDescription string
	AgentName      string
}

// Planner decomposes career goals into trackable, multi-step plans and
// drives their execution against a Dispatcher.
type Planner struct {
	Provider llms.Provider
	Goals    store.GoalStore
}

// NewPlanner builds a Planner. provider may be nil, in which case
// CreatePlan always falls back to the generic 4-step plan.
func NewPlanner(provider llms.Provider, goals store.GoalStore) *Planner {
	return &Planner{Provider: provider, Goals: goals}
}

// CreatePlan decomposes goalText into a Plan via the LLM, falling back to a
// generic research/analyze/write/prep plan on any failure.
func (p *Planner) CreatePlan(goalText, userContext string) Plan {
	if p.Provider == nil {
		return fallbackPlan(goalText)
	}

	userMsg := fmt.Sprintf("Goal: %s\n\n%s", goalText, userContext)
	text, _, _, err := p.Provider.Generate([]llms.Message{
		{Role: "system", Content: PlanningPrompt},
		{Role: "user", Content: userMsg},
	}, nil)
	if err != nil {
		slog.Warn("goal: plan generation failed, using fallback", "error", err)
		return fallbackPlan(goalText)
	}

	raw := stripCodeFence(strings.TrimSpace(text))
	var data struct {
		Title string `json:"title"`
		Steps []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			AgentName   string `json:"agent_name"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Warn("goal: plan response unparseable, using fallback", "error", err)
		return fallbackPlan(goalText)
	}

	return normalizePlan(data.Title, data.Steps, goalText)
}

func normalizePlan(title string, rawSteps []struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AgentName   string `json:"agent_name"`
}, goalText string) Plan {
	if title == "" {
		title = goalText
	}
	title = truncate(title, 60)

	limit := rawSteps
	if len(limit) > 6 {
		limit = limit[:6]
	}

	var steps []PlanStep
	for _, s := range limit {
		if s.Title == "" {
			continue
		}
		agent := s.AgentName
		if !validAgents[agent] {
			agent = "scout"
		}
		steps = append(steps, PlanStep{Title: truncate(s.Title, 60), Description: s.Description, AgentName: agent})
	}

	if len(steps) == 0 {
		steps = fallbackPlan(goalText).Steps
	}

	return Plan{Title: title, Steps: steps}
}

func fallbackPlan(goalText string) Plan {
	return Plan{
		Title: truncate(goalText, 60),
		Steps: []PlanStep{
			{Title: "Research opportunities", Description: "Search for relevant positions: " + goalText, AgentName: "scout"},
			{Title: "Analyze fit", Description: "Compare your background against requirements", AgentName: "match"},
			{Title: "Prepare materials", Description: "Write tailored cover letter and resume", AgentName: "forge"},
			{Title: "Prep for interviews", Description: "Practice likely interview questions", AgentName: "coach"},
		},
	}
}

// SavePlan persists plan as a goal with ordered steps and returns the new
// goal's ID.
func (p *Planner) SavePlan(ctx context.Context, userID int64, plan Plan) (string, error) {
	goalID, err := p.Goals.CreateGoal(ctx, userID, plan.Title, "", "user")
	if err != nil {
		return "", &GoalError{Operation: "SavePlan", Message: "create goal failed", Err: err, Timestamp: time.Now()}
	}

	for i, step := range plan.Steps {
		if _, err := p.Goals.AddGoalStep(ctx, store.GoalStepRecord{
			GoalID: goalID, StepNumber: i + 1, Title: step.Title, Description: step.Description,
			AgentName: step.AgentName, Status: store.StepPending,
		}); err != nil {
			return goalID, &GoalError{Operation: "SavePlan", Message: "add step failed", Err: err, Timestamp: time.Now()}
		}
	}

	return goalID, nil
}

func (p *Planner) reEvaluatePlan(ctx context.Context, completed store.GoalStepRecord, stepOutput string, remaining []store.GoalStepRecord) PlanAdjustment {
	if p.Provider == nil {
		return PlanAdjustment{Action: "continue", Reason: "Re-plan fallback"}
	}

	var summary strings.Builder
	for _, s := range remaining {
		fmt.Fprintf(&summary, "- Step %d: %s (%s)\n", s.StepNumber, s.Title, s.AgentName)
	}

	userMsg := fmt.Sprintf("Completed step: %s (%s)\nOutput preview: %s\n\nRemaining steps:\n%s",
		completed.Title, completed.AgentName, truncate(stepOutput, 800), summary.String())

	text, _, _, err := p.Provider.Generate([]llms.Message{
		{Role: "system", Content: ReplanPrompt},
		{Role: "user", Content: userMsg},
	}, nil)
	if err != nil {
		return PlanAdjustment{Action: "continue", Reason: "Re-plan fallback"}
	}

	raw := stripCodeFence(strings.TrimSpace(text))
	var data struct {
		Action         string `json:"action"`
		Reason         string `json:"reason"`
		NewTitle       string `json:"new_title"`
		NewDescription string `json:"new_description"`
		AgentName      string `json:"agent_name"`
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return PlanAdjustment{Action: "continue", Reason: "Re-plan fallback"}
	}

	validActions := map[string]bool{"continue": true, "modify_step": true, "add_step": true, "skip_next": true}
	action := data.Action
	if !validActions[action] {
		action = "continue"
	}
	agent := data.AgentName
	if agent != "" && !validAgents[agent] {
		agent = ""
	}

	return PlanAdjustment{
		Action: action, Reason: truncate(data.Reason, 200),
		NewTitle: truncate(data.NewTitle, 60), NewDescription: data.NewDescription, AgentName: agent,
	}
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

// intentForStep builds the synthetic single-agent routing decision used to
// dispatch one goal step, mirroring execute_next_step's RoutingDecision
// construction.
func intentForStep(goalTitle, stepTitle, agentName string) router.RoutingDecision {
	return router.RoutingDecision{
		Intent:           router.IntentGoalStep,
		Agents:           []string{agentName},
		ExtractedContext: map[string]interface{}{"role": goalTitle},
		Reasoning:        "Executing goal step: " + stepTitle,
	}
}
