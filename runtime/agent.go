// Package runtime implements the per-agent ReAct loop named in spec.md
// §4.2, grounded on original_source/src/agents/base_agent.py's run() method
// and the teacher's agent/agent.go structure (services bundle, streaming
// thought callback).
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/kaziai/core/llms"
	"github.com/kaziai/core/store"
	"github.com/kaziai/core/toolkit"
)

// DefaultMaxSteps is the ReAct loop bound, overridable via
// internal/config.OrchestratorConfig.MaxSteps / AGENT_MAX_STEPS.
const DefaultMaxSteps = 15

// DefaultMaxRetries is how many additional attempts the retry wrapper makes
// on a failed tool execution, beyond the initial call.
const DefaultMaxRetries = 2

// selfCorrectionPrompt is appended to every agent's system prompt verbatim,
// grounded on base_agent.py's SELF_CORRECTION_PROMPT.
const selfCorrectionPrompt = `
SELF-CORRECTION RULES:
- If a tool call fails, analyze the error and try alternative parameters.
- If search returns no results, broaden your search terms or try synonyms.
- Never give up after a single failure — try at least one alternative approach.
- If stuck after retries, provide your best analysis with what you have.
- Always explain what you tried if something didn't work.`

// Spec describes one concrete agent variant (scout, match, forge, coach):
// identity plus the system prompt template, which must contain the literal
// placeholder "{{tool_descriptions}}" where the registered tool list is
// substituted in.
type Spec struct {
	Name                 string
	Role                 string
	SystemPromptTemplate string
}

// Config bounds one agent's ReAct loop.
type Config struct {
	MaxSteps   int
	MaxRetries int
}

// SetDefaults fills unset bounds with spec.md §4.2's defaults.
func (c *Config) SetDefaults() {
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
}

// Bus is the subset of bus.MessageBus the agent needs, narrowed to an
// interface so runtime never has to import bus for anything but this call.
type Bus interface {
	ContextFor(receiver string) string
}

// RunOptions carries the per-run collaborators named in spec.md §4.2's ReAct
// loop signature.
type RunOptions struct {
	// TraceID, if non-empty, enables best-effort trace-step persistence.
	TraceID string
	// UserID/ConversationID are only used to finalize the trace.
	UserID         int64
	ConversationID *int64
	Intent         string
	Bus            Bus
	CancelCheck    func() bool
	OnThought      func(thought, toolName string)
	RLHints        string
}

// Agent is one polymorphic reasoning agent (spec.md §4.2's "Agent
// contract"): identical run loop across variants, differing only in name,
// role, system prompt, and registered tool subset.
type Agent struct {
	spec     Spec
	registry *toolkit.Registry
	provider llms.Provider
	traces   store.TraceStore
	cfg      Config
	tokens   *TokenCounter
}

// NewAgent builds a concrete agent. traces may be nil, in which case trace
// persistence is skipped entirely regardless of RunOptions.TraceID.
func NewAgent(spec Spec, registry *toolkit.Registry, provider llms.Provider, traces store.TraceStore, cfg Config) *Agent {
	cfg.SetDefaults()
	return &Agent{
		spec:     spec,
		registry: registry,
		provider: provider,
		traces:   traces,
		cfg:      cfg,
		tokens:   NewTokenCounter(),
	}
}

// Name returns the agent's identifier (e.g. "scout").
func (a *Agent) Name() string { return a.spec.Name }

// Run executes the fixed ReAct loop on task and returns its final answer
// text (either the FINAL_ANSWER payload, a cancellation summary, an
// LLM-failure summary, or the full history summary on step exhaustion). The
// text is always populated regardless of outcome, matching base_agent.py's
// contract of always returning something usable; err is nil only on a
// FINAL_ANSWER, and is an *AgentError wrapping ErrCancelled,
// ErrMaxStepsExceeded (spec.md §7's taxonomy, errors.Is-comparable), or the
// provider's own error on the other three paths, so callers can distinguish
// "ran out of budget" from "the model actually finished" without parsing the
// summary text.
func (a *Agent) Run(ctx context.Context, task string, opts RunOptions) (string, error) {
	memory := NewAgentMemory()

	busContext := ""
	if opts.Bus != nil {
		busContext = opts.Bus.ContextFor(a.spec.Name)
	}

	totalToolCalls := 0

	for stepNum := 1; stepNum <= a.cfg.MaxSteps; stepNum++ {
		if opts.CancelCheck != nil && opts.CancelCheck() {
			summary := fmt.Sprintf("(cancelled after %d steps) %s", stepNum-1, memory.HistorySummary())
			a.completeTrace(ctx, opts, store.TraceCancelled, summary, stepNum-1, totalToolCalls)
			return summary, newAgentError(a.spec.Name, "Run", "cancelled", ErrCancelled)
		}

		messages := a.buildMessages(task, busContext, opts.RLHints, memory)
		tools := a.toolDefinitions()

		text, toolCalls, tokensUsed, err := a.provider.Generate(messages, tools)
		if err != nil {
			slog.Error("runtime: llm call failed", "agent", a.spec.Name, "step", stepNum, "error", err)
			summary := fmt.Sprintf("(failed at step %d: %v) %s", stepNum, err, memory.HistorySummary())
			a.completeTrace(ctx, opts, store.TraceFailed, summary, stepNum, totalToolCalls)
			return summary, newAgentError(a.spec.Name, "Run", "llm call failed", err)
		}
		if tokensUsed > 0 {
			slog.Debug("runtime: llm call", "agent", a.spec.Name, "step", stepNum, "tokens", tokensUsed)
		}

		if len(toolCalls) > 0 {
			call := toolCalls[0] // single-tool-per-step policy
			var args map[string]interface{}
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				args = map[string]interface{}{}
			}
			thought := text
			if thought == "" {
				thought = "Using " + call.Name
			}

			result := a.executeWithRetry(ctx, call.Name, args)
			success := result.Succeeded()
			observationBytes, _ := json.MarshalIndent(map[string]interface{}(result), "", "  ")
			observation := string(observationBytes)
			totalToolCalls++

			if opts.OnThought != nil {
				opts.OnThought(thought, call.Name)
			}

			memory.AddStep(AgentStep{
				StepNumber:  stepNum,
				Thought:     thought,
				ToolCall:    &ToolResult{ToolName: call.Name, Arguments: args, Result: result},
				Observation: observation,
			})

			a.addTraceStep(ctx, opts.TraceID, store.TraceStepRecord{
				StepNumber:  stepNum,
				Thought:     thought,
				ToolName:    call.Name,
				ToolArgs:    args,
				ToolResult:  map[string]interface{}(result),
				Observation: truncate(observation, 2000),
				Success:     success,
			})
			continue
		}

		content := text
		if idx := strings.Index(content, "FINAL_ANSWER"); idx >= 0 {
			final := strings.TrimSpace(content[idx+len("FINAL_ANSWER"):])
			a.completeTrace(ctx, opts, store.TraceCompleted, final, stepNum, totalToolCalls)
			return final, nil
		}

		memory.AddStep(AgentStep{StepNumber: stepNum, Thought: content})
		a.addTraceStep(ctx, opts.TraceID, store.TraceStepRecord{StepNumber: stepNum, Thought: content})
	}

	summary := memory.HistorySummary()
	a.completeTrace(ctx, opts, store.TraceMaxSteps, summary, a.cfg.MaxSteps, totalToolCalls)
	return summary, newAgentError(a.spec.Name, "Run", "max steps exceeded", ErrMaxStepsExceeded)
}

// executeWithRetry runs one tool call, retrying up to cfg.MaxRetries
// additional times as long as the result reports failure, per spec.md
// §4.2's "retry wrapper". Only tool execution is retried, never the LLM
// call itself.
func (a *Agent) executeWithRetry(ctx context.Context, name string, args map[string]interface{}) toolkit.Result {
	result := a.executeOnce(ctx, name, args)
	if result.Succeeded() {
		return result
	}
	for attempt := 1; attempt <= a.cfg.MaxRetries; attempt++ {
		slog.Warn("runtime: retrying tool", "agent", a.spec.Name, "tool", name, "attempt", attempt)
		result = a.executeOnce(ctx, name, args)
		if result.Succeeded() {
			return result
		}
	}
	return result
}

func (a *Agent) executeOnce(ctx context.Context, name string, args map[string]interface{}) toolkit.Result {
	tool, ok := a.registry.Get(name)
	if !ok {
		return toolkit.Fail("Unknown tool: " + name)
	}
	result, err := tool.Execute(ctx, args)
	if err != nil {
		return toolkit.Fail("Tool failed: " + err.Error())
	}
	return result
}

func (a *Agent) buildMessages(task, busContext, rlHints string, memory *AgentMemory) []llms.Message {
	prompt := strings.Replace(a.spec.SystemPromptTemplate, "{{tool_descriptions}}", a.toolDescriptions(), 1)
	prompt += selfCorrectionPrompt
	if rlHints != "" {
		prompt += "\n\nTOOL OPTIMIZATION HINTS:\n" + rlHints
	}

	userContent := task
	if busContext != "" {
		userContent = task + "\n" + busContext
	}

	messages := []llms.Message{
		{Role: "system", Content: prompt},
		{Role: "user", Content: userContent},
	}

	for _, step := range memory.Steps() {
		messages = append(messages, llms.Message{Role: "assistant", Content: "Thought: " + step.Thought})
		if step.ToolCall != nil {
			callID := "call_" + strconv.Itoa(step.StepNumber)
			argsJSON, _ := json.Marshal(step.ToolCall.Arguments)
			messages = append(messages, llms.Message{
				Role: "assistant",
				ToolCalls: []llms.ToolCall{{
					ID:        callID,
					Name:      step.ToolCall.ToolName,
					Arguments: string(argsJSON),
				}},
			})
			resultJSON, _ := json.Marshal(step.ToolCall.Result)
			messages = append(messages, llms.Message{
				Role:       "tool",
				ToolCallID: callID,
				Content:    string(resultJSON),
			})
		}
	}

	return messages
}

func (a *Agent) toolDescriptions() string {
	var out strings.Builder
	for i, info := range a.registry.Infos() {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(fmt.Sprintf("- **%s**: %s", info.Name, info.Description))
	}
	return out.String()
}

func (a *Agent) toolDefinitions() []llms.ToolDefinition {
	infos := a.registry.Infos()
	out := make([]llms.ToolDefinition, 0, len(infos))
	for _, info := range infos {
		out = append(out, llms.ToolDefinition{Name: info.Name, Description: info.Description, Parameters: info.Parameters})
	}
	return out
}

func (a *Agent) addTraceStep(ctx context.Context, traceID string, step store.TraceStepRecord) {
	if a.traces == nil || traceID == "" {
		return
	}
	step.TraceID = traceID
	if err := a.traces.AddTraceStep(ctx, step); err != nil {
		slog.Warn("runtime: trace step persistence failed", "agent", a.spec.Name, "error", err)
	}
}

func (a *Agent) completeTrace(ctx context.Context, opts RunOptions, status store.TraceStatus, output string, stepCount, toolCount int) {
	if a.traces == nil || opts.TraceID == "" {
		return
	}
	if err := a.traces.CompleteTrace(ctx, opts.TraceID, status, truncate(output, 4000), stepCount, toolCount); err != nil {
		slog.Warn("runtime: trace completion failed", "agent", a.spec.Name, "error", err)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
