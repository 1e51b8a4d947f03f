package runtime

import "fmt"

// ToolResult is a record of one tool execution within a ReAct loop,
// grounded on original_source/src/memory.py's ToolResult.
type ToolResult struct {
	ToolName  string
	Arguments map[string]interface{}
	Result    map[string]interface{}
}

// AgentStep is one iteration of the loop: thought, optional action, and the
// observation it produced.
type AgentStep struct {
	StepNumber  int
	Thought     string
	ToolCall    *ToolResult
	Observation string
}

// AgentMemory holds an agent's reasoning history for the duration of one
// run, grounded on original_source/src/memory.py's AgentMemory.
type AgentMemory struct {
	steps []AgentStep
	facts map[string]interface{}
}

// NewAgentMemory returns an empty memory.
func NewAgentMemory() *AgentMemory {
	return &AgentMemory{facts: make(map[string]interface{})}
}

// Steps returns every recorded step, in order.
func (m *AgentMemory) Steps() []AgentStep { return m.steps }

// StepCount returns how many steps have been recorded.
func (m *AgentMemory) StepCount() int { return len(m.steps) }

// AddStep records a completed step.
func (m *AgentMemory) AddStep(step AgentStep) { m.steps = append(m.steps, step) }

// StoreFact records a derived fact that persists for the rest of the run.
func (m *AgentMemory) StoreFact(key string, value interface{}) { m.facts[key] = value }

// Fact retrieves a previously stored fact.
func (m *AgentMemory) Fact(key string) (interface{}, bool) {
	v, ok := m.facts[key]
	return v, ok
}

// Clear resets memory for a new task.
func (m *AgentMemory) Clear() {
	m.steps = nil
	m.facts = make(map[string]interface{})
}

// HistorySummary builds a text summary of every step, injected as the
// agent's final answer when the step bound is exhausted.
func (m *AgentMemory) HistorySummary() string {
	if len(m.steps) == 0 {
		return "No previous steps."
	}

	out := ""
	for _, step := range m.steps {
		out += fmt.Sprintf("Step %d:\n", step.StepNumber)
		out += fmt.Sprintf("  Thought: %s\n", step.Thought)
		if step.ToolCall != nil {
			out += fmt.Sprintf("  Action: %s(%v)\n", step.ToolCall.ToolName, step.ToolCall.Arguments)
			obs := step.Observation
			if len(obs) > 500 {
				obs = obs[:500]
			}
			out += fmt.Sprintf("  Observation: %s\n", obs)
		}
		out += "\n"
	}
	return out
}
