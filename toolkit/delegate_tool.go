package toolkit

import (
	"context"
	"fmt"
)

// DelegationRefusedMessage is the exact refusal text surfaced to the caller
// when the global delegation cap is hit, grounded on
// original_source/src/tools/delegate_tool.py.
const DelegationRefusedMessage = "Delegation limit reached (max 5 sub-agent runs per dispatch)"

// MaxDelegations is the global cap on sub-agent dispatches within one
// top-level orchestrator run.
const MaxDelegations = 5

// DelegationGuard is implemented by the orchestrator/runtime layer that owns
// the per-dispatch delegation depth and counter. DelegateToAgentTool depends
// only on this narrow interface so toolkit never imports orchestrator/runtime
// (which themselves depend on toolkit), avoiding an import cycle.
type DelegationGuard interface {
	// Depth returns the current agent's delegation depth: 0 for a top-level
	// agent, 1+ for a sub-agent already running under a delegation.
	Depth() int
	// Count returns how many delegations have run so far in this dispatch.
	Count() int
	// Delegate runs targetAgent on task as a sub-agent and returns its final
	// answer text. It is expected to increment the shared counter itself,
	// only after the tool has confirmed both guards pass.
	Delegate(ctx context.Context, targetAgent, task string) (string, error)
}

// DelegateToAgentArgs is delegate_to_agent's argument shape.
type DelegateToAgentArgs struct {
	TargetAgent string `json:"target_agent" jsonschema:"required,description=Name of the agent to delegate to"`
	Task        string `json:"task" jsonschema:"required,description=Task description for the sub-agent"`
}

// DelegateToAgentTool lets an agent hand off a sub-task to another named
// agent, bounded by delegation depth and a global per-dispatch counter.
// Sub-agents spawned this way are never given this tool themselves (depth
// guard), and the whole tree is capped at MaxDelegations dispatches
// (counter guard), per spec.md §4.3.
type DelegateToAgentTool struct {
	Guard DelegationGuard
}

func NewDelegateToAgentTool(guard DelegationGuard) *DelegateToAgentTool {
	return &DelegateToAgentTool{Guard: guard}
}

func (t *DelegateToAgentTool) Info() Info {
	return Info{
		Name:        "delegate_to_agent",
		Description: "Delegate a sub-task to another named agent.",
		Parameters:  SchemaFor(DelegateToAgentArgs{}),
	}
}

func (t *DelegateToAgentTool) Execute(ctx context.Context, args map[string]interface{}) (Result, error) {
	targetAgent, _ := args["target_agent"].(string)
	task, _ := args["task"].(string)
	if targetAgent == "" || task == "" {
		return Fail("target_agent and task are required"), nil
	}

	if t.Guard.Depth() >= 1 {
		return Fail("sub-agents cannot delegate further"), nil
	}
	if t.Guard.Count() >= MaxDelegations {
		return Fail(DelegationRefusedMessage), nil
	}

	answer, err := t.Guard.Delegate(ctx, targetAgent, task)
	if err != nil {
		return Fail(fmt.Sprintf("delegation failed: %v", err)), nil
	}
	return Ok(map[string]interface{}{"target_agent": targetAgent, "answer": answer}), nil
}
