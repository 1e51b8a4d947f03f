package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaziai/core/llms"
)

func TestEvaluateReturnsContinueWithNilProvider(t *testing.T) {
	decision := NewPipelineEvaluator(nil).Evaluate(AgentResult{AgentName: "scout"}, nil, Routing{Intent: "job_search"})
	assert.Equal(t, ActionContinue, decision.Action)
}

func TestEvaluateParsesLoopBackWithTarget(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{
		Text: `{"action":"loop_back","reason":"no results found","target_agent":"scout"}`,
	}}}

	decision := NewPipelineEvaluator(provider).Evaluate(AgentResult{AgentName: "scout", Output: "0 jobs found"}, []string{"match"}, Routing{Intent: "job_search"})

	assert.Equal(t, ActionLoopBack, decision.Action)
	assert.Equal(t, "scout", decision.TargetAgent)
}

func TestEvaluateDemotesLoopBackWithoutTargetToContinue(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{
		Text: `{"action":"loop_back","reason":"bad output","target_agent":""}`,
	}}}

	decision := NewPipelineEvaluator(provider).Evaluate(AgentResult{AgentName: "match"}, nil, Routing{Intent: "analyze_match"})

	assert.Equal(t, ActionContinue, decision.Action)
}

func TestEvaluateFallsBackOnProviderError(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{Err: assert.AnError}}}

	decision := NewPipelineEvaluator(provider).Evaluate(AgentResult{AgentName: "forge"}, nil, Routing{Intent: "write_materials"})

	assert.Equal(t, ActionContinue, decision.Action)
	assert.Equal(t, "Evaluator fallback", decision.Reason)
}

func TestEvaluateRejectsUnknownTargetAgent(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{
		Text: `{"action":"add_agent","reason":"need recruiter","target_agent":"recruiter"}`,
	}}}

	decision := NewPipelineEvaluator(provider).Evaluate(AgentResult{AgentName: "coach"}, nil, Routing{Intent: "interview_prep"})

	assert.Equal(t, ActionContinue, decision.Action)
	assert.Empty(t, decision.TargetAgent)
}
