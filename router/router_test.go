package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaziai/core/llms"
)

func TestRouteParsesWellFormedClassification(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{
		Text: `{"intent":"job_search","agents":["scout"],"extracted_context":{"role":"backend engineer"},"reasoning":"wants jobs","needs_resume":true,"needs_profile":false}`,
	}}}

	decision := NewAgentRouter(provider).Route("find me backend jobs", true, false)

	assert.Equal(t, IntentJobSearch, decision.Intent)
	assert.Equal(t, []string{"scout"}, decision.Agents)
	assert.True(t, decision.NeedsResume)
	assert.Equal(t, "backend engineer", decision.ExtractedContext["role"])
}

func TestRouteAppliesDefaultAgentsWhenNoneReturned(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{
		Text: `{"intent":"write_materials","agents":[]}`,
	}}}

	decision := NewAgentRouter(provider).Route("write me a cover letter", false, false)

	assert.Equal(t, []string{"match", "forge"}, decision.Agents)
}

func TestRouteFallsBackOnUnknownIntent(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{
		Text: `{"intent":"do_my_taxes","agents":["scout"]}`,
	}}}

	decision := NewAgentRouter(provider).Route("anything", false, false)

	assert.Equal(t, IntentGeneralChat, decision.Intent)
	assert.Empty(t, decision.Agents)
}

func TestRouteFallsBackOnProviderError(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{Err: assert.AnError}}}

	decision := NewAgentRouter(provider).Route("anything", false, false)

	require.Equal(t, IntentGeneralChat, decision.Intent)
	assert.Contains(t, decision.Reasoning, "fallback")
}

func TestRouteStripsMarkdownCodeFence(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{{
		Text: "```json\n{\"intent\":\"interview_prep\",\"agents\":[\"coach\"]}\n```",
	}}}

	decision := NewAgentRouter(provider).Route("help me prep", false, false)

	assert.Equal(t, IntentInterviewPrep, decision.Intent)
	assert.Equal(t, []string{"coach"}, decision.Agents)
}
