package negotiation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaziai/core/bus"
	"github.com/kaziai/core/llms"
)

func TestDetectConflictsFlagsConfidenceDivergence(t *testing.T) {
	b := bus.New()
	b.Send("scout", "orchestrator", bus.MsgResponse, map[string]interface{}{"content": "great fit", "confidence": 0.9}, "")
	b.Send("match", "orchestrator", bus.MsgResponse, map[string]interface{}{"content": "risky fit", "confidence": 0.4}, "")

	conflicts := ConflictDetector{}.DetectConflicts(b)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "confidence_divergence", conflicts[0].Topic)
}

func TestDetectConflictsFlagsSentimentContradiction(t *testing.T) {
	b := bus.New()
	b.Send("scout", "orchestrator", bus.MsgResponse, map[string]interface{}{
		"content": "excellent strong great perfect match", "confidence": 0.7,
	}, "")
	b.Send("match", "orchestrator", bus.MsgResponse, map[string]interface{}{
		"content": "poor weak bad avoid this", "confidence": 0.6,
	}, "")

	conflicts := ConflictDetector{}.DetectConflicts(b)

	require.Len(t, conflicts, 1)
	assert.Equal(t, "sentiment_contradiction", conflicts[0].Topic)
}

func TestDetectConflictsNoneWithFewerThanTwoResponses(t *testing.T) {
	b := bus.New()
	b.Send("scout", "orchestrator", bus.MsgResponse, map[string]interface{}{"content": "ok", "confidence": 0.5}, "")

	assert.Empty(t, ConflictDetector{}.DetectConflicts(b))
}

func TestRunReachesConsensusWhenAllConcede(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{
		{Text: `{"response_type":"concede","position":"agree with match","evidence":"","confidence":0.6}`},
		{Text: `{"response_type":"concede","position":"agree with scout","evidence":"","confidence":0.8}`},
	}}

	b := bus.New()
	b.Send("scout", "orchestrator", bus.MsgResponse, map[string]interface{}{"content": "strong candidate", "confidence": 0.9}, "")
	b.Send("match", "orchestrator", bus.MsgResponse, map[string]interface{}{"content": "weak candidate", "confidence": 0.3}, "")

	conflict := Conflict{Agents: []string{"scout", "match"}, Topic: "confidence_divergence", Details: "disagreement"}
	session := NewNegotiationSession(conflict, b, provider, nil, nil)

	result := session.Run(context.Background(), nil)

	assert.True(t, result.Reached)
	assert.Equal(t, 1, result.RoundsTaken)
}

func TestRunReachesConsensusOnConfidenceConvergence(t *testing.T) {
	provider := &llms.FakeProvider{Responses: []llms.FakeResponse{
		{Text: `{"response_type":"position","position":"strong match","evidence":"e","confidence":0.7}`},
		{Text: `{"response_type":"position","position":"also strong","evidence":"e","confidence":0.75}`},
	}}

	b := bus.New()
	b.Send("scout", "orchestrator", bus.MsgResponse, map[string]interface{}{"content": "strong", "confidence": 0.9}, "")
	b.Send("match", "orchestrator", bus.MsgResponse, map[string]interface{}{"content": "weak", "confidence": 0.3}, "")

	conflict := Conflict{Agents: []string{"scout", "match"}, Topic: "confidence_divergence", Details: "disagreement"}
	session := NewNegotiationSession(conflict, b, provider, nil, nil)

	result := session.Run(context.Background(), nil)

	assert.True(t, result.Reached)
}

func TestRunSkipsWithoutProvider(t *testing.T) {
	b := bus.New()
	conflict := Conflict{Agents: []string{"scout", "match"}}
	session := NewNegotiationSession(conflict, b, nil, nil, nil)

	result := session.Run(context.Background(), nil)

	assert.False(t, result.Reached)
	assert.Contains(t, result.Position, "skipped")
}
