package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextForBannerWithConfidence(t *testing.T) {
	b := New()
	b.Send("scout", "match", MsgResponse, map[string]interface{}{"content": "found 3 jobs", "confidence": 0.9}, "")

	ctx := b.ContextFor("match")
	assert.Contains(t, ctx, "--- SCOUT AGENT RESULTS --- (confidence: 90%)")
	assert.Contains(t, ctx, "found 3 jobs")
}

func TestContextForBannerWithoutConfidence(t *testing.T) {
	b := New()
	b.Send("scout", "match", MsgResponse, map[string]interface{}{"content": "found 3 jobs"}, "")

	ctx := b.ContextFor("match")
	assert.Contains(t, ctx, "--- SCOUT AGENT RESULTS ---\n")
	assert.NotContains(t, ctx, "confidence")
}

func TestContextForExcludesSelfAndIncludesNotes(t *testing.T) {
	b := New()
	b.Send("match", "match", MsgResponse, map[string]interface{}{"content": "self talk"}, "")
	b.Send("evaluator", "match", MsgObservation, map[string]interface{}{"content": "loop back"}, "")

	ctx := b.ContextFor("match")
	assert.NotContains(t, ctx, "self talk")
	assert.Contains(t, ctx, "[Note] loop back")
}

func TestContextForEmptyWhenNoMessages(t *testing.T) {
	b := New()
	assert.Equal(t, "", b.ContextFor("match"))
}

func TestContextForIsPure(t *testing.T) {
	b := New()
	b.Send("scout", "match", MsgResponse, map[string]interface{}{"content": "x", "confidence": 0.5}, "")
	first := b.ContextFor("match")
	second := b.ContextFor("match")
	assert.Equal(t, first, second)
}

func TestSendOrderPreserved(t *testing.T) {
	b := New()
	b.Send("u", "scout", MsgRequest, nil, "")
	b.Send("scout", "u", MsgResponse, nil, "")
	b.Send("evaluator", "u", MsgObservation, nil, "")

	all := b.All()
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].Timestamp)
	assert.Equal(t, int64(2), all[1].Timestamp)
	assert.Equal(t, int64(3), all[2].Timestamp)
}

func TestFiltersByReceiverAndType(t *testing.T) {
	b := New()
	b.Send("u", "scout", MsgRequest, nil, "")
	b.Send("scout", "u", MsgResponse, nil, "")
	b.Send("match", "u", MsgDelegate, nil, "")

	assert.Len(t, b.For("u"), 2)
	assert.Len(t, b.Responses(), 1)
	assert.Len(t, b.Delegations(), 1)
}
