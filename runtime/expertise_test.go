package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaziai/core/store"
)

type fakeExpertiseTraceStore struct {
	store.TraceStore
	traces []store.TraceRecord
}

func (f *fakeExpertiseTraceStore) GetTraces(_ context.Context, _ int64, _ int) ([]store.TraceRecord, error) {
	return f.traces, nil
}

func positiveFeedback() *string {
	s := "positive"
	return &s
}

func TestTraceExpertiseProviderReturnsEmptyWithNoHistory(t *testing.T) {
	p := NewTraceExpertiseProvider(&fakeExpertiseTraceStore{})

	hint := p.Hint(context.Background(), 7, "scout", "job_search")

	assert.Equal(t, ExpertiseHint(""), hint)
}

func TestTraceExpertiseProviderSummarizesSuccessRateAndSnippet(t *testing.T) {
	traces := &fakeExpertiseTraceStore{traces: []store.TraceRecord{
		{AgentName: "scout", Status: store.TraceCompleted, Output: "Found 5 matching roles at Acme.", Feedback: positiveFeedback()},
		{AgentName: "scout", Status: store.TraceFailed},
		{AgentName: "match", Status: store.TraceCompleted},
	}}
	p := NewTraceExpertiseProvider(traces)

	hint := p.Hint(context.Background(), 7, "scout", "job_search")

	assert.Contains(t, string(hint), "1/2")
	assert.Contains(t, string(hint), "Found 5 matching roles at Acme.")
}

func TestTraceExpertiseProviderIsNilSafe(t *testing.T) {
	var p *TraceExpertiseProvider

	assert.Equal(t, ExpertiseHint(""), p.Hint(context.Background(), 7, "scout", "job_search"))
}

func TestTraceExpertiseProviderRequiresUserID(t *testing.T) {
	p := NewTraceExpertiseProvider(&fakeExpertiseTraceStore{traces: []store.TraceRecord{
		{AgentName: "scout", Status: store.TraceCompleted},
	}})

	assert.Equal(t, ExpertiseHint(""), p.Hint(context.Background(), 0, "scout", "job_search"))
}
