package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRegistersAllCollectorsAndServesHandler(t *testing.T) {
	m := New()
	m.ObserveDispatch("job_search", "success", 1.2)
	m.IncToolRetry("scout", "job_search")
	m.ObserveNegotiation(true, 2)
	m.IncDelegation("match", "success")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "kaziai_orchestrator_dispatches_total")
	assert.Contains(t, rec.Body.String(), "kaziai_negotiation_sessions_total")
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDispatch("x", "y", 0)
		m.IncToolRetry("a", "b")
		m.ObserveNegotiation(false, 1)
		m.IncDelegation("coach", "failure")
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	assert.Equal(t, 404, rec.Code)
}
