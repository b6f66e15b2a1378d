package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFlowStep("complete", "success")
	c.RecordFlowStep("complete", "success")
	c.RecordFlowStep("complete", "denied")
	c.RecordUpstreamItems("tasks", 7)
	c.RecordUpstreamError("RATE_LIMITED")
	c.RecordAggregation("events", 120*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.flowSteps.WithLabelValues("complete", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.flowSteps.WithLabelValues("complete", "denied")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.upstreamItems.WithLabelValues("tasks")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.upstreamErrors.WithLabelValues("RATE_LIMITED")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.aggregation))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordFlowStep("begin", "success")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `mirror_oauth_flow_total{outcome="success",step="begin"} 1`)
}
