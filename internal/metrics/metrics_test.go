package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metricLoop:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metricLoop
				}
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue()
			}
		}
	}
	return 0
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("forecast", "linear", OutcomeSuccess, 5*time.Millisecond)
	m.ObserveRequest("forecast", "linear", OutcomeSuccess, 2*time.Millisecond)
	m.ObserveRequest("forecast", "adaptive", OutcomeValidationError, time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m, "finsight_forecast_requests_total",
		map[string]string{"operation": "forecast", "method": "linear", "outcome": OutcomeSuccess}))
	assert.Equal(t, 1.0, counterValue(t, m, "finsight_forecast_requests_total",
		map[string]string{"method": "adaptive", "outcome": OutcomeValidationError}))
}

func TestAddOutliers(t *testing.T) {
	m := New()
	m.AddOutliers(3)
	m.AddOutliers(0)
	m.AddOutliers(-1)

	assert.Equal(t, 3.0, counterValue(t, m, "finsight_forecast_outliers_replaced_total", nil))
}

func TestJobStarted(t *testing.T) {
	m := New()
	done := m.JobStarted()
	assert.Equal(t, 1.0, counterValue(t, m, "finsight_jobs_in_flight", nil))

	done("completed")
	assert.Equal(t, 0.0, counterValue(t, m, "finsight_jobs_in_flight", nil))
	assert.Equal(t, 1.0, counterValue(t, m, "finsight_jobs_processed_total", map[string]string{"status": "completed"}))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveConfidence("linear", []float64{0.5, 0.9})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "finsight_forecast_prediction_confidence_count"))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}
