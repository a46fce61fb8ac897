package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightapp/finsight/internal/analytics/forecast"
	"github.com/finsightapp/finsight/internal/compression"
	"github.com/finsightapp/finsight/internal/config"
	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/metrics"
	"github.com/finsightapp/finsight/internal/queue"
	"github.com/finsightapp/finsight/internal/services"
)

const (
	testRequests = "finsight.test.requests"
	testResults  = "finsight.test.results"
)

var testAnchor = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	queue     queue.Queue
	worker    *Worker
	submitter *Submitter
	codec     Codec
	metrics   *metrics.Metrics

	mu      sync.Mutex
	results map[string]*JobResult
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	q, err := queue.NewQueue(config.QueueConfig{Type: "memory"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })

	codec, err := NewCodec("snappy")
	require.NoError(t, err)

	engine := forecast.NewEngine(forecast.WithClock(func() time.Time { return testAnchor }))
	m := metrics.New()
	svc := services.NewForecastService(logging.NewNop(), engine, config.DefaultConfig().Forecast, m)

	h := &harness{
		queue:   q,
		codec:   codec,
		metrics: m,
		results: make(map[string]*JobResult),
		worker: NewWorker(WorkerConfig{
			ID:             "worker-1",
			RequestSubject: testRequests,
			ResultSubject:  testResults,
			Codec:          codec,
		}, logging.NewNop(), svc, q, m),
		submitter: NewSubmitter(q, testRequests, codec),
	}

	require.NoError(t, q.Subscribe(testResults, func(_ context.Context, data []byte) error {
		result, err := codec.DecodeResult(data)
		if err != nil {
			return queue.Permanent(err)
		}
		h.mu.Lock()
		h.results[result.ID] = result
		h.mu.Unlock()
		return nil
	}))
	require.NoError(t, h.worker.Start())
	t.Cleanup(func() { _ = h.worker.Stop() })
	return h
}

func (h *harness) waitResult(t *testing.T, id string) *JobResult {
	t.Helper()
	var result *JobResult
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		result = h.results[id]
		return result != nil
	}, 5*time.Second, 10*time.Millisecond, "no result for job %s", id)
	return result
}

func increasing(n int) []interface{} {
	values := make([]interface{}, n)
	for i := range values {
		values[i] = float64(100 + 10*i)
	}
	return values
}

func TestWorker_ForecastJob(t *testing.T) {
	h := newHarness(t)

	id, err := h.submitter.Submit(context.Background(), KindForecast, services.ForecastRequest{
		SeriesInput: services.SeriesInput{Values: increasing(24)},
		Method:      "linear",
		Periods:     3,
	}, map[string]string{"tenant": "acme"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	result := h.waitResult(t, id)
	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, KindForecast, result.Kind)
	assert.Equal(t, "worker-1", result.WorkerID)
	assert.Equal(t, "acme", result.Metadata["tenant"])
	assert.Nil(t, result.Error)
	require.NotNil(t, result.Forecast)
	assert.Equal(t, forecast.MethodLinear, result.Forecast.Method)
	assert.Len(t, result.Forecast.Predictions, 3)

	processed, failed := h.worker.Stats()
	assert.Equal(t, int64(1), processed)
	assert.Equal(t, int64(0), failed)
}

func TestWorker_ValidateJob(t *testing.T) {
	h := newHarness(t)

	id, err := h.submitter.Submit(context.Background(), KindValidate, services.ForecastRequest{
		SeriesInput: services.SeriesInput{Values: increasing(30)},
	}, nil)
	require.NoError(t, err)

	result := h.waitResult(t, id)
	assert.Equal(t, StatusCompleted, result.Status)
	require.NotNil(t, result.Validation)
	assert.Nil(t, result.Forecast)
	assert.Equal(t, 30, result.Validation.DataPoints)
}

func TestWorker_FailedJobPublishesError(t *testing.T) {
	h := newHarness(t)

	id, err := h.submitter.Submit(context.Background(), KindForecast, services.ForecastRequest{
		SeriesInput: services.SeriesInput{Values: []interface{}{5.0, 6.0}},
	}, nil)
	require.NoError(t, err)

	result := h.waitResult(t, id)
	assert.Equal(t, StatusFailed, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, services.CodeInsufficientData, result.Error.Code)

	_, failed := h.worker.Stats()
	assert.Equal(t, int64(1), failed)
}

func TestWorker_DropsUndecodableJobs(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.queue.Publish(context.Background(), testRequests, []byte{0x2a, 0x00}))
	id, err := h.submitter.Submit(context.Background(), KindForecast, services.ForecastRequest{
		SeriesInput: services.SeriesInput{Values: increasing(12)},
	}, nil)
	require.NoError(t, err)

	h.waitResult(t, id)
	processed, _ := h.worker.Stats()
	assert.Equal(t, int64(1), processed)
}

func TestWorker_StartTwice(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.worker.Running())
	assert.Error(t, h.worker.Start())

	require.NoError(t, h.worker.Stop())
	assert.False(t, h.worker.Running())
	assert.NoError(t, h.worker.Stop())
}

func TestSubmitter_SubmitBatch(t *testing.T) {
	h := newHarness(t)

	reqs := []services.ForecastRequest{
		{SeriesInput: services.SeriesInput{Values: increasing(12)}},
		{SeriesInput: services.SeriesInput{Values: increasing(18)}, Periods: 2},
	}
	ids, accepted, err := h.submitter.SubmitBatch(context.Background(), KindForecast, reqs, map[string]string{"batch": "q4"})
	require.NoError(t, err)
	assert.Equal(t, 2, accepted)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])

	for _, id := range ids {
		assert.Equal(t, StatusCompleted, h.waitResult(t, id).Status)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := Codec{Algorithm: compression.Snappy}
	job := &ForecastJob{
		ID:          "job-1",
		Kind:        KindForecast,
		SubmittedAt: testAnchor,
		Request: services.ForecastRequest{
			SeriesInput: services.SeriesInput{Values: increasing(40)},
			Method:      "seasonal",
			Periods:     12,
		},
	}

	data, err := codec.EncodeJob(job)
	require.NoError(t, err)
	assert.Equal(t, byte(compression.Snappy), data[0])

	decoded, err := codec.DecodeJob(data)
	require.NoError(t, err)
	assert.Equal(t, job.ID, decoded.ID)
	assert.Equal(t, "seasonal", decoded.Request.Method)
	assert.Len(t, decoded.Request.Values, 40)
	assert.True(t, job.SubmittedAt.Equal(decoded.SubmittedAt))
}

func TestCodec_DecodeJobErrors(t *testing.T) {
	codec := Codec{Algorithm: compression.None}

	tests := map[string]*ForecastJob{
		"missing id":   {Kind: KindForecast},
		"unknown kind": {ID: "j", Kind: "train"},
	}
	for name, job := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := codec.EncodeJob(job)
			require.NoError(t, err)
			_, err = codec.DecodeJob(data)
			assert.Error(t, err)
		})
	}

	_, err := codec.DecodeJob(nil)
	assert.Error(t, err)
}

func TestCodec_DefaultKind(t *testing.T) {
	codec := Codec{Algorithm: compression.None}
	data, err := codec.EncodeJob(&ForecastJob{ID: "j"})
	require.NoError(t, err)

	job, err := codec.DecodeJob(data)
	require.NoError(t, err)
	assert.Equal(t, KindForecast, job.Kind)
}

func TestNewCodec(t *testing.T) {
	codec, err := NewCodec("none")
	require.NoError(t, err)
	assert.Equal(t, compression.None, codec.Algorithm)

	_, err = NewCodec("brotli")
	assert.Error(t, err)
}
