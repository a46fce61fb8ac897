package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/metrics"
	"github.com/finsightapp/finsight/internal/queue"
	"github.com/finsightapp/finsight/internal/services"
	"github.com/finsightapp/finsight/internal/utils"
)

// Runner executes forecast and validation requests.
// *services.ForecastService implements it.
type Runner interface {
	Forecast(ctx context.Context, req *services.ForecastRequest) (*services.ForecastResponse, error)
	Validate(ctx context.Context, req *services.ValidateRequest) (*services.ValidateResponse, error)
}

// WorkerConfig configures a Worker
type WorkerConfig struct {
	ID             string
	RequestSubject string
	ResultSubject  string
	Codec          Codec
}

// Worker consumes forecast jobs from the queue and publishes their results
type Worker struct {
	cfg     WorkerConfig
	logger  *logging.Logger
	runner  Runner
	queue   queue.Queue
	metrics *metrics.Metrics
	now     func() time.Time

	running   atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64
}

// NewWorker creates a worker. m may be nil.
func NewWorker(cfg WorkerConfig, logger *logging.Logger, runner Runner, q queue.Queue, m *metrics.Metrics) *Worker {
	return &Worker{
		cfg:     cfg,
		logger:  logger.With("worker_id", cfg.ID),
		runner:  runner,
		queue:   q,
		metrics: m,
		now:     time.Now,
	}
}

// Start subscribes to the request subject
func (w *Worker) Start() error {
	if !w.running.CompareAndSwap(false, true) {
		return errors.New("worker already running")
	}
	if err := w.queue.Subscribe(w.cfg.RequestSubject, w.handle); err != nil {
		w.running.Store(false)
		return fmt.Errorf("failed to subscribe to %s: %w", w.cfg.RequestSubject, err)
	}

	w.logger.Info("Forecast worker started",
		"request_subject", w.cfg.RequestSubject,
		"result_subject", w.cfg.ResultSubject,
		"compression", w.cfg.Codec.Algorithm.String())
	return nil
}

// Stop unsubscribes from the request subject
func (w *Worker) Stop() error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}
	err := w.queue.Unsubscribe(w.cfg.RequestSubject)
	w.logger.Info("Forecast worker stopped",
		"processed", w.processed.Load(),
		"failed", w.failed.Load())
	return err
}

// Running reports whether the worker is subscribed
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Stats returns the number of processed and failed jobs
func (w *Worker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

// handle runs one job. Undecodable jobs are dropped; a job whose result
// cannot be published is redelivered.
func (w *Worker) handle(ctx context.Context, data []byte) error {
	job, err := w.cfg.Codec.DecodeJob(data)
	if err != nil {
		w.logger.Warn("Dropping undecodable job", "error", err, "bytes", len(data))
		return queue.Permanent(err)
	}

	ctx = logging.WithWorkerID(logging.WithJobID(ctx, job.ID), w.cfg.ID)
	log := w.logger.WithContext(ctx)

	var finish func(status string)
	if w.metrics != nil {
		finish = w.metrics.JobStarted()
	}

	start := w.now()
	result := w.run(ctx, job)
	result.CompletedAt = w.now()
	result.DurationMs = result.CompletedAt.Sub(start).Milliseconds()

	if finish != nil {
		finish(string(result.Status))
	}
	w.processed.Add(1)
	if result.Status == StatusFailed {
		w.failed.Add(1)
		log.Warn("Forecast job failed", "kind", job.Kind, "code", result.Error.Code, "error", result.Error.Message)
	} else {
		log.Info("Forecast job completed", "kind", job.Kind, "duration_ms", result.DurationMs)
	}

	payload, err := w.cfg.Codec.EncodeResult(result)
	if err != nil {
		log.Error("Failed to encode job result", "error", err)
		return queue.Permanent(err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, utils.JobPublishTimeout)
	defer cancel()
	if err := w.queue.Publish(pubCtx, w.cfg.ResultSubject, payload); err != nil {
		log.Error("Failed to publish job result", "error", err, "subject", w.cfg.ResultSubject)
		return err
	}
	return nil
}

// run executes the job and builds its result
func (w *Worker) run(ctx context.Context, job *ForecastJob) *JobResult {
	result := &JobResult{
		ID:       job.ID,
		Kind:     job.Kind,
		Status:   StatusCompleted,
		WorkerID: w.cfg.ID,
		Metadata: job.Metadata,
	}

	var err error
	switch job.Kind {
	case KindValidate:
		result.Validation, err = w.runner.Validate(ctx, &services.ValidateRequest{SeriesInput: job.Request.SeriesInput})
	default:
		result.Forecast, err = w.runner.Forecast(ctx, &job.Request)
	}

	if err != nil {
		result.Status = StatusFailed
		result.Error = services.FromEngineError(err)
	}
	return result
}
