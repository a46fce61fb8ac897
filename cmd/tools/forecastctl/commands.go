package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/finsightapp/finsight/internal/grpc"
	"github.com/finsightapp/finsight/internal/jobs"
	"github.com/finsightapp/finsight/internal/models"
	"github.com/finsightapp/finsight/internal/queue"
	"github.com/finsightapp/finsight/internal/registry"
	"github.com/finsightapp/finsight/internal/services"
	"github.com/finsightapp/finsight/internal/utils"
)

// forecastFlags are the forecast options shared by forecast and submit
type forecastFlags struct {
	Method        string
	Periods       int
	Confidence    float64
	Seasonality   bool
	LocaleContext bool
	Anchor        string
}

func addForecastFlags(cmd *cobra.Command, f *forecastFlags) {
	cmd.Flags().StringVarP(&f.Method, "method", "m", "", "adaptive, linear, exponential or seasonal (default from config)")
	cmd.Flags().IntVarP(&f.Periods, "periods", "p", 0, "periods to forecast (default from config)")
	cmd.Flags().Float64Var(&f.Confidence, "confidence", 0, "confidence interval probability, e.g. 0.95 (default from config)")
	cmd.Flags().BoolVar(&f.Seasonality, "seasonality", false, "report the seasonality strength")
	cmd.Flags().BoolVar(&f.LocaleContext, "locale-context", false, "add region-specific recommendations")
	cmd.Flags().StringVar(&f.Anchor, "anchor", "", "date the forecast starts after (YYYY-MM-DD, default today)")
}

func (f forecastFlags) request(series services.SeriesInput) (services.ForecastRequest, error) {
	req := services.ForecastRequest{
		SeriesInput:        series,
		Method:             f.Method,
		Periods:            f.Periods,
		Confidence:         f.Confidence,
		IncludeSeasonality: f.Seasonality,
		LocaleContext:      f.LocaleContext,
	}
	if f.Anchor != "" {
		anchor, err := time.Parse("2006-01-02", f.Anchor)
		if err != nil {
			return req, fmt.Errorf("invalid anchor %q: %w", f.Anchor, err)
		}
		req.Anchor = &anchor
	}
	return req, nil
}

// localPrinter returns a printer for the configured locale
func localPrinter(cmd *cobra.Command, opts *rootOptions) (*printer, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	tag, err := cfg.Forecast.GetLocale()
	if err != nil {
		return nil, err
	}
	return newPrinter(cmd.OutOrStdout(), tag), nil
}

func newForecastCmd(opts *rootOptions) *cobra.Command {
	var (
		input string
		tz    string
		flags forecastFlags
	)
	csvOpts := defaultCSVOptions()

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast a CSV history",
		Example: `  # Six monthly periods from a date,value file
  forecastctl forecast -i revenue.csv -p 6

  # Exponential smoothing at 80% confidence, JSON output
  forecastctl forecast -i revenue.csv -m exponential --confidence 0.8 -f json

  # Values only, third column of a headerless file
  forecastctl forecast -i export.csv --no-header --date-column "" --value-column 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := readSeries(cmd, input, csvOpts, tz)
			if err != nil {
				return err
			}
			req, err := flags.request(series)
			if err != nil {
				return err
			}
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}

			resp, err := svc.Forecast(cmd.Context(), &req)
			if err != nil {
				return err
			}
			if opts.Format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			p, err := localPrinter(cmd, opts)
			if err != nil {
				return err
			}
			return p.renderForecast(resp)
		},
	}

	addCSVFlags(cmd, &input, &csvOpts, &tz)
	addForecastFlags(cmd, &flags)
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		input string
		tz    string
	)
	csvOpts := defaultCSVOptions()

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Cross-validate, holdout-test and stability-check a CSV history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := readSeries(cmd, input, csvOpts, tz)
			if err != nil {
				return err
			}
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}

			resp, err := svc.Validate(cmd.Context(), &services.ValidateRequest{SeriesInput: series})
			if err != nil {
				return err
			}
			if opts.Format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			p, err := localPrinter(cmd, opts)
			if err != nil {
				return err
			}
			return p.renderValidation(resp)
		},
	}

	addCSVFlags(cmd, &input, &csvOpts, &tz)
	return cmd
}

func newModelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Describe the forecasting engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}
			metrics := svc.ModelMetrics()
			if opts.Format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), metrics)
			}
			p, err := localPrinter(cmd, opts)
			if err != nil {
				return err
			}
			return p.renderModel(metrics)
		},
	}
}

func newOutliersCmd(opts *rootOptions) *cobra.Command {
	var (
		input      string
		tz         string
		multiplier float64
	)
	csvOpts := defaultCSVOptions()

	cmd := &cobra.Command{
		Use:   "outliers",
		Short: "Find IQR outliers in a CSV history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			series, err := readSeries(cmd, input, csvOpts, tz)
			if err != nil {
				return err
			}
			svc, err := opts.service(cmd)
			if err != nil {
				return err
			}

			resp, err := svc.DetectOutliers(cmd.Context(), &services.OutlierRequest{
				SeriesInput: series,
				Multiplier:  multiplier,
			})
			if err != nil {
				return err
			}
			if opts.Format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			p, err := localPrinter(cmd, opts)
			if err != nil {
				return err
			}
			return p.renderOutliers(resp)
		},
	}

	addCSVFlags(cmd, &input, &csvOpts, &tz)
	cmd.Flags().Float64Var(&multiplier, "multiplier", 0, "IQR fence multiplier (default 1.5)")
	return cmd
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var (
		input    string
		tz       string
		flags    forecastFlags
		validate bool
		wait     time.Duration
		metadata map[string]string
	)
	csvOpts := defaultCSVOptions()

	cmd := &cobra.Command{
		Use:   "submit [file...]",
		Short: "Queue forecast jobs for the workers",
		Example: `  # Fire and forget
  forecastctl submit -i revenue.csv -p 12 --meta tenant=acme

  # Wait up to 30s for the worker's result
  forecastctl submit -i revenue.csv --wait 30s -f json

  # One job per file, published as a batch
  forecastctl submit -p 6 revenue.csv expenses.csv payroll.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := args
			if input != "" || len(files) == 0 {
				files = append([]string{input}, args...)
			}
			if len(files) > 1 && wait > 0 {
				return fmt.Errorf("--wait needs a single input, got %d", len(files))
			}

			cfg, err := opts.config()
			if err != nil {
				return err
			}
			reqs := make([]services.ForecastRequest, len(files))
			for i, file := range files {
				series, err := readSeries(cmd, file, csvOpts, tz)
				if err != nil {
					return err
				}
				if reqs[i], err = flags.request(series); err != nil {
					return err
				}
			}
			kind := jobs.KindForecast
			if validate {
				kind = jobs.KindValidate
			}

			q, err := queue.NewQueue(cfg.Queue)
			if err != nil {
				return err
			}
			defer func() { _ = q.Close() }()

			codec, err := jobs.NewCodec(cfg.Queue.Compression)
			if err != nil {
				return err
			}

			if len(reqs) > 1 {
				return submitBatch(cmd, opts, jobs.NewSubmitter(q, cfg.Queue.RequestSubject, codec),
					kind, files, reqs, metadata)
			}
			return submitJob(cmd, opts, q, codec, cfg.Queue.RequestSubject, cfg.Queue.ResultSubject,
				kind, reqs[0], metadata, wait)
		},
	}

	addCSVFlags(cmd, &input, &csvOpts, &tz)
	addForecastFlags(cmd, &flags)
	cmd.Flags().BoolVar(&validate, "validate", false, "queue a validation job instead of a forecast")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait this long for the result (0 returns after queueing)")
	cmd.Flags().StringToStringVar(&metadata, "meta", nil, "metadata carried to the result (key=value)")
	return cmd
}

// submitJob publishes one job and, when wait > 0, blocks until its result
// arrives on resultSubject
func submitJob(
	cmd *cobra.Command,
	opts *rootOptions,
	q queue.Queue,
	codec jobs.Codec,
	requestSubject, resultSubject string,
	kind jobs.Kind,
	req services.ForecastRequest,
	metadata map[string]string,
	wait time.Duration,
) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var (
		mu      sync.Mutex
		jobID   string
		results = make(chan *jobs.JobResult, 1)
	)
	if wait > 0 {
		err := q.Subscribe(resultSubject, func(_ context.Context, data []byte) error {
			result, err := codec.DecodeResult(data)
			if err != nil {
				return queue.Permanent(err)
			}
			mu.Lock()
			match := result.ID == jobID
			mu.Unlock()
			if match {
				select {
				case results <- result:
				default:
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to results: %w", err)
		}
	}

	pubCtx, cancel := context.WithTimeout(ctx, utils.JobPublishTimeout)
	defer cancel()

	// Hold the lock so a fast result cannot race the ID assignment
	mu.Lock()
	id, err := jobs.NewSubmitter(q, requestSubject, codec).Submit(pubCtx, kind, req, metadata)
	jobID = id
	mu.Unlock()
	if err != nil {
		return err
	}

	if wait <= 0 {
		if opts.Format == formatJSON {
			return writeJSON(out, map[string]string{"job_id": id, "kind": string(kind)})
		}
		fmt.Fprintf(out, "Submitted %s job %s\n", kind, id)
		return nil
	}

	select {
	case result := <-results:
		return renderJobResult(cmd, opts, result)
	case <-time.After(wait):
		return fmt.Errorf("no result for job %s within %s", id, wait)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// batchEntry pairs a queued job with the file it was built from
type batchEntry struct {
	File  string    `json:"file"`
	JobID string    `json:"job_id"`
	Kind  jobs.Kind `json:"kind"`
}

// submitBatch publishes one job per file in a single batch
func submitBatch(
	cmd *cobra.Command,
	opts *rootOptions,
	submitter *jobs.Submitter,
	kind jobs.Kind,
	files []string,
	reqs []services.ForecastRequest,
	metadata map[string]string,
) error {
	pubCtx, cancel := context.WithTimeout(cmd.Context(), utils.JobPublishTimeout)
	defer cancel()

	ids, accepted, err := submitter.SubmitBatch(pubCtx, kind, reqs, metadata)
	if err != nil {
		return err
	}
	if accepted < len(ids) {
		return fmt.Errorf("queue accepted %d of %d jobs", accepted, len(ids))
	}

	entries := make([]batchEntry, len(ids))
	for i, id := range ids {
		entries[i] = batchEntry{File: files[i], JobID: id, Kind: kind}
	}
	out := cmd.OutOrStdout()
	if opts.Format == formatJSON {
		return writeJSON(out, entries)
	}
	for _, e := range entries {
		fmt.Fprintf(out, "Submitted %s job %s for %s\n", e.Kind, e.JobID, e.File)
	}
	return nil
}

func renderJobResult(cmd *cobra.Command, opts *rootOptions, result *jobs.JobResult) error {
	if opts.Format == formatJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	if result.Status == jobs.StatusFailed {
		return fmt.Errorf("job %s failed on %s: [%s] %s",
			result.ID, result.WorkerID, result.Error.Code, result.Error.Message)
	}

	p, err := localPrinter(cmd, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Job %s completed by %s in %dms\n\n", result.ID, result.WorkerID, result.DurationMs)
	switch {
	case result.Forecast != nil:
		return p.renderForecast(result.Forecast)
	case result.Validation != nil:
		return p.renderValidation(result.Validation)
	}
	return nil
}

func newWorkersCmd(opts *rootOptions) *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List forecast workers registered in etcd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			client, err := registry.NewClient(cfg.Registry)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), utils.RegistryOperationTimeout)
			defer cancel()
			workers, err := registry.ListWorkers(ctx, client)
			if err != nil {
				return err
			}

			var health map[string]string
			if probe {
				health = probeWorkers(cmd.Context(), workers)
			}

			if opts.Format == formatJSON {
				if health == nil {
					return writeJSON(cmd.OutOrStdout(), workers)
				}
				type probedWorker struct {
					models.WorkerInfo
					Health string `json:"health"`
				}
				probed := make([]probedWorker, len(workers))
				for i, w := range workers {
					probed[i] = probedWorker{WorkerInfo: w, Health: health[w.ID]}
				}
				return writeJSON(cmd.OutOrStdout(), probed)
			}
			return renderWorkers(cmd.OutOrStdout(), workers, health)
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "check each worker's gRPC health endpoint")
	return cmd
}

// probeWorkers checks every worker concurrently
func probeWorkers(ctx context.Context, workers []models.WorkerInfo) map[string]string {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		health = make(map[string]string, len(workers))
	)
	for _, w := range workers {
		wg.Add(1)
		go func(w models.WorkerInfo) {
			defer wg.Done()
			status, err := grpc.CheckHealth(ctx, w.Address)
			text := status.String()
			if err != nil {
				text = "UNREACHABLE"
			}
			mu.Lock()
			health[w.ID] = text
			mu.Unlock()
		}(w)
	}
	wg.Wait()
	return health
}
