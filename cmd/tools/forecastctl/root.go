package main

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/finsightapp/finsight/internal/analytics/forecast"
	"github.com/finsightapp/finsight/internal/config"
	"github.com/finsightapp/finsight/internal/logging"
	"github.com/finsightapp/finsight/internal/services"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	ConfigFile string
	Verbose    bool
	Format     string

	cfg *config.Config
	now func() time.Time
}

// config loads the configuration once. A missing file means defaults.
func (o *rootOptions) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	o.cfg = cfg
	return cfg, nil
}

func (o *rootOptions) logger(stderr io.Writer) *logging.Logger {
	if !o.Verbose {
		return logging.NewNop()
	}
	return logging.NewWithWriter(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}, zerolog.DebugLevel)
}

// service builds an in-process forecast service from the configuration
func (o *rootOptions) service(cmd *cobra.Command) (*services.ForecastService, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	locale, err := cfg.Forecast.GetLocale()
	if err != nil {
		return nil, err
	}

	now := o.now
	if now == nil {
		loc := cfg.Forecast.GetTimezone()
		now = func() time.Time { return time.Now().In(loc) }
	}
	engine := forecast.NewEngine(forecast.WithClock(now), forecast.WithLocale(locale))
	return services.NewForecastService(o.logger(cmd.ErrOrStderr()), engine, cfg.Forecast, nil), nil
}

func (o *rootOptions) validateFormat() error {
	switch o.Format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", o.Format)
	}
}

// newRootCmd assembles the command tree
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "forecastctl",
		Short: "Statistical cash-flow forecasting from the command line",
		Long: `forecastctl forecasts and validates financial time series read from CSV,
submits asynchronous forecast jobs to the worker queue and inspects the
registered forecast workers.`,
		Version:       fmt.Sprintf("%s (%s), engine %s", Version, GitCommit, forecast.EngineVersion),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validateFormat()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./config.yaml, FINSIGHT_* env overrides)")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")
	rootCmd.PersistentFlags().StringVarP(&opts.Format, "format", "f", formatText, "output format (text, json)")

	rootCmd.AddCommand(newForecastCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newModelCmd(opts))
	rootCmd.AddCommand(newOutliersCmd(opts))
	rootCmd.AddCommand(newSubmitCmd(opts))
	rootCmd.AddCommand(newWorkersCmd(opts))

	return rootCmd
}

// addCSVFlags binds the CSV layout flags shared by commands that read a history
func addCSVFlags(cmd *cobra.Command, input *string, opts *csvOptions, tz *string) {
	cmd.Flags().StringVarP(input, "input", "i", "-", "CSV history file (- for stdin)")
	cmd.Flags().StringVar(&opts.DateColumn, "date-column", opts.DateColumn, "date column name or index (empty for values only)")
	cmd.Flags().StringVar(&opts.ValueColumn, "value-column", opts.ValueColumn, "value column name or index")
	cmd.Flags().StringVar(&opts.DateLayout, "date-layout", opts.DateLayout, "Go time layout of the date column")
	cmd.Flags().StringVar(&opts.Delimiter, "delimiter", opts.Delimiter, "field delimiter")
	cmd.Flags().BoolVar(&opts.NoHeader, "no-header", false, "the file has no header row")
	cmd.Flags().StringVar(tz, "timezone", "UTC", "zone of dates without an offset")
	cmd.Flags().StringVar(&opts.Resample, "resample", "", "roll up to daily, weekly, monthly, quarterly or yearly buckets")
	cmd.Flags().StringVar(&opts.Aggregate, "agg", opts.Aggregate, "bucket statistic when resampling (sum, avg, min, max, last, count)")
}

// readSeries loads the CSV history named by input
func readSeries(cmd *cobra.Command, input string, opts csvOptions, tz string) (services.SeriesInput, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return services.SeriesInput{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	opts.Location = loc
	series, err := loadSeriesFile(input, cmd.InOrStdin(), opts)
	if err != nil {
		return services.SeriesInput{}, err
	}
	return resampleSeries(series, opts)
}
