package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/finsightapp/finsight/internal/aggregation"
	"github.com/finsightapp/finsight/internal/analytics"
	"github.com/finsightapp/finsight/internal/services"
	"github.com/finsightapp/finsight/internal/utils"
)

// csvOptions describes how a history file is laid out. Columns are header
// names, or zero-based indexes when the file has no header.
type csvOptions struct {
	DateColumn  string
	ValueColumn string
	DateLayout  string
	Delimiter   string
	NoHeader    bool
	Location    *time.Location

	// Resample rolls observations up to a calendar level before forecasting
	Resample  string
	Aggregate string
}

func defaultCSVOptions() csvOptions {
	return csvOptions{
		DateColumn:  "date",
		ValueColumn: "value",
		DateLayout:  "2006-01-02",
		Delimiter:   ",",
		Location:    time.UTC,
		Aggregate:   string(aggregation.FunctionSum),
	}
}

// loadSeriesFile reads a CSV history from path, or stdin for "-"
func loadSeriesFile(path string, stdin io.Reader, opts csvOptions) (services.SeriesInput, error) {
	if path == "" || path == "-" {
		return loadSeriesCSV(stdin, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return services.SeriesInput{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return loadSeriesCSV(f, opts)
}

// loadSeriesCSV parses a history with one observation per row. Blank value
// cells are rejected rather than skipped; the engine needs a gap-free series.
// An empty DateColumn loads values only.
func loadSeriesCSV(r io.Reader, opts csvOptions) (services.SeriesInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'
	if opts.Delimiter != "" {
		d := []rune(opts.Delimiter)
		if len(d) != 1 {
			return services.SeriesInput{}, fmt.Errorf("delimiter must be a single character, got %q", opts.Delimiter)
		}
		reader.Comma = d[0]
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	var (
		input    services.SeriesInput
		valueIdx = -1
		dateIdx  = -1
		line     int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return services.SeriesInput{}, fmt.Errorf("failed to read csv: %w", err)
		}
		line++

		if valueIdx < 0 {
			var header []string
			if !opts.NoHeader {
				header = record
			}
			if valueIdx, err = columnIndex(header, opts.ValueColumn, len(record)); err != nil {
				return services.SeriesInput{}, fmt.Errorf("value column: %w", err)
			}
			if opts.DateColumn != "" {
				if dateIdx, err = columnIndex(header, opts.DateColumn, len(record)); err != nil {
					return services.SeriesInput{}, fmt.Errorf("date column: %w", err)
				}
			}
			if !opts.NoHeader {
				continue
			}
		}

		if valueIdx >= len(record) || (dateIdx >= 0 && dateIdx >= len(record)) {
			return services.SeriesInput{}, fmt.Errorf("line %d: expected at least %d columns, got %d",
				line, max(valueIdx, dateIdx)+1, len(record))
		}

		value, ok := utils.ToFloat64(record[valueIdx])
		if !ok {
			return services.SeriesInput{}, fmt.Errorf("line %d: invalid value %q", line, record[valueIdx])
		}
		input.Values = append(input.Values, value)

		if dateIdx >= 0 {
			ts, err := time.ParseInLocation(opts.DateLayout, strings.TrimSpace(record[dateIdx]), opts.Location)
			if err != nil {
				return services.SeriesInput{}, fmt.Errorf("line %d: invalid date %q: %w", line, record[dateIdx], err)
			}
			input.Timestamps = append(input.Timestamps, ts)
		}
	}

	if len(input.Values) == 0 {
		return services.SeriesInput{}, errors.New("no observations found")
	}
	return input, nil
}

// columnIndex resolves a column by header name (case-insensitive) or by
// zero-based index
func columnIndex(header []string, column string, width int) (int, error) {
	if idx, err := strconv.Atoi(column); err == nil {
		if idx < 0 || idx >= width {
			return 0, fmt.Errorf("index %d out of range for %d columns", idx, width)
		}
		return idx, nil
	}
	if header == nil {
		return 0, fmt.Errorf("column %q needs a header row; use an index with --no-header", column)
	}
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", column, header)
}

// resampleSeries rolls input up with opts.Resample and opts.Aggregate. It is
// a no-op when no level is set.
func resampleSeries(input services.SeriesInput, opts csvOptions) (services.SeriesInput, error) {
	if opts.Resample == "" {
		return input, nil
	}
	level, err := aggregation.ParseLevel(opts.Resample)
	if err != nil {
		return services.SeriesInput{}, err
	}
	fn, err := aggregation.ParseFunction(opts.Aggregate)
	if err != nil {
		return services.SeriesInput{}, err
	}

	values, err := utils.ParseValues(input.Values)
	if err != nil {
		return services.SeriesInput{}, err
	}
	series, err := aggregation.Resample(analytics.TimeSeries{
		Values:     values,
		Timestamps: input.Timestamps,
	}, level, fn)
	if err != nil {
		return services.SeriesInput{}, fmt.Errorf("cannot resample without a date column: %w", err)
	}

	out := services.SeriesInput{
		Values:     make([]interface{}, len(series.Values)),
		Timestamps: series.Timestamps,
	}
	for i, v := range series.Values {
		out.Values[i] = v
	}
	return out, nil
}
