package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/finsightapp/finsight/internal/config"
)

// NewFromConfig builds the process logger. Entries carry a "service" field
// when cfg.Service is set, and an empty level means info.
func NewFromConfig(cfg config.LoggingConfig) (*Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err == nil {
			level = parsed
		}
	}

	output, err := openOutput(cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	if cfg.Format == "console" || cfg.Format == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: consoleTimeFormat(cfg.TimeFormat),
		}
	}

	zctx := zerolog.New(output).Level(level).With().Timestamp()
	if cfg.Service != "" {
		zctx = zctx.Str("service", cfg.Service)
	}

	return &Logger{
		zl:     zctx.Logger(),
		fields: make(map[string]interface{}),
	}, nil
}

// openOutput resolves stdout, stderr or an append-only log file.
func openOutput(path string) (io.Writer, error) {
	switch path {
	case "stdout", "":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	logDir := filepath.Dir(path)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, nil
}

func consoleTimeFormat(format string) string {
	switch format {
	case "Unix":
		return time.UnixDate
	case "Kitchen":
		return time.Kitchen
	case "DateTime":
		return time.DateTime
	default:
		return time.RFC3339
	}
}
