package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")             // Current directory
		v.AddConfigPath("./configs")     // Project configs directory
		v.AddConfigPath("./config")      // Alternative config directory
		v.AddConfigPath("/etc/finsight") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides (FINSIGHT_FORECAST_LOCALE, ...)
	v.SetEnvPrefix("FINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.grpc_port", d.Server.GRPCPort)

	// Auth defaults
	v.SetDefault("auth.enabled", d.Auth.Enabled)
	v.SetDefault("auth.api_keys", d.Auth.APIKeys)

	// Forecast defaults
	v.SetDefault("forecast.default_method", d.Forecast.DefaultMethod)
	v.SetDefault("forecast.default_periods", d.Forecast.DefaultPeriods)
	v.SetDefault("forecast.max_periods", d.Forecast.MaxPeriods)
	v.SetDefault("forecast.default_confidence", d.Forecast.DefaultConfidence)
	v.SetDefault("forecast.max_series_length", d.Forecast.MaxSeriesLength)
	v.SetDefault("forecast.request_timeout", d.Forecast.RequestTimeout.String())
	v.SetDefault("forecast.locale", d.Forecast.Locale)
	v.SetDefault("forecast.timezone", d.Forecast.Timezone)

	// Queue defaults
	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)
	v.SetDefault("queue.redis_group", d.Queue.RedisGroup)
	v.SetDefault("queue.kafka_group_id", d.Queue.KafkaGroupID)
	v.SetDefault("queue.max_deliver", d.Queue.MaxDeliver)
	v.SetDefault("queue.ack_wait", d.Queue.AckWait)
	v.SetDefault("queue.compression", d.Queue.Compression)
	v.SetDefault("queue.request_subject", d.Queue.RequestSubject)
	v.SetDefault("queue.result_subject", d.Queue.ResultSubject)

	// Registry defaults
	v.SetDefault("registry.enabled", d.Registry.Enabled)
	v.SetDefault("registry.endpoints", d.Registry.Endpoints)
	v.SetDefault("registry.dial_timeout", d.Registry.DialTimeout.String())
	v.SetDefault("registry.lease_ttl", d.Registry.LeaseTTL)

	// Metrics defaults
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.service", d.Logging.Service)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			HTTPPort: 5555,
			GRPCPort: 5556,
		},
		Forecast: ForecastConfig{
			DefaultMethod:     "adaptive",
			DefaultPeriods:    6,
			MaxPeriods:        36,
			DefaultConfidence: 0.95,
			MaxSeriesLength:   10000,
			RequestTimeout:    10 * time.Second,
			Locale:            "en-US",
			Timezone:          "UTC",
		},
		Queue: QueueConfig{
			Type:           "nats",
			URL:            "nats://localhost:4222",
			RedisStream:    "finsight",
			RedisGroup:     "finsight-group",
			KafkaGroupID:   "finsight-forecasters",
			MaxDeliver:     3,
			AckWait:        30 * time.Second,
			Compression:    "snappy",
			RequestSubject: "finsight.forecast.requests",
			ResultSubject:  "finsight.forecast.results",
		},
		Registry: RegistryConfig{
			Enabled:     false,
			Endpoints:   []string{"http://localhost:2379"},
			DialTimeout: 5 * time.Second,
			LeaseTTL:    10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			Service:    "forecastd",
		},
	}
}
