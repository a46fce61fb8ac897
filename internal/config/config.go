package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Registry RegistryConfig `mapstructure:"registry"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP API port
	GRPCPort int    `mapstructure:"grpc_port"` // gRPC health port
	// AdvertiseHost is the address published in the worker registry.
	// Falls back to Host when empty.
	AdvertiseHost string `mapstructure:"advertise_host"`
}

// ForecastConfig holds request defaults and limits for the forecasting service
type ForecastConfig struct {
	DefaultMethod     string        `mapstructure:"default_method"`     // adaptive, linear, exponential, seasonal
	DefaultPeriods    int           `mapstructure:"default_periods"`    // Periods when the request omits them
	MaxPeriods        int           `mapstructure:"max_periods"`        // Upper bound on requested periods
	DefaultConfidence float64       `mapstructure:"default_confidence"` // Interval probability when omitted
	MaxSeriesLength   int           `mapstructure:"max_series_length"`  // Reject longer series (0 = unlimited)
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`    // Per-request deadline
	Locale            string        `mapstructure:"locale"`             // BCP 47 tag for locale recommendations (e.g., "en-IN")
	Timezone          string        `mapstructure:"timezone"`           // Zone forecasts are anchored in (e.g., "Asia/Kolkata", "+05:30", "UTC")
}

// QueueConfig represents message queue configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: nats (default), redis, kafka, memory
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "finsight")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "finsight-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`  // Kafka broker addresses
	KafkaGroupID string   `mapstructure:"kafka_group_id"` // Kafka consumer group ID

	// Delivery of forecast jobs
	MaxDeliver  int           `mapstructure:"max_deliver"` // Attempts before a failing job is dropped
	AckWait     time.Duration `mapstructure:"ack_wait"`    // Redelivery delay for unacknowledged jobs (NATS)
	Compression string        `mapstructure:"compression"` // Payload compression: snappy (default), none

	// Forecast job subjects
	RequestSubject string `mapstructure:"request_subject"` // Subject workers consume jobs from
	ResultSubject  string `mapstructure:"result_subject"`  // Subject workers publish results to
}

// RegistryConfig represents etcd worker registration configuration
type RegistryConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	LeaseTTL    int64         `mapstructure:"lease_ttl"` // Seconds
	WorkerID    string        `mapstructure:"worker_id"` // Defaults to a generated ID
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // console only: RFC3339, Unix, Kitchen, DateTime
	Service    string `mapstructure:"service"`     // added to every entry as "service"
}

var validMethods = map[string]bool{
	"":            true,
	"adaptive":    true,
	"auto":        true,
	"linear":      true,
	"exponential": true,
	"seasonal":    true,
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Registry.Validate(); err != nil {
		return fmt.Errorf("registry config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc_port: %d", c.GRPCPort)
	}

	if c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("http_port and grpc_port cannot be the same")
	}

	return nil
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if !validMethods[c.DefaultMethod] {
		return fmt.Errorf("forecast.default_method must be one of: adaptive, linear, exponential, seasonal")
	}

	if c.DefaultPeriods < 1 {
		return fmt.Errorf("forecast.default_periods must be at least 1")
	}

	if c.MaxPeriods < c.DefaultPeriods {
		return fmt.Errorf("forecast.max_periods cannot be less than forecast.default_periods")
	}

	if c.DefaultConfidence <= 0 || c.DefaultConfidence > 1 {
		return fmt.Errorf("forecast.default_confidence must be in (0, 1]")
	}

	if c.MaxSeriesLength < 0 {
		return fmt.Errorf("forecast.max_series_length cannot be negative")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("forecast.request_timeout must be positive")
	}

	if _, err := c.GetLocale(); err != nil {
		return fmt.Errorf("forecast.locale: %w", err)
	}

	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "", "nats", "redis", "kafka", "memory":
	default:
		return fmt.Errorf("queue.type must be one of: nats, redis, kafka, memory")
	}

	switch c.Compression {
	case "", "snappy", "none":
	default:
		return fmt.Errorf("queue.compression must be one of: snappy, none")
	}

	if c.MaxDeliver < 1 {
		return fmt.Errorf("queue.max_deliver must be at least 1")
	}

	if c.RequestSubject == "" || c.ResultSubject == "" {
		return fmt.Errorf("queue.request_subject and queue.result_subject are required")
	}

	if c.RequestSubject == c.ResultSubject {
		return fmt.Errorf("queue.request_subject and queue.result_subject cannot be the same")
	}

	return nil
}

// Validate validates registry configuration
func (c *RegistryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if len(c.Endpoints) == 0 {
		return fmt.Errorf("registry.endpoints is required")
	}

	if c.DialTimeout <= 0 {
		return fmt.Errorf("registry.dial_timeout must be positive")
	}

	if c.LeaseTTL < 1 {
		return fmt.Errorf("registry.lease_ttl must be at least 1 second")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
