package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.Level == "info" && c.Logging.Format == "json"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// GetGRPCAddress returns the gRPC listen address
func (c *Config) GetGRPCAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.GRPCPort))
}

// GetAdvertiseAddress returns the gRPC address published in the registry
func (c *Config) GetAdvertiseAddress() string {
	host := c.Server.AdvertiseHost
	if host == "" {
		host = c.Server.Host
	}
	return net.JoinHostPort(host, strconv.Itoa(c.Server.GRPCPort))
}

// GetLocale parses the configured locale. Empty means en-US.
func (c *ForecastConfig) GetLocale() (language.Tag, error) {
	if c.Locale == "" {
		return language.AmericanEnglish, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	return tag, nil
}

// GetTimezone returns the configured zone forecasts are anchored in.
// Returns UTC if not configured or invalid
// Supports formats:
//   - IANA timezone names: "Asia/Kolkata", "America/New_York", "UTC"
//   - Offset format: "+05:30", "-05:00", "+00:00"
func (c *ForecastConfig) GetTimezone() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}

	// Try parsing as IANA timezone name first
	loc, err := time.LoadLocation(c.Timezone)
	if err == nil {
		return loc
	}

	// Try parsing as offset format (+05:30, -05:00, etc.)
	loc, err = parseOffsetTimezone(c.Timezone)
	if err == nil {
		return loc
	}

	// Default to UTC if parsing fails
	return time.UTC
}

// Clock returns a clock reading the current time in the configured zone
func (c *ForecastConfig) Clock() func() time.Time {
	loc := c.GetTimezone()
	return func() time.Time {
		return time.Now().In(loc)
	}
}

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// parseOffsetTimezone parses timezone offset format like "+05:30", "-05:00"
func parseOffsetTimezone(offset string) (*time.Location, error) {
	matches := offsetPattern.FindStringSubmatch(offset)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid offset format: %s", offset)
	}

	sign := 1
	if matches[1] == "-" {
		sign = -1
	}

	hours, err := strconv.Atoi(matches[2])
	if err != nil {
		return nil, fmt.Errorf("invalid hours: %s", matches[2])
	}

	minutes, err := strconv.Atoi(matches[3])
	if err != nil {
		return nil, fmt.Errorf("invalid minutes: %s", matches[3])
	}

	offsetSeconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone(offset, offsetSeconds), nil
}
