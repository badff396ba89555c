// Package config holds tracelog settings read from the environment and the
// parsing helpers shared by command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/mrzor/tracelog/internal/stats"
)

// Output formats supported by report writers.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config holds the tracelog settings. Command-line flags override them.
type Config struct {
	// IdleTaskName is the task left out of idle gap computation
	IdleTaskName string `env:"TRACELOG_IDLE_TASK_NAME" envDefault:"IDLE"`
	// Jobs bounds the number of traces analyzed concurrently
	Jobs int `env:"TRACELOG_JOBS" envDefault:"4"`
	// Format is the report format: text, json or yaml
	Format string `env:"TRACELOG_FORMAT" envDefault:"text"`
	// Epoch is the wall-clock time of timestamp zero (RFC 3339), used by export
	Epoch string `env:"TRACELOG_EPOCH" envDefault:""`
}

// CustomAttribute is a named expression evaluated per task.
type CustomAttribute struct {
	Name       string
	Expression string
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse tracelog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unsupported format %q (want %s, %s or %s)", c.Format, FormatText, FormatJSON, FormatYAML)
	}
	if c.IdleTaskName == "" {
		return fmt.Errorf("idle task name must not be empty")
	}
	return nil
}

// StatsOptions returns the aggregation options derived from the configuration.
func (c *Config) StatsOptions() []stats.Option {
	return []stats.Option{stats.WithIdleTaskName(c.IdleTaskName)}
}

// ParseCustomAttribute parses a "name=expression" flag value. Only the first
// '=' separates the name, so expressions may contain '=='.
func ParseCustomAttribute(value string) (CustomAttribute, error) {
	name, expression, ok := strings.Cut(value, "=")
	if !ok {
		return CustomAttribute{}, fmt.Errorf("invalid attribute %q: expected name=expression", value)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return CustomAttribute{}, fmt.Errorf("invalid attribute %q: empty name", value)
	}
	if strings.TrimSpace(expression) == "" {
		return CustomAttribute{}, fmt.Errorf("invalid attribute %q: empty expression", value)
	}
	return CustomAttribute{Name: name, Expression: expression}, nil
}

// ParseCustomAttributes parses every flag value in order.
func ParseCustomAttributes(values []string) ([]CustomAttribute, error) {
	attrs := make([]CustomAttribute, 0, len(values))
	for _, v := range values {
		attr, err := ParseCustomAttribute(v)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}
