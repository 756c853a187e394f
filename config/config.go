// Package config provides layered configuration for governor services.
package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/c360/governor/errors"
)

// Config represents the complete service configuration
type Config struct {
	Platform PlatformConfig `json:"platform"`
	NATS     NATSConfig     `json:"nats"`
	Metrics  MetricsConfig  `json:"metrics"`
	Events   EventsConfig   `json:"events"`
	Session  SessionConfig  `json:"session"`
	Adaptive AdaptiveConfig `json:"adaptive"`
	Pipeline PipelineConfig `json:"pipeline"`
}

// PlatformConfig defines service identity
type PlatformConfig struct {
	Org         string `json:"org"`                   // Organization namespace (e.g., "c360")
	ID          string `json:"id"`                    // Service identifier (e.g., "governor-1")
	Environment string `json:"environment,omitempty"` // "prod", "dev", "test"
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	Enabled       bool     `json:"enabled"`
	URL           string   `json:"url,omitempty"`
	MaxReconnects int      `json:"max_reconnects,omitempty"`
	ReconnectWait Duration `json:"reconnect_wait,omitempty"`
	Timeout       Duration `json:"timeout,omitempty"`
}

// MetricsConfig defines the Prometheus metrics endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// EventsConfig defines the websocket event server
type EventsConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port,omitempty"`
}

// SessionConfig defines retry backoff behavior for task sessions
type SessionConfig struct {
	InitialDelay Duration `json:"initial_delay,omitempty"`
	Multiplier   float64  `json:"multiplier,omitempty"`
	MaxDelay     Duration `json:"max_delay,omitempty"`
	Jitter       bool     `json:"jitter,omitempty"`
}

// AdaptiveConfig defines the quality controller
type AdaptiveConfig struct {
	Enabled        bool     `json:"enabled"`
	InitialBudget  int      `json:"initial_budget,omitempty"`
	Threshold      float64  `json:"threshold,omitempty"`
	Floor          int      `json:"floor,omitempty"`
	DegradeFactor  float64  `json:"degrade_factor,omitempty"`
	SampleInterval Duration `json:"sample_interval,omitempty"`
}

// PipelineConfig defines the budget-paced runner
type PipelineConfig struct {
	QueueSize        int      `json:"queue_size,omitempty"`
	DispatchInterval Duration `json:"dispatch_interval,omitempty"`
}

// Duration wraps time.Duration with JSON support for strings like "2s"
type Duration time.Duration

// Std returns the underlying time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts either a duration string or nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		*d = Duration(parsed)
		return nil
	case float64:
		*d = Duration(time.Duration(val))
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", v)
	}
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{
			Org:         "c360",
			ID:          "governor",
			Environment: "dev",
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://localhost:4222",
			MaxReconnects: -1,
			ReconnectWait: Duration(2 * time.Second),
			Timeout:       Duration(5 * time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Events: EventsConfig{
			Enabled: false,
			Port:    8080,
		},
		Session: SessionConfig{
			InitialDelay: Duration(100 * time.Millisecond),
			Multiplier:   2.0,
			MaxDelay:     Duration(5 * time.Second),
			Jitter:       true,
		},
		Adaptive: AdaptiveConfig{
			Enabled:        true,
			InitialBudget:  100,
			Threshold:      30,
			Floor:          20,
			DegradeFactor:  0.75,
			SampleInterval: Duration(time.Second),
		},
		Pipeline: PipelineConfig{
			QueueSize:        1000,
			DispatchInterval: Duration(time.Second),
		},
	}
}

// Validate checks that the configuration is internally consistent. The org
// is normalized to lowercase as a side effect.
func (c *Config) Validate() error {
	if c.Platform.Org == "" {
		return fmt.Errorf("%w: platform.org is required", errors.ErrMissingConfig)
	}
	c.Platform.Org = strings.ToLower(c.Platform.Org)
	if !isValidSubjectPart(c.Platform.Org) {
		return fmt.Errorf("%w: platform.org %q is not valid for NATS subjects",
			errors.ErrInvalidConfig, c.Platform.Org)
	}
	if c.Platform.ID == "" {
		return fmt.Errorf("%w: platform.id is required", errors.ErrMissingConfig)
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("%w: nats.url is required when nats is enabled", errors.ErrMissingConfig)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("%w: metrics.port %d out of range", errors.ErrInvalidConfig, c.Metrics.Port)
		}
	}
	if c.Events.Enabled {
		if c.Events.Port < 1 || c.Events.Port > 65535 {
			return fmt.Errorf("%w: events.port %d out of range", errors.ErrInvalidConfig, c.Events.Port)
		}
	}

	if c.Session.Multiplier != 0 && c.Session.Multiplier < 1 {
		return fmt.Errorf("%w: session.multiplier %v must be at least 1",
			errors.ErrInvalidConfig, c.Session.Multiplier)
	}

	if c.Adaptive.Enabled {
		if c.Adaptive.Threshold <= 0 {
			return fmt.Errorf("%w: adaptive.threshold must be positive", errors.ErrInvalidConfig)
		}
		if c.Adaptive.Floor < 0 {
			return fmt.Errorf("%w: adaptive.floor must not be negative", errors.ErrInvalidConfig)
		}
		if c.Adaptive.DegradeFactor <= 0 || c.Adaptive.DegradeFactor >= 1 {
			return fmt.Errorf("%w: adaptive.degrade_factor %v must be in (0, 1)",
				errors.ErrInvalidConfig, c.Adaptive.DegradeFactor)
		}
		if c.Adaptive.InitialBudget < c.Adaptive.Floor {
			return fmt.Errorf("%w: adaptive.initial_budget %d below floor %d",
				errors.ErrInvalidConfig, c.Adaptive.InitialBudget, c.Adaptive.Floor)
		}
		if c.Adaptive.SampleInterval.Std() <= 0 {
			return fmt.Errorf("%w: adaptive.sample_interval must be positive", errors.ErrInvalidConfig)
		}
	}

	if c.Pipeline.QueueSize < 1 {
		return fmt.Errorf("%w: pipeline.queue_size must be at least 1", errors.ErrInvalidConfig)
	}
	if c.Pipeline.DispatchInterval.Std() <= 0 {
		return fmt.Errorf("%w: pipeline.dispatch_interval must be positive", errors.ErrInvalidConfig)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}

	return &clone
}

// isValidSubjectPart checks that a string is safe inside a NATS subject.
// Valid characters are alphanumeric, dots, dashes, and underscores.
func isValidSubjectPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) &&
			r != '-' && r != '_' && r != '.' {
			return false
		}
	}
	return true
}
