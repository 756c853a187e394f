package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/c360/governor/errors"
)

// maxConfigSize bounds config files to guard against accidental huge reads
const maxConfigSize = 1 << 20 // 1 MiB

// Loader loads configuration from layered JSON files with environment
// overrides. Later layers win over earlier ones; environment variables win
// over every file.
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a loader with validation enabled and the GOVERNOR env
// prefix.
func NewLoader() *Loader {
	return &Loader{
		validation: true,
		envPrefix:  "GOVERNOR",
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load merges defaults, file layers, and environment overrides
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		raw, err := l.loadRawJSON(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg = l.mergeFromMap(cfg, raw)
	}

	l.applyEnvOverrides(cfg)

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (l *Loader) loadRawJSON(path string) (map[string]any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("%w: config file %s exceeds %d bytes",
			errors.ErrInvalidConfig, path, maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)
	}
	return raw, nil
}

// mergeFromMap merges a raw override map into the base config, only touching
// fields present in the map.
func (l *Loader) mergeFromMap(base *Config, override map[string]any) *Config {
	if override == nil {
		return base
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base
	}

	mergedMap := deepMerge(baseMap, override)

	mergedJSON, err := json.Marshal(mergedMap)
	if err != nil {
		return base
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return base
	}

	return &merged
}

// deepMerge recursively merges two maps with override taking precedence
func deepMerge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}

		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMerge(baseMap, overrideMap)
				continue
			}
		}

		result[k] = v
	}

	return result
}

// applyEnvOverrides applies a fixed set of environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(l.envPrefix + "_PLATFORM_ORG"); v != "" {
		cfg.Platform.Org = v
	}
	if v := os.Getenv(l.envPrefix + "_PLATFORM_ID"); v != "" {
		cfg.Platform.ID = v
	}
	if v := os.Getenv(l.envPrefix + "_ENVIRONMENT"); v != "" {
		cfg.Platform.Environment = v
	}
	if v := os.Getenv(l.envPrefix + "_NATS_URL"); v != "" {
		cfg.NATS.URL = v
		cfg.NATS.Enabled = true
	}
	if v := os.Getenv(l.envPrefix + "_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv(l.envPrefix + "_EVENTS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Events.Port = port
		}
	}
	if v := os.Getenv(l.envPrefix + "_ADAPTIVE_BUDGET"); v != "" {
		if budget, err := strconv.Atoi(v); err == nil {
			cfg.Adaptive.InitialBudget = budget
		}
	}
}
