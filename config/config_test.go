package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/governor/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 100, cfg.Adaptive.InitialBudget)
	assert.Equal(t, 20, cfg.Adaptive.Floor)
	assert.Equal(t, 0.75, cfg.Adaptive.DegradeFactor)
	assert.Equal(t, time.Second, cfg.Adaptive.SampleInterval.Std())
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing org", func(c *Config) { c.Platform.Org = "" }},
		{"invalid org characters", func(c *Config) { c.Platform.Org = "c360 studio" }},
		{"missing id", func(c *Config) { c.Platform.ID = "" }},
		{"nats enabled without url", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }},
		{"metrics port out of range", func(c *Config) { c.Metrics.Port = 0 }},
		{"events port out of range", func(c *Config) { c.Events.Enabled = true; c.Events.Port = 70000 }},
		{"backoff multiplier below one", func(c *Config) { c.Session.Multiplier = 0.5 }},
		{"zero threshold", func(c *Config) { c.Adaptive.Threshold = 0 }},
		{"negative floor", func(c *Config) { c.Adaptive.Floor = -1; c.Adaptive.InitialBudget = 100 }},
		{"degrade factor of one", func(c *Config) { c.Adaptive.DegradeFactor = 1 }},
		{"budget below floor", func(c *Config) { c.Adaptive.InitialBudget = 10 }},
		{"zero sample interval", func(c *Config) { c.Adaptive.SampleInterval = 0 }},
		{"zero queue size", func(c *Config) { c.Pipeline.QueueSize = 0 }},
		{"zero dispatch interval", func(c *Config) { c.Pipeline.DispatchInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err), "expected invalid-class error, got %v", err)
		})
	}
}

func TestValidateNormalizesOrg(t *testing.T) {
	cfg := Default()
	cfg.Platform.Org = "C360"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "c360", cfg.Platform.Org)
}

func TestDurationJSON(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"1500ms"`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Std())

	assert.Error(t, json.Unmarshal([]byte(`"not-a-duration"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
}

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "governor.json", `{
		"platform": {"org": "acme", "id": "governor-test"},
		"adaptive": {"initial_budget": 200, "sample_interval": "250ms"}
	}`)

	cfg, err := NewLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Platform.Org)
	assert.Equal(t, 200, cfg.Adaptive.InitialBudget)
	assert.Equal(t, 250*time.Millisecond, cfg.Adaptive.SampleInterval.Std())

	// Untouched fields keep their defaults.
	assert.Equal(t, 20, cfg.Adaptive.Floor)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoadLayersMergeInOrder(t *testing.T) {
	dir := t.TempDir()
	base := writeConfigFile(t, dir, "base.json", `{
		"platform": {"org": "acme", "id": "governor-base"},
		"metrics": {"port": 9100}
	}`)
	local := writeConfigFile(t, dir, "local.json", `{
		"platform": {"id": "governor-local"}
	}`)

	loader := NewLoader()
	loader.AddLayer(base)
	loader.AddLayer(local)

	cfg, err := loader.Load()
	require.NoError(t, err)

	// Later layer wins for id, earlier values survive elsewhere.
	assert.Equal(t, "governor-local", cfg.Platform.ID)
	assert.Equal(t, "acme", cfg.Platform.Org)
	assert.Equal(t, 9100, cfg.Metrics.Port)
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "bad.json", `{
		"adaptive": {"initial_budget": 5}
	}`)

	_, err := NewLoader().LoadFile(path)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "broken.json", `{not json`)

	_, err := NewLoader().LoadFile(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOVERNOR_PLATFORM_ID", "governor-env")
	t.Setenv("GOVERNOR_ADAPTIVE_BUDGET", "300")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "governor-env", cfg.Platform.ID)
	assert.Equal(t, 300, cfg.Adaptive.InitialBudget)
}

func TestClone(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()

	clone.Platform.ID = "changed"
	assert.Equal(t, "governor", cfg.Platform.ID)
}
