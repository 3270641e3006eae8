package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"milliseconds", "250ms", 250 * time.Millisecond, false},
		{"complex", "1m30s", 90 * time.Second, false},
		{"invalid", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.Duration)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "auto", cfg.Engine.Strategy)
	assert.Equal(t, 1e-10, cfg.Engine.AbsTolerance)
	assert.Equal(t, 1e-8, cfg.Engine.RelTolerance)
	assert.Equal(t, 50, cfg.Engine.MaxDepth)
	assert.Equal(t, 2_000_000, cfg.Engine.MaxEvaluations)
	assert.Equal(t, 12, cfg.Engine.MaxSymbolicDepth)
	assert.Equal(t, 30*time.Second, cfg.Engine.Timeout.Duration)
	assert.Equal(t, 4, cfg.Output.Precision)
	assert.Equal(t, 30, cfg.Output.Grid)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gotriple.toml")
	content := `
[engine]
strategy = "numeric"
abs_tolerance = 1e-6
timeout = "5s"

[output]
precision = 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "numeric", cfg.Engine.Strategy)
	assert.Equal(t, 1e-6, cfg.Engine.AbsTolerance)
	assert.Equal(t, 5*time.Second, cfg.Engine.Timeout.Duration)
	assert.Equal(t, 6, cfg.Output.Precision)
	// Untouched values fall back to defaults.
	assert.Equal(t, 1e-8, cfg.Engine.RelTolerance)
	assert.Equal(t, 30, cfg.Output.Grid)
}

func TestLoadZeroPrecision(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gotriple.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\nprecision = 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Output.Precision)
	assert.Equal(t, 30, cfg.Output.Grid)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[engine\nstrategy = 1"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[engine]\nstrategy = \"guess\"\n"), 0o644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "engine.strategy")
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[output]\ngrid = 12\n"), 0o644))

	t.Setenv(EnvVar, path)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Output.Grid)
}

func TestLoadFromEnvWithoutFile(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
