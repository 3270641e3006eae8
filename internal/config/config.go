package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvVar names the environment variable holding an explicit config path.
const EnvVar = "GOTRIPLE_CONFIG"

// Config holds the complete application configuration
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Output OutputConfig `toml:"output"`
	Server ServerConfig `toml:"server"`
}

// EngineConfig holds evaluation strategy and quadrature limits
type EngineConfig struct {
	Strategy         string   `toml:"strategy"` // auto, symbolic or numeric
	AbsTolerance     float64  `toml:"abs_tolerance"`
	RelTolerance     float64  `toml:"rel_tolerance"`
	MaxDepth         int      `toml:"max_depth"`
	MaxEvaluations   int      `toml:"max_evaluations"`
	MaxSymbolicDepth int      `toml:"max_symbolic_depth"`
	Timeout          Duration `toml:"timeout"`
}

// OutputConfig holds report formatting settings
type OutputConfig struct {
	Precision int    `toml:"precision"`
	LogLevel  string `toml:"log_level"`
	Grid      int    `toml:"grid"`
}

// ServerConfig holds settings of the HTTP endpoint
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	MaxRequestBytes int64    `toml:"max_request_bytes"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(toml.MetaData{})
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults(md)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration from GOTRIPLE_CONFIG or the first default
// location that exists. Without any file the defaults are returned.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		defaultPaths := []string{
			"./gotriple.toml",
			filepath.Join(os.Getenv("HOME"), ".config/gotriple/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}

	return Load(path)
}

// applyDefaults sets default values for missing configuration. Keys whose
// zero value is meaningful are checked against md instead.
func (c *Config) applyDefaults(md toml.MetaData) {
	// Engine
	if c.Engine.Strategy == "" {
		c.Engine.Strategy = "auto"
	}
	if c.Engine.AbsTolerance == 0 {
		c.Engine.AbsTolerance = 1e-10
	}
	if c.Engine.RelTolerance == 0 {
		c.Engine.RelTolerance = 1e-8
	}
	if c.Engine.MaxDepth == 0 {
		c.Engine.MaxDepth = 50
	}
	if c.Engine.MaxEvaluations == 0 {
		c.Engine.MaxEvaluations = 2_000_000
	}
	if c.Engine.MaxSymbolicDepth == 0 {
		c.Engine.MaxSymbolicDepth = 12
	}
	if c.Engine.Timeout.Duration == 0 {
		c.Engine.Timeout.Duration = 30 * time.Second
	}

	// Output
	if !md.IsDefined("output", "precision") {
		c.Output.Precision = 4
	}
	if c.Output.LogLevel == "" {
		c.Output.LogLevel = "warn"
	}
	if c.Output.Grid == 0 {
		c.Output.Grid = 30
	}

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 10 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 60 * time.Second
	}
	if c.Server.MaxRequestBytes == 0 {
		c.Server.MaxRequestBytes = 1 << 20
	}
}

// Validate rejects values the engine cannot work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Engine.Strategy) {
	case "auto", "symbolic", "numeric":
	default:
		return fmt.Errorf("engine.strategy must be auto, symbolic or numeric, got %q", c.Engine.Strategy)
	}
	if c.Engine.AbsTolerance < 0 || c.Engine.RelTolerance < 0 {
		return fmt.Errorf("engine tolerances must not be negative")
	}
	if c.Engine.MaxDepth < 0 || c.Engine.MaxEvaluations < 0 || c.Engine.MaxSymbolicDepth < 0 {
		return fmt.Errorf("engine limits must not be negative")
	}
	if c.Output.Precision < 0 || c.Output.Precision > 17 {
		return fmt.Errorf("output.precision must be between 0 and 17, got %d", c.Output.Precision)
	}
	if c.Output.Grid < 2 {
		return fmt.Errorf("output.grid must be at least 2, got %d", c.Output.Grid)
	}
	return nil
}
