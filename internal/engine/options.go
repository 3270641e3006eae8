package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexiusacademia/gotriple/internal/config"
	"github.com/alexiusacademia/gotriple/internal/expr"
	"github.com/alexiusacademia/gotriple/internal/quadrature"
)

// Strategy selects how the integral is computed.
type Strategy int

const (
	// StrategyAuto tries the closed form and falls back to quadrature.
	StrategyAuto Strategy = iota
	// StrategySymbolic never falls back.
	StrategySymbolic
	// StrategyNumeric skips the closed form.
	StrategyNumeric
)

func (s Strategy) String() string {
	switch s {
	case StrategySymbolic:
		return "symbolic"
	case StrategyNumeric:
		return "numeric"
	}
	return "auto"
}

// ParseStrategy accepts auto, symbolic or numeric in any case.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return StrategyAuto, nil
	case "symbolic":
		return StrategySymbolic, nil
	case "numeric":
		return StrategyNumeric, nil
	}
	return StrategyAuto, fmt.Errorf("unknown strategy %q (use auto, symbolic or numeric)", name)
}

// Options control one evaluation.
type Options struct {
	Strategy         Strategy
	Quadrature       quadrature.Options
	MaxSymbolicDepth int
	Timeout          time.Duration // zero means no deadline beyond the caller's
}

// DefaultOptions returns the options used without a config file.
func DefaultOptions() Options {
	return Options{
		Strategy:         StrategyAuto,
		Quadrature:       quadrature.DefaultOptions(),
		MaxSymbolicDepth: expr.DefaultMaxDepth,
		Timeout:          30 * time.Second,
	}
}

// OptionsFromConfig maps the [engine] table onto Options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	strategy, err := ParseStrategy(cfg.Engine.Strategy)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Strategy: strategy,
		Quadrature: quadrature.Options{
			AbsTol:         cfg.Engine.AbsTolerance,
			RelTol:         cfg.Engine.RelTolerance,
			MaxDepth:       cfg.Engine.MaxDepth,
			MaxEvaluations: cfg.Engine.MaxEvaluations,
		},
		MaxSymbolicDepth: cfg.Engine.MaxSymbolicDepth,
		Timeout:          cfg.Engine.Timeout.Duration,
	}, nil
}
