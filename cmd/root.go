package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotriple/internal/config"
	"github.com/alexiusacademia/gotriple/internal/version"
)

var (
	configPath string
	verbose    bool

	// cfg is loaded before every command runs.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "gotriple",
	Short: "Triple integral calculator",
	Long: `gotriple - Go Triple Integral Calculator

A CLI tool for evaluating triple integrals over regions bounded by
explicit limit functions, in rectangular, cylindrical or spherical
coordinates.

The function is always written in x, y and z. It is rewritten into the
chosen coordinate system and multiplied by the Jacobian:
  - Rectangular:  dV = dz dy dx
  - Cylindrical:  x = r cos θ, y = r sin θ,            dV = r dz dr dθ
  - Spherical:    x = ρ sin φ cos θ, y = ρ sin φ sin θ,
                  z = ρ cos φ,                          dV = ρ² sin φ dρ dφ dθ

A closed form is tried first; adaptive Gauss–Legendre quadrature is
used when no antiderivative is found.`,
	PersistentPreRunE: loadConfig,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Fprintln(out, "  ║                                                           ║")
		fmt.Fprintf(out, "  ║   gotriple v%-46s║\n", version.Version)
		fmt.Fprintln(out, "  ║   Go Triple Integral Calculator                           ║")
		fmt.Fprintf(out, "  ║   %-56s║\n", "Alexius S. Academia ©  "+version.Year)
		fmt.Fprintln(out, "  ║                                                           ║")
		fmt.Fprintln(out, "  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Evaluate triple integrals symbolically or numerically.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Features:")
		fmt.Fprintln(out, "    • Rectangular, cylindrical and spherical coordinates")
		fmt.Fprintln(out, "    • Limits that depend on the outer variables")
		fmt.Fprintln(out, "    • Closed-form results with a numeric fallback")
		fmt.Fprintln(out, "    • Region diagrams in the terminal or as png, svg and pdf")
		fmt.Fprintln(out, "    • HTTP endpoint for batch use")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Use 'gotriple --help' to see available commands.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  ─────────────────────────────────────────────────────────────")
		fmt.Fprintf(out, "  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Fprintln(out)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file (default: $GOTRIPLE_CONFIG, ./gotriple.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log evaluation steps")
}

// loadConfig reads the configuration and sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	level, err := log.ParseLevel(cfg.Output.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid output.log_level: %w", err)
	}
	if verbose {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	return nil
}
