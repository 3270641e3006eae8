package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/diagram"
	"github.com/alexiusacademia/gotriple/internal/engine"
	"github.com/alexiusacademia/gotriple/internal/expr"
	"github.com/alexiusacademia/gotriple/internal/geometry"
)

var (
	integrateFunction    string
	integrateSystem      string
	integrateOrder       string
	integrateBounds      []string
	integrateFile        string
	integrateStrategy    string
	integratePrecision   int
	integrateGrid        int
	integrateTimeout     time.Duration
	integrateLaTeX       bool
	integrateJSON        bool
	integrateShowDiagram bool
	integrateExportFile  string
	integrateProfileFile string
)

var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Evaluate a triple integral",
	Long: `Evaluate the triple integral of a function of x, y and z over a region
given by lower and upper limits for each variable.

Limits are given innermost first. The innermost limits may use both outer
variables, the middle limits only the outermost variable, and the
outermost limits must be numbers.

Default orders:
  rectangular  z, y, x
  cylindrical  z, r, theta
  spherical    rho, phi, theta

Examples:
  gotriple integrate -f "z" --bound "z=0,x+y" --bound y=0,1 --bound x=0,1
  gotriple integrate -s cylindrical -f "x^2 + y^2" --bound z=0,1 --bound r=0,1 --bound "theta=0,2*pi"
  gotriple integrate -s spherical -f 1 --bound rho=0,1 --bound phi=0,pi --bound "theta=0,2*pi" --diagram
  gotriple integrate --file ball.yaml --strategy numeric --json`,
	RunE: runIntegrate,
}

func init() {
	rootCmd.AddCommand(integrateCmd)

	integrateCmd.Flags().StringVarP(&integrateFunction, "function", "f", "", "Function of x, y and z")
	integrateCmd.Flags().StringVarP(&integrateSystem, "system", "s", "rectangular", "Coordinate system: rectangular, cylindrical or spherical")
	integrateCmd.Flags().StringVar(&integrateOrder, "order", "", "Integration order, innermost first (e.g. z,y,x)")
	integrateCmd.Flags().StringArrayVarP(&integrateBounds, "bound", "b", nil, "Limits of one variable as var=lower,upper (repeatable)")
	integrateCmd.Flags().StringVar(&integrateFile, "file", "", "Problem file (.json, .yaml or .yml)")

	// Engine options, defaulting to the config file
	integrateCmd.Flags().StringVar(&integrateStrategy, "strategy", "", "auto, symbolic or numeric (default from config)")
	integrateCmd.Flags().DurationVar(&integrateTimeout, "timeout", 0, "Evaluation deadline (default from config)")

	// Output options
	integrateCmd.Flags().IntVar(&integratePrecision, "precision", 0, "Decimals in the reported value (default from config)")
	integrateCmd.Flags().BoolVar(&integrateLaTeX, "latex", false, "Also print LaTeX for the integral and result")
	integrateCmd.Flags().BoolVar(&integrateJSON, "json", false, "Print the result as JSON")

	// Diagram options
	integrateCmd.Flags().BoolVar(&integrateShowDiagram, "diagram", false, "Show ASCII profile of the region")
	integrateCmd.Flags().StringVarP(&integrateExportFile, "output", "o", "", "Export region diagram to file (png, svg, pdf)")
	integrateCmd.Flags().StringVar(&integrateProfileFile, "profile", "", "Export bound profile chart to file (png, svg, pdf)")
	integrateCmd.Flags().IntVar(&integrateGrid, "grid", 0, "Samples per axis for diagrams (default from config)")
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	req, err := integrateRequest(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("strategy") {
		if opts.Strategy, err = engine.ParseStrategy(integrateStrategy); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = integrateTimeout
	}
	precision := cfg.Output.Precision
	if cmd.Flags().Changed("precision") {
		precision = integratePrecision
	}
	grid := cfg.Output.Grid
	if cmd.Flags().Changed("grid") {
		grid = integrateGrid
	}

	res := engine.Evaluate(cmd.Context(), req, opts)
	out := cmd.OutOrStdout()

	if integrateJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Report(precision)); err != nil {
			return err
		}
		return res.Err()
	}

	printReport(out, req, res, precision, integrateLaTeX)

	if res.Err() == nil && (integrateShowDiagram || integrateExportFile != "" || integrateProfileFile != "") {
		mesh, ok := geometry.Sample(res.Resolved, res.System, grid)
		switch {
		case !ok:
			fmt.Fprintln(out, "  Region diagram unavailable: the limits cannot be evaluated on the grid.")
			fmt.Fprintln(out)
		default:
			if integrateShowDiagram {
				fmt.Fprintln(out, diagram.DrawProfile(mesh))
				lo, hi := mesh.Bounds()
				fmt.Fprintf(out, "  Extent:  x [%.4g, %.4g]  y [%.4g, %.4g]  z [%.4g, %.4g]\n\n",
					lo.X, hi.X, lo.Y, hi.Y, lo.Z, hi.Z)
			}
			if integrateExportFile != "" {
				if err := diagram.ExportDomain(mesh, integrateExportFile); err != nil {
					fmt.Fprintf(out, "  Error exporting diagram: %v\n", err)
				} else {
					fmt.Fprintf(out, "  Diagram exported to: %s\n", integrateExportFile)
				}
				fmt.Fprintln(out)
			}
			if integrateProfileFile != "" {
				if err := diagram.ExportProfile(mesh, integrateProfileFile); err != nil {
					fmt.Fprintf(out, "  Error exporting profile: %v\n", err)
				} else {
					fmt.Fprintf(out, "  Profile exported to: %s\n", integrateProfileFile)
				}
				fmt.Fprintln(out)
			}
		}
	}

	return res.Err()
}

// integrateRequest builds the request from the problem file, if any, and
// the command-line flags. Flags override the file.
func integrateRequest(cmd *cobra.Command) (*engine.Request, error) {
	req := &engine.Request{}
	if integrateFile != "" {
		loaded, err := engine.LoadFromFile(integrateFile)
		if err != nil {
			return nil, fmt.Errorf("error loading problem: %w", err)
		}
		req = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("function") || req.Function == "" {
		req.Function = integrateFunction
	}
	if flags.Changed("system") || req.System == "" {
		req.System = integrateSystem
	}
	if flags.Changed("order") {
		req.Order = parseOrder(integrateOrder)
	}
	if len(integrateBounds) > 0 {
		bounds, err := parseBounds(integrateBounds)
		if err != nil {
			return nil, err
		}
		if req.Bounds == nil {
			req.Bounds = map[string][]string{}
		}
		for v, pair := range bounds {
			req.Bounds[v] = pair
		}
	}

	if strings.TrimSpace(req.Function) == "" {
		return nil, fmt.Errorf("a function is required (use --function or --file)")
	}
	if len(req.Bounds) == 0 {
		return nil, fmt.Errorf("limits are required (use --bound or --file)")
	}
	return req, nil
}

// parseOrder splits "z, y, x" into its variables.
func parseOrder(s string) []string {
	var order []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			order = append(order, v)
		}
	}
	return order
}

// parseBounds reads var=lower,upper entries.
func parseBounds(entries []string) (map[string][]string, error) {
	out := make(map[string][]string, len(entries))
	for _, e := range entries {
		name, limits, ok := strings.Cut(e, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid bound %q (want var=lower,upper)", e)
		}
		parts := strings.Split(limits, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid bound %q (want var=lower,upper)", e)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("limits of %s given twice", name)
		}
		out[name] = []string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
	}
	return out, nil
}

func printReport(out io.Writer, req *engine.Request, res *engine.Result, precision int, latex bool) {
	rule := "───────────────────────────────────────────────────────────────"

	title := "TRIPLE INTEGRAL"
	if res.Reached(engine.Parsed) {
		title += " - " + strings.ToUpper(res.System.String()) + " COORDINATES"
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintf(out, "     %s\n", title)
	fmt.Fprintln(out, "═══════════════════════════════════════════════════════════════")
	fmt.Fprintln(out)

	// Problem
	fmt.Fprintln(out, "PROBLEM:")
	fmt.Fprintln(out, rule)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if req.Name != "" {
		fmt.Fprintf(w, "  Name:\t%s\n", req.Name)
	}
	fmt.Fprintf(w, "  Function:\tf(x, y, z) = %s\n", req.Function)
	if res.Reached(engine.Parsed) {
		fmt.Fprintf(w, "  System:\t%s\n", res.System.Label())
		symbols := make([]string, 3)
		for i, v := range res.Order {
			symbols[i] = coords.Symbol(v)
		}
		fmt.Fprintf(w, "  Order:\t%s (innermost first)\n", strings.Join(symbols, ", "))
	}
	w.Flush()
	fmt.Fprintln(out)

	if res.Resolved != nil {
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Variable\tLower\tUpper\tMay depend on\n")
		fmt.Fprintf(w, "  ────────\t─────\t─────\t─────────────\n")
		for _, lv := range res.Resolved.Levels {
			scope := "constants only"
			if len(lv.Scope) > 0 {
				scope = strings.Join(lv.Scope, ", ")
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", coords.Symbol(lv.Variable), expr.Render(lv.Lower), expr.Render(lv.Upper), scope)
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	// Transformation
	if res.Trace != nil {
		fmt.Fprintln(out, "TRANSFORMATION:")
		fmt.Fprintln(out, rule)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Substitution:\t%s\n", substitutionText(res.System))
		fmt.Fprintf(w, "  Integrand:\t%s\n", expr.Render(res.Trace.Native))
		fmt.Fprintf(w, "  Jacobian:\t%s\n", expr.Render(res.Trace.Jacobian))
		w.Flush()
		fmt.Fprintln(out)

		fmt.Fprintln(out, "INTEGRAL SOLVED:")
		fmt.Fprintln(out, rule)
		fmt.Fprintf(out, "  %s\n", res.Trace.Notation)
		if latex {
			fmt.Fprintf(out, "  LaTeX: %s\n", res.Trace.LaTeX)
		}
		fmt.Fprintln(out)
	}

	if res.Failure != nil {
		fmt.Fprintln(out, "ERROR:")
		fmt.Fprintln(out, rule)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Kind:\t%s\n", res.Failure.Kind)
		fmt.Fprintf(w, "  Message:\t%s\n", res.Failure.Message)
		w.Flush()
		fmt.Fprintln(out)
		return
	}

	var lines []string
	lines = append(lines, "Method:  "+res.Method())
	if s := res.Symbolic; s != nil {
		lines = append(lines, "Exact:   "+s.Text)
		if latex {
			lines = append(lines, "LaTeX:   "+s.LaTeX)
		}
	}
	lines = append(lines, "Decimal: "+res.Decimal(precision))
	if n := res.Numeric; n != nil {
		lines = append(lines,
			fmt.Sprintf("Error:   ±%.2e", n.AbsError),
			fmt.Sprintf("Samples: %d (%d subdivisions)", n.Evaluations, n.Subdivisions),
		)
	}
	fmt.Fprint(out, diagram.DrawSummaryBox("RESULT", lines))
	fmt.Fprintln(out)
}

func substitutionText(system coords.System) string {
	sub := system.Substitution()
	if len(sub) == 0 {
		return "none"
	}
	names := make([]string, 0, len(sub))
	for v := range sub {
		names = append(names, v)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, v := range names {
		parts[i] = v + " = " + expr.Render(sub[v])
	}
	return strings.Join(parts, ", ")
}
