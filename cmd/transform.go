package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
)

var (
	transformFunction string
	transformSystem   string
	transformLaTeX    bool
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Rewrite a function of x, y and z in another coordinate system",
	Long: `Show the function after substituting the coordinate system's variables,
and the integrand after multiplying by the Jacobian.

Examples:
  gotriple transform -s cylindrical -f "x^2 + y^2"
  gotriple transform -s spherical -f "z" --latex`,
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().StringVarP(&transformFunction, "function", "f", "", "Function of x, y and z [required]")
	transformCmd.Flags().StringVarP(&transformSystem, "system", "s", "cylindrical", "Coordinate system: rectangular, cylindrical or spherical")
	transformCmd.Flags().BoolVar(&transformLaTeX, "latex", false, "Also print LaTeX")
	transformCmd.MarkFlagRequired("function")
}

func runTransform(cmd *cobra.Command, args []string) error {
	system, err := coords.Parse(transformSystem)
	if err != nil {
		return err
	}
	f, err := expr.Parse(transformFunction)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	native, withJacobian := system.Transform(f)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "TRANSFORMATION TO %s:\n", system.Label())
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Cartesian:\t%s\n", expr.Render(f))
	fmt.Fprintf(w, "  Substitution:\t%s\n", substitutionText(system))
	fmt.Fprintf(w, "  Native:\t%s\n", expr.Render(native))
	fmt.Fprintf(w, "  Jacobian:\t%s\n", expr.Render(system.Jacobian()))
	fmt.Fprintf(w, "  Integrand:\t%s\n", expr.Render(withJacobian))
	if transformLaTeX {
		fmt.Fprintf(w, "  LaTeX:\t%s\n", expr.LaTeX(withJacobian))
	}
	w.Flush()
	fmt.Fprintln(out)
	return nil
}
