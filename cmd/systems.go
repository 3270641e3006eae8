package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
)

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List the supported coordinate systems",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out)
		fmt.Fprintln(out, "COORDINATE SYSTEMS:")
		fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Name\tVariables\tDefault order\tJacobian\tSubstitution\n")
		fmt.Fprintf(w, "  ────\t─────────\t─────────────\t────────\t────────────\n")
		for _, s := range coords.Systems {
			vars, order := s.Variables(), s.DefaultOrder()
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
				s, strings.Join(vars[:], ", "), strings.Join(order[:], ", "),
				expr.Render(s.Jacobian()), substitutionText(s))
		}
		w.Flush()
		fmt.Fprintln(out)
	},
}

func init() {
	rootCmd.AddCommand(systemsCmd)
}
