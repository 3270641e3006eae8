package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gotriple/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gotriple",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.String())
		fmt.Fprintln(out, "Triple integrals in rectangular, cylindrical and spherical coordinates")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
