// Package diagram draws the region of an integral, as images and as
// terminal output.
package diagram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"

	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/geometry"
)

// DrawProfile plots the lower and upper limits of the innermost variable
// along the middle variable, for the central value of the outer variable.
func DrawProfile(mesh *geometry.Mesh) string {
	if mesh == nil || mesh.Rows() < 1 || mesh.Cols() < 2 {
		return ""
	}
	row := mesh.Rows() / 2
	inner := coords.Symbol(mesh.Inner)
	middle := mesh.MiddleValues[row]

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString("  REGION PROFILE\n")
	sb.WriteString("  ──────────────\n\n")

	sb.WriteString(asciigraph.PlotMany(
		[][]float64{mesh.InnerLower[row], mesh.InnerUpper[row]},
		asciigraph.Height(10),
		asciigraph.Width(50),
		asciigraph.Offset(4),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.SeriesLegends(inner+" lower", inner+" upper"),
		asciigraph.Caption(fmt.Sprintf("%s from %.4g to %.4g at %s = %.4g",
			coords.Symbol(mesh.Middle), middle[0], middle[len(middle)-1],
			coords.Symbol(mesh.Outer), mesh.OuterValues[row])),
	))
	sb.WriteString("\n")

	return sb.String()
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := utf8.RuneCountInString(title)
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxLen {
			maxLen = n
		}
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(title, maxLen-4)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s  ║\n", pad(line, maxLen-4)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}

// pad right-pads s to width runes; fmt pads by bytes.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
