package diagram

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/geometry"
)

var (
	lowerColor = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	upperColor = color.RGBA{R: 200, G: 0, B: 0, A: 255}
	edgeColor  = color.Gray{Y: 128}
)

// project maps a Cartesian point onto the drawing plane with an isometric
// view: x to the lower right, y to the lower left, z up.
func project(p geometry.Point) plotter.XY {
	c, s := math.Cos(math.Pi/6), math.Sin(math.Pi/6)
	return plotter.XY{
		X: (p.X - p.Y) * c,
		Y: p.Z - (p.X+p.Y)*s,
	}
}

// ExportDomain exports an isometric wireframe of the surfaces bounding the
// integration region to an image file
func ExportDomain(mesh *geometry.Mesh, filename string) error {
	if mesh == nil || mesh.Rows() < 2 || mesh.Cols() < 2 {
		return fmt.Errorf("no mesh to draw")
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Integration domain (%s)", mesh.System.Label())
	p.X.Label.Text = "x − y (isometric)"
	p.Y.Label.Text = "z (isometric)"

	for _, s := range []struct {
		name    string
		surface [][]geometry.Point
		color   color.Color
	}{
		{fmt.Sprintf("%s lower", coords.Symbol(mesh.Inner)), mesh.Lower, lowerColor},
		{fmt.Sprintf("%s upper", coords.Symbol(mesh.Inner)), mesh.Upper, upperColor},
	} {
		first, err := addWireframe(p, s.surface, s.color)
		if err != nil {
			return err
		}
		p.Legend.Add(s.name, first)
	}

	// Vertical edges at the corners of the parameter grid
	rows, cols := mesh.Rows(), mesh.Cols()
	for _, c := range [][2]int{{0, 0}, {0, cols - 1}, {rows - 1, 0}, {rows - 1, cols - 1}} {
		edge, err := plotter.NewLine(plotter.XYs{
			project(mesh.Lower[c[0]][c[1]]),
			project(mesh.Upper[c[0]][c[1]]),
		})
		if err != nil {
			return err
		}
		edge.LineStyle.Width = vg.Points(1)
		edge.LineStyle.Color = edgeColor
		edge.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(edge)
	}

	return save(p, 8*vg.Inch, 6*vg.Inch, filename)
}

// addWireframe draws every grid row and column of a surface. It returns
// the first line for use in the legend.
func addWireframe(p *plot.Plot, surface [][]geometry.Point, c color.Color) (*plotter.Line, error) {
	var first *plotter.Line
	add := func(pts plotter.XYs) error {
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = c
		p.Add(l)
		if first == nil {
			first = l
		}
		return nil
	}

	for _, row := range surface {
		pts := make(plotter.XYs, len(row))
		for j, pt := range row {
			pts[j] = project(pt)
		}
		if err := add(pts); err != nil {
			return nil, err
		}
	}
	for j := range surface[0] {
		pts := make(plotter.XYs, len(surface))
		for i := range surface {
			pts[i] = project(surface[i][j])
		}
		if err := add(pts); err != nil {
			return nil, err
		}
	}
	return first, nil
}

// ExportProfile exports the innermost limits along the middle variable for
// the central value of the outer variable
func ExportProfile(mesh *geometry.Mesh, filename string) error {
	if mesh == nil || mesh.Rows() < 1 || mesh.Cols() < 2 {
		return fmt.Errorf("no mesh to draw")
	}
	row := mesh.Rows() / 2

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Limits of %s at %s = %.4g",
		coords.Symbol(mesh.Inner), coords.Symbol(mesh.Outer), mesh.OuterValues[row])
	p.X.Label.Text = coords.Symbol(mesh.Middle)
	p.Y.Label.Text = coords.Symbol(mesh.Inner)

	for _, s := range []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{"lower", mesh.InnerLower[row], lowerColor},
		{"upper", mesh.InnerUpper[row], upperColor},
	} {
		pts := make(plotter.XYs, mesh.Cols())
		for j := range pts {
			pts[j] = plotter.XY{X: mesh.MiddleValues[row][j], Y: s.values[j]}
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = s.color
		points.GlyphStyle.Color = s.color
		points.GlyphStyle.Radius = vg.Points(3)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
	}

	return save(p, 6*vg.Inch, 4*vg.Inch, filename)
}

// save writes the plot in the format given by the file extension. Unknown
// extensions get .png appended.
func save(p *plot.Plot, width, height vg.Length, filename string) error {
	// Create directory if needed
	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}
