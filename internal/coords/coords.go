// Package coords defines the three coordinate systems an integral can be
// solved in, together with their fixed substitutions and Jacobians.
package coords

import (
	"fmt"
	"math"
	"strings"

	"github.com/alexiusacademia/gotriple/internal/expr"
)

// System is a coordinate system for the integration variables.
type System int

const (
	Rectangular System = iota
	Cylindrical
	Spherical
)

// Systems lists every supported coordinate system.
var Systems = []System{Rectangular, Cylindrical, Spherical}

// UnsupportedError reports a coordinate system name or value outside the
// supported set.
type UnsupportedError struct {
	Name string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported coordinate system %q (use rectangular, cylindrical or spherical)", e.Name)
}

type definition struct {
	name         string
	label        string
	variables    [3]string
	defaultOrder [3]string
	substitution map[string]expr.Expr
	jacobian     expr.Expr
	aliases      []string
}

var definitions = map[System]*definition{
	Rectangular: {
		name:         "rectangular",
		label:        "Rectangular (x, y, z)",
		variables:    [3]string{"x", "y", "z"},
		defaultOrder: [3]string{"z", "y", "x"},
		substitution: map[string]expr.Expr{},
		jacobian:     expr.N(1),
		aliases:      []string{"rectangular", "rectangulares", "cartesian", "cartesianas", "rect"},
	},
	Cylindrical: {
		name:         "cylindrical",
		label:        "Cylindrical (r, θ, z)",
		variables:    [3]string{"r", "theta", "z"},
		defaultOrder: [3]string{"z", "r", "theta"},
		substitution: map[string]expr.Expr{
			"x": expr.MustParse("r*cos(theta)"),
			"y": expr.MustParse("r*sin(theta)"),
		},
		jacobian: expr.MustParse("r"),
		aliases:  []string{"cylindrical", "cilindricas", "cilíndricas", "cyl"},
	},
	Spherical: {
		name:         "spherical",
		label:        "Spherical (ρ, φ, θ)",
		variables:    [3]string{"rho", "phi", "theta"},
		defaultOrder: [3]string{"rho", "phi", "theta"},
		substitution: map[string]expr.Expr{
			"x": expr.MustParse("rho*sin(phi)*cos(theta)"),
			"y": expr.MustParse("rho*sin(phi)*sin(theta)"),
			"z": expr.MustParse("rho*cos(phi)"),
		},
		jacobian: expr.MustParse("rho^2*sin(phi)"),
		aliases:  []string{"spherical", "esfericas", "esféricas", "sph"},
	},
}

// Parse resolves a system name, case-insensitively. Spanish labels are
// accepted alongside the English ones.
func Parse(name string) (System, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Systems {
		for _, alias := range definitions[s].aliases {
			if key == alias {
				return s, nil
			}
		}
	}
	return 0, &UnsupportedError{Name: name}
}

// Valid reports whether s is one of the supported systems.
func (s System) Valid() bool {
	_, ok := definitions[s]
	return ok
}

func (s System) def() *definition {
	d, ok := definitions[s]
	if !ok {
		panic(fmt.Sprintf("coords: invalid system %d", int(s)))
	}
	return d
}

func (s System) String() string {
	if d, ok := definitions[s]; ok {
		return d.name
	}
	return fmt.Sprintf("System(%d)", int(s))
}

// Label is a display name listing the native variables.
func (s System) Label() string { return s.def().label }

// Variables returns the native variables of s.
func (s System) Variables() [3]string { return s.def().variables }

// DefaultOrder returns the customary order of integration, innermost first.
func (s System) DefaultOrder() [3]string { return s.def().defaultOrder }

// Jacobian returns the volume-element factor of s.
func (s System) Jacobian() expr.Expr { return s.def().jacobian }

// Substitution returns a copy of the Cartesian-to-native mapping. It is
// empty for rectangular coordinates.
func (s System) Substitution() map[string]expr.Expr {
	out := make(map[string]expr.Expr, 3)
	for k, v := range s.def().substitution {
		out[k] = v
	}
	return out
}

// IsNative reports whether v is one of the native variables of s.
func (s System) IsNative(v string) bool {
	for _, n := range s.Variables() {
		if n == v {
			return true
		}
	}
	return false
}

// Transform rewrites a Cartesian integrand into native variables. It
// returns the integrand before and after multiplying by the Jacobian.
func (s System) Transform(e expr.Expr) (native, withJacobian expr.Expr) {
	d := s.def()
	if len(d.substitution) == 0 {
		native = e.Simplify()
	} else {
		native = expr.Substitute(e, d.substitution)
	}
	return native, expr.MulOf(native, d.jacobian)
}

// ToCartesian maps a point given in native variables to x, y, z.
func (s System) ToCartesian(p map[string]float64) (x, y, z float64) {
	switch s {
	case Cylindrical:
		r, th := p["r"], p["theta"]
		return r * math.Cos(th), r * math.Sin(th), p["z"]
	case Spherical:
		rho, ph, th := p["rho"], p["phi"], p["theta"]
		return rho * math.Sin(ph) * math.Cos(th), rho * math.Sin(ph) * math.Sin(th), rho * math.Cos(ph)
	}
	return p["x"], p["y"], p["z"]
}

// Symbol returns the display symbol of a variable name (θ for theta).
func Symbol(v string) string {
	switch v {
	case "theta":
		return "θ"
	case "phi":
		return "φ"
	case "rho":
		return "ρ"
	}
	return v
}
