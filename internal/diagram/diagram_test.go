package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gotriple/internal/bounds"
	"github.com/alexiusacademia/gotriple/internal/coords"
	"github.com/alexiusacademia/gotriple/internal/expr"
	"github.com/alexiusacademia/gotriple/internal/geometry"
)

func wedge(t *testing.T) *geometry.Mesh {
	t.Helper()
	pairs := map[string]bounds.Pair{
		"z": {Lower: expr.MustParse("0"), Upper: expr.MustParse("x + y")},
		"y": {Lower: expr.MustParse("0"), Upper: expr.MustParse("1")},
		"x": {Lower: expr.MustParse("0"), Upper: expr.MustParse("1")},
	}
	res, err := bounds.Resolve(coords.Rectangular, coords.Rectangular.DefaultOrder(), pairs)
	require.NoError(t, err)
	mesh, ok := geometry.Sample(res, coords.Rectangular, 6)
	require.True(t, ok)
	return mesh
}

func TestDrawSummaryBox(t *testing.T) {
	out := DrawSummaryBox("RESULT", []string{"value = 0.5833", "∫ dz dy dx"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "RESULT")
	assert.Contains(t, lines[3], "value = 0.5833")

	// Every row has the same visible width.
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}
}

func TestDrawProfile(t *testing.T) {
	out := DrawProfile(wedge(t))
	assert.Contains(t, out, "REGION PROFILE")
	assert.Contains(t, out, "z lower")
	assert.Contains(t, out, "z upper")
	assert.Contains(t, out, "at x = ")

	assert.Empty(t, DrawProfile(nil))
}

func TestExportDomain(t *testing.T) {
	mesh := wedge(t)
	dir := t.TempDir()

	for _, name := range []string{"domain.svg", "nested/domain.png"} {
		path := filepath.Join(dir, name)
		require.NoError(t, ExportDomain(mesh, path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	require.NoError(t, ExportDomain(mesh, filepath.Join(dir, "plain")))
	_, err := os.Stat(filepath.Join(dir, "plain.png"))
	assert.NoError(t, err)

	assert.Error(t, ExportDomain(nil, filepath.Join(dir, "none.png")))
}

func TestExportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.svg")
	require.NoError(t, ExportProfile(wedge(t), path))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
