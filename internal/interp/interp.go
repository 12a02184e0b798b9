// Package interp interpolates scattered point measurements onto regular
// raster meshes.
//
// Three methods are provided, matching the usual scattered-data semantics:
// nearest-neighbour assignment (never NaN while at least one sample exists),
// piecewise-linear interpolation over a Delaunay triangulation, and a cubic
// Bezier-patch variant of the same triangulation. The triangulated methods
// return NaN outside the convex hull of the samples.
package interp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Method selects the interpolation algorithm.
type Method string

const (
	// Linear interpolates within Delaunay triangles using barycentric
	// weights. NaN outside the convex hull.
	Linear Method = "linear"

	// Nearest assigns each mesh node the value of the closest sample.
	Nearest Method = "nearest"

	// Cubic interpolates within Delaunay triangles using cubic Bezier
	// patches with estimated vertex gradients. NaN outside the convex hull.
	Cubic Method = "cubic"
)

// Valid reports whether m names a supported method.
func (m Method) Valid() bool {
	switch m {
	case Linear, Nearest, Cubic:
		return true
	}
	return false
}

// Mesh describes a regular target raster.
//
// Row 0 is the top of the raster: Y decreases as the row index grows
// (image-style row order). Column and row coordinates are cell centres.
type Mesh struct {
	OriginX float64 // centre X of the first (leftmost) column
	OriginY float64 // centre Y of the first (top) row
	Res     float64 // cell size, same units as sample coordinates
	Cols    int
	Rows    int
}

// X returns the centre X coordinate of a column.
func (m Mesh) X(col int) float64 { return m.OriginX + float64(col)*m.Res }

// Y returns the centre Y coordinate of a row.
func (m Mesh) Y(row int) float64 { return m.OriginY - float64(row)*m.Res }

// Len returns the number of mesh nodes.
func (m Mesh) Len() int { return m.Cols * m.Rows }

// Xs returns the centre X coordinates of all columns.
func (m Mesh) Xs() []float64 {
	xs := make([]float64, m.Cols)
	if m.Cols == 1 {
		xs[0] = m.OriginX
		return xs
	}
	floats.Span(xs, m.OriginX, m.OriginX+float64(m.Cols-1)*m.Res)
	return xs
}

// Ys returns the centre Y coordinates of all rows, top row first.
func (m Mesh) Ys() []float64 {
	ys := make([]float64, m.Rows)
	if m.Rows == 1 {
		ys[0] = m.OriginY
		return ys
	}
	floats.Span(ys, m.OriginY, m.OriginY-float64(m.Rows-1)*m.Res)
	return ys
}

// Griddata interpolates scattered samples (xs[i], ys[i]) -> values[i] onto
// the mesh, returning a row-major slice of length mesh.Len() with row 0 at
// the top of the raster.
//
// An empty sample set is not an error: the result is all NaN. The
// triangulated methods also degrade to all NaN when the samples do not span
// a triangle (fewer than three distinct locations, or all collinear).
func Griddata(xs, ys, values []float64, mesh Mesh, method Method) ([]float64, error) {
	if len(xs) != len(ys) || len(xs) != len(values) {
		return nil, fmt.Errorf("interp: sample slice lengths differ: %d/%d/%d",
			len(xs), len(ys), len(values))
	}
	if mesh.Cols < 1 || mesh.Rows < 1 || mesh.Res <= 0 {
		return nil, fmt.Errorf("interp: invalid mesh %dx%d at resolution %g",
			mesh.Cols, mesh.Rows, mesh.Res)
	}
	if !method.Valid() {
		return nil, fmt.Errorf("interp: unknown method %q", method)
	}

	if len(xs) == 0 {
		return nanGrid(mesh), nil
	}

	switch method {
	case Nearest:
		return gridNearest(xs, ys, values, mesh), nil
	case Linear:
		tri := triangulate(xs, ys, values)
		if tri == nil {
			return nanGrid(mesh), nil
		}
		return tri.gridLinear(mesh), nil
	case Cubic:
		tri := triangulate(xs, ys, values)
		if tri == nil {
			return nanGrid(mesh), nil
		}
		return tri.gridCubic(mesh), nil
	}
	panic("unreachable")
}

func nanGrid(mesh Mesh) []float64 {
	out := make([]float64, mesh.Len())
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
