package interp

import (
	"math"
	"testing"
)

// unitSquare returns the five-point test layout: four corners plus centre.
func unitSquare() (xs, ys []float64) {
	xs = []float64{0, 1, 0, 1, 0.5}
	ys = []float64{0, 0, 1, 1, 0.5}
	return xs, ys
}

// meshOver returns a mesh of cell centres covering [0,1]x[0,1] at the given
// resolution, top row at y=1.
func meshOver(res float64) Mesh {
	n := int(math.Round(1.0/res)) + 1
	return Mesh{OriginX: 0, OriginY: 1, Res: res, Cols: n, Rows: n}
}

func TestMeshCoordinates(t *testing.T) {
	m := Mesh{OriginX: 10, OriginY: 20, Res: 0.5, Cols: 3, Rows: 2}

	if m.Len() != 6 {
		t.Errorf("Len() = %d, want 6", m.Len())
	}
	if m.X(0) != 10 || m.X(2) != 11 {
		t.Errorf("column centres wrong: X(0)=%g X(2)=%g", m.X(0), m.X(2))
	}
	// Y decreases with increasing row index
	if m.Y(0) != 20 || m.Y(1) != 19.5 {
		t.Errorf("row centres wrong: Y(0)=%g Y(1)=%g", m.Y(0), m.Y(1))
	}

	xs := m.Xs()
	ys := m.Ys()
	for col := range xs {
		if xs[col] != m.X(col) {
			t.Errorf("Xs()[%d] = %g, want %g", col, xs[col], m.X(col))
		}
	}
	for row := range ys {
		if ys[row] != m.Y(row) {
			t.Errorf("Ys()[%d] = %g, want %g", row, ys[row], m.Y(row))
		}
	}
}

func TestGriddataArgumentValidation(t *testing.T) {
	mesh := meshOver(0.5)

	if _, err := Griddata([]float64{0}, []float64{0, 1}, []float64{0}, mesh, Linear); err == nil {
		t.Error("expected error for mismatched sample slices")
	}
	if _, err := Griddata(nil, nil, nil, Mesh{Cols: 0, Rows: 1, Res: 1}, Linear); err == nil {
		t.Error("expected error for empty mesh")
	}
	if _, err := Griddata(nil, nil, nil, mesh, Method("bilinear")); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestGriddataEmptyInputIsAllNaN(t *testing.T) {
	mesh := meshOver(0.5)
	for _, method := range []Method{Linear, Nearest, Cubic} {
		got, err := Griddata(nil, nil, nil, mesh, method)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", method, err)
		}
		for i, v := range got {
			if !math.IsNaN(v) {
				t.Errorf("%s: node %d = %g, want NaN", method, i, v)
			}
		}
	}
}

func TestNearestConstantField(t *testing.T) {
	xs, ys := unitSquare()
	values := []float64{1, 1, 1, 1, 1}

	got, err := Griddata(xs, ys, values, meshOver(0.5), Nearest)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	for i, v := range got {
		if v != 1 {
			t.Errorf("node %d = %g, want 1 (nearest never yields NaN)", i, v)
		}
	}
}

func TestNearestPicksClosestSample(t *testing.T) {
	xs := []float64{0, 1}
	ys := []float64{0, 0}
	values := []float64{10, 20}
	mesh := Mesh{OriginX: 0, OriginY: 0, Res: 1, Cols: 2, Rows: 1}

	got, err := Griddata(xs, ys, values, mesh, Nearest)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	if got[0] != 10 || got[1] != 20 {
		t.Errorf("got %v, want [10 20]", got)
	}
}

func TestLinearReproducesPlane(t *testing.T) {
	// Linear interpolation must be exact for a planar field z = 2x + 3y + 1.
	xs, ys := unitSquare()
	values := make([]float64, len(xs))
	for i := range xs {
		values[i] = 2*xs[i] + 3*ys[i] + 1
	}

	mesh := meshOver(0.25)
	got, err := Griddata(xs, ys, values, mesh, Linear)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	for row := 0; row < mesh.Rows; row++ {
		for col := 0; col < mesh.Cols; col++ {
			want := 2*mesh.X(col) + 3*mesh.Y(row) + 1
			v := got[row*mesh.Cols+col]
			if math.IsNaN(v) {
				t.Errorf("(%d,%d) inside hull is NaN", row, col)
				continue
			}
			if math.Abs(v-want) > 1e-9 {
				t.Errorf("(%d,%d) = %g, want %g", row, col, v, want)
			}
		}
	}
}

func TestCubicReproducesPlane(t *testing.T) {
	xs, ys := unitSquare()
	values := make([]float64, len(xs))
	for i := range xs {
		values[i] = 2*xs[i] + 3*ys[i] + 1
	}

	mesh := meshOver(0.25)
	got, err := Griddata(xs, ys, values, mesh, Cubic)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	for row := 0; row < mesh.Rows; row++ {
		for col := 0; col < mesh.Cols; col++ {
			want := 2*mesh.X(col) + 3*mesh.Y(row) + 1
			v := got[row*mesh.Cols+col]
			if math.IsNaN(v) {
				t.Errorf("(%d,%d) inside hull is NaN", row, col)
				continue
			}
			if math.Abs(v-want) > 1e-6 {
				t.Errorf("(%d,%d) = %g, want %g", row, col, v, want)
			}
		}
	}
}

func TestLinearNaNOutsideConvexHull(t *testing.T) {
	// Samples cover [0,1]^2, mesh extends to 2: outside nodes must be NaN.
	xs, ys := unitSquare()
	values := []float64{1, 1, 1, 1, 1}
	mesh := Mesh{OriginX: 0, OriginY: 2, Res: 1, Cols: 3, Rows: 3}

	got, err := Griddata(xs, ys, values, mesh, Linear)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	// Node at (2, 2) is far outside the hull
	if !math.IsNaN(got[0*3+2]) {
		t.Errorf("node outside hull = %g, want NaN", got[0*3+2])
	}
	// Node at (0, 0), a sample location, must interpolate
	if math.IsNaN(got[2*3+0]) {
		t.Error("node at sample location is NaN")
	}
}

func TestDegenerateSamplesAllNaN(t *testing.T) {
	mesh := meshOver(0.5)

	// Two points cannot form a triangle
	got, err := Griddata([]float64{0, 1}, []float64{0, 1}, []float64{1, 2}, mesh, Linear)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("two-point linear: node %d = %g, want NaN", i, v)
		}
	}

	// Collinear points have no triangles either
	got, err = Griddata([]float64{0, 0.5, 1}, []float64{0, 0.5, 1}, []float64{1, 2, 3}, mesh, Cubic)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("collinear cubic: node %d = %g, want NaN", i, v)
		}
	}

	// Nearest still works with a single sample
	got, err = Griddata([]float64{0.5}, []float64{0.5}, []float64{7}, mesh, Nearest)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	for i, v := range got {
		if v != 7 {
			t.Errorf("single-point nearest: node %d = %g, want 7", i, v)
		}
	}
}

func TestDuplicateSampleLocations(t *testing.T) {
	// Exact duplicates collapse to the first value instead of breaking the
	// triangulation.
	xs := []float64{0, 1, 0, 1, 0.5, 0.5}
	ys := []float64{0, 0, 1, 1, 0.5, 0.5}
	values := []float64{1, 1, 1, 1, 1, 99}

	got, err := Griddata(xs, ys, values, meshOver(0.5), Linear)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	centre := got[1*3+1] // node at (0.5, 0.5)
	if math.Abs(centre-1) > 1e-9 {
		t.Errorf("centre = %g, want 1 (first duplicate wins)", centre)
	}
}

func TestSamplesWithNaNCoordinatesIgnored(t *testing.T) {
	xs := []float64{0, 1, 0, 1, 0.5, math.NaN()}
	ys := []float64{0, 0, 1, 1, 0.5, 0.5}
	values := []float64{1, 1, 1, 1, 1, 42}

	got, err := Griddata(xs, ys, values, meshOver(0.5), Nearest)
	if err != nil {
		t.Fatalf("Griddata failed: %v", err)
	}
	for i, v := range got {
		if v != 1 {
			t.Errorf("node %d = %g, want 1", i, v)
		}
	}
}
