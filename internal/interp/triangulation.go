package interp

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/fogleman/delaunay"
)

// triangulation holds a Delaunay triangulation of the samples plus an R-tree
// over triangle bounding boxes for point location.
type triangulation struct {
	xs, ys []float64 // deduplicated sample locations
	vals   []float64
	tris   []triangle
	index  *rtreego.Rtree
}

// triangle references three vertices of the triangulation.
type triangle struct {
	v0, v1, v2 int
	rect       rtreego.Rect
}

func (t *triangle) Bounds() rtreego.Rect { return t.rect }

// triangulate builds the triangulation, merging samples at exactly duplicated
// locations (first value wins). Returns nil when the samples are degenerate:
// fewer than three distinct locations, or all collinear.
func triangulate(xs, ys, values []float64) *triangulation {
	type key struct{ x, y float64 }
	seen := make(map[key]struct{}, len(xs))

	tri := &triangulation{
		xs:   make([]float64, 0, len(xs)),
		ys:   make([]float64, 0, len(xs)),
		vals: make([]float64, 0, len(xs)),
	}
	pts := make([]delaunay.Point, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		k := key{xs[i], ys[i]}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		tri.xs = append(tri.xs, xs[i])
		tri.ys = append(tri.ys, ys[i])
		tri.vals = append(tri.vals, values[i])
		pts = append(pts, delaunay.Point{X: xs[i], Y: ys[i]})
	}
	if len(pts) < 3 {
		return nil
	}

	dt, err := delaunay.Triangulate(pts)
	if err != nil || len(dt.Triangles) == 0 {
		// Collinear input has no triangles
		return nil
	}

	tri.tris = make([]triangle, 0, len(dt.Triangles)/3)
	tri.index = rtreego.NewTree(2, 25, 50)
	for i := 0; i+2 < len(dt.Triangles); i += 3 {
		t := triangle{
			v0: dt.Triangles[i],
			v1: dt.Triangles[i+1],
			v2: dt.Triangles[i+2],
		}
		t.rect = tri.triangleRect(t)
		tri.tris = append(tri.tris, t)
		tri.index.Insert(&tri.tris[len(tri.tris)-1])
	}
	return tri
}

func (tri *triangulation) triangleRect(t triangle) rtreego.Rect {
	minX := math.Min(tri.xs[t.v0], math.Min(tri.xs[t.v1], tri.xs[t.v2]))
	maxX := math.Max(tri.xs[t.v0], math.Max(tri.xs[t.v1], tri.xs[t.v2]))
	minY := math.Min(tri.ys[t.v0], math.Min(tri.ys[t.v1], tri.ys[t.v2]))
	maxY := math.Max(tri.ys[t.v0], math.Max(tri.ys[t.v1], tri.ys[t.v2]))

	// R-tree rectangles need non-zero extent
	const epsilon = 1e-12
	lengths := []float64{
		math.Max(maxX-minX, epsilon),
		math.Max(maxY-minY, epsilon),
	}
	rect, _ := rtreego.NewRect(rtreego.Point{minX, minY}, lengths)
	return rect
}

// locate finds the triangle containing (x, y) and its barycentric weights.
// Points on shared edges match whichever candidate the index yields first.
func (tri *triangulation) locate(x, y float64) (t triangle, u, v, w float64, ok bool) {
	const epsilon = 1e-12
	probe, _ := rtreego.NewRect(rtreego.Point{x - epsilon, y - epsilon},
		[]float64{2 * epsilon, 2 * epsilon})

	for _, spatial := range tri.index.SearchIntersect(probe) {
		cand := spatial.(*triangle)
		cu, cv, cw, inside := tri.barycentric(*cand, x, y)
		if inside {
			return *cand, cu, cv, cw, true
		}
	}
	return triangle{}, 0, 0, 0, false
}

// barycentric returns the weights of (x, y) with respect to the triangle's
// vertices, and whether the point lies inside (boundary inclusive).
func (tri *triangulation) barycentric(t triangle, x, y float64) (u, v, w float64, inside bool) {
	x0, y0 := tri.xs[t.v0], tri.ys[t.v0]
	x1, y1 := tri.xs[t.v1], tri.ys[t.v1]
	x2, y2 := tri.xs[t.v2], tri.ys[t.v2]

	denom := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if math.Abs(denom) < 1e-300 {
		return 0, 0, 0, false
	}
	u = ((y1-y2)*(x-x2) + (x2-x1)*(y-y2)) / denom
	v = ((y2-y0)*(x-x2) + (x0-x2)*(y-y2)) / denom
	w = 1 - u - v

	const slack = 1e-9
	if u < -slack || v < -slack || w < -slack {
		return u, v, w, false
	}
	return u, v, w, true
}

// gridLinear evaluates piecewise-linear interpolation at every mesh node.
func (tri *triangulation) gridLinear(mesh Mesh) []float64 {
	out := make([]float64, mesh.Len())
	meshXs := mesh.Xs()
	meshYs := mesh.Ys()
	for row := 0; row < mesh.Rows; row++ {
		for col := 0; col < mesh.Cols; col++ {
			t, u, v, w, ok := tri.locate(meshXs[col], meshYs[row])
			if !ok {
				out[row*mesh.Cols+col] = math.NaN()
				continue
			}
			out[row*mesh.Cols+col] = u*tri.vals[t.v0] + v*tri.vals[t.v1] + w*tri.vals[t.v2]
		}
	}
	return out
}
