package interp

import "math"

// Cubic interpolation evaluates a cubic Bezier patch on each Delaunay
// triangle. Control points are derived from the corner values and estimated
// corner gradients, with the interior control point chosen so that quadratic
// surfaces are reproduced exactly.

// gridCubic evaluates the cubic patches at every mesh node.
func (tri *triangulation) gridCubic(mesh Mesh) []float64 {
	gx, gy := tri.vertexGradients()

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
			out[row*mesh.Cols+col] = tri.bezierPatch(t, gx, gy, u, v, w)
		}
	}
	return out
}

// vertexGradients estimates the surface gradient at every vertex by a
// least-squares fit over the vertices it shares a triangle edge with.
// Vertices with degenerate neighbourhoods get a zero gradient, which
// reduces the patch towards the linear interpolant there.
func (tri *triangulation) vertexGradients() (gx, gy []float64) {
	n := len(tri.xs)
	gx = make([]float64, n)
	gy = make([]float64, n)

	neighbors := make(map[int]map[int]struct{}, n)
	link := func(a, b int) {
		if neighbors[a] == nil {
			neighbors[a] = make(map[int]struct{})
		}
		neighbors[a][b] = struct{}{}
	}
	for _, t := range tri.tris {
		link(t.v0, t.v1)
		link(t.v0, t.v2)
		link(t.v1, t.v0)
		link(t.v1, t.v2)
		link(t.v2, t.v0)
		link(t.v2, t.v1)
	}

	for i := 0; i < n; i++ {
		// Normal equations for dz = gx*dx + gy*dy over the neighbours
		var sxx, sxy, syy, sxz, syz float64
		for j := range neighbors[i] {
			dx := tri.xs[j] - tri.xs[i]
			dy := tri.ys[j] - tri.ys[i]
			dz := tri.vals[j] - tri.vals[i]
			if math.IsNaN(dz) {
				continue
			}
			sxx += dx * dx
			sxy += dx * dy
			syy += dy * dy
			sxz += dx * dz
			syz += dy * dz
		}
		det := sxx*syy - sxy*sxy
		if math.Abs(det) < 1e-300 {
			continue
		}
		gx[i] = (sxz*syy - syz*sxy) / det
		gy[i] = (syz*sxx - sxz*sxy) / det
	}
	return gx, gy
}

// bezierPatch evaluates the cubic Bezier triangle for barycentric (u, v, w).
func (tri *triangulation) bezierPatch(t triangle, gx, gy []float64, u, v, w float64) float64 {
	x0, y0, z0 := tri.xs[t.v0], tri.ys[t.v0], tri.vals[t.v0]
	x1, y1, z1 := tri.xs[t.v1], tri.ys[t.v1], tri.vals[t.v1]
	x2, y2, z2 := tri.xs[t.v2], tri.ys[t.v2], tri.vals[t.v2]

	// Edge control points: corner value plus a third of the directional
	// derivative towards the opposite corner.
	b300 := z0
	b030 := z1
	b003 := z2
	b210 := z0 + ((x1-x0)*gx[t.v0]+(y1-y0)*gy[t.v0])/3
	b201 := z0 + ((x2-x0)*gx[t.v0]+(y2-y0)*gy[t.v0])/3
	b120 := z1 + ((x0-x1)*gx[t.v1]+(y0-y1)*gy[t.v1])/3
	b021 := z1 + ((x2-x1)*gx[t.v1]+(y2-y1)*gy[t.v1])/3
	b102 := z2 + ((x0-x2)*gx[t.v2]+(y0-y2)*gy[t.v2])/3
	b012 := z2 + ((x1-x2)*gx[t.v2]+(y1-y2)*gy[t.v2])/3

	// Interior control point with quadratic precision
	e := (b210 + b201 + b120 + b021 + b102 + b012) / 6
	vbar := (b300 + b030 + b003) / 3
	b111 := e + (e-vbar)/2

	u2, v2, w2 := u*u, v*v, w*w
	return b300*u2*u + b030*v2*v + b003*w2*w +
		3*(b210*u2*v+b201*u2*w+b120*u*v2+b021*v2*w+b102*u*w2+b012*v*w2) +
		6*b111*u*v*w
}
