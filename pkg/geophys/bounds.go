package geophys

import (
	"math"

	"github.com/richardt94/geophys-utils/internal/crs"
)

// Point is a single coordinate pair in some reference system.
type Point struct {
	X float64
	Y float64
}

// Bounds is an axis-aligned bounding rectangle in some reference system.
//
// For datasets in geographic coordinates X is longitude and Y is latitude;
// for projected datasets X/Y are easting/northing.
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Contains returns true if the point lies within the bounds.
// All four edges are inclusive.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX &&
		y >= b.MinY && y <= b.MaxY
}

// Intersects returns true if the given bounds intersects with this bounds.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxX < b.MinX ||
		other.MinX > b.MaxX ||
		other.MaxY < b.MinY ||
		other.MinY > b.MaxY)
}

// Union returns the smallest bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Expand returns a new Bounds grown by mx on the west and east edges and by
// my on the south and north edges.
func (b Bounds) Expand(mx, my float64) Bounds {
	return Bounds{
		MinX: b.MinX - mx,
		MinY: b.MinY - my,
		MaxX: b.MaxX + mx,
		MaxY: b.MaxY + my,
	}
}

// Width returns the X extent of the bounds.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the Y extent of the bounds.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Centroid returns the centre of the bounds.
func (b Bounds) Centroid() Point {
	return Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

// Corners returns the four corner points, counter-clockwise from the
// lower-left.
func (b Bounds) Corners() [4]Point {
	return [4]Point{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}
}

// ReprojectBounds takes a bounding rectangle expressed in one CRS and
// returns its smallest containing rectangle in another CRS.
//
// All four corners are transformed, not just the two diagonal ones, because
// many reprojections are not corner-monotonic: the extreme ordinates of the
// output rectangle need not come from the extreme corners of the input. The
// result's min/max are re-derived from the transformed corners.
//
// If the descriptors are equal or either is unset, b is returned unchanged
// and no transform is constructed.
func ReprojectBounds(b Bounds, fromCRS, toCRS string) (Bounds, error) {
	if crs.Identity(fromCRS, toCRS) {
		return b, nil
	}

	corners := b.Corners()
	xs := make([]float64, 4)
	ys := make([]float64, 4)
	for i, c := range corners {
		xs[i] = c.X
		ys[i] = c.Y
	}

	outX, outY, err := crs.Transform(xs, ys, fromCRS, toCRS)
	if err != nil {
		return Bounds{}, &ErrReprojection{FromCRS: fromCRS, ToCRS: toCRS, Err: err}
	}

	out := Bounds{MinX: outX[0], MinY: outY[0], MaxX: outX[0], MaxY: outY[0]}
	for i := 1; i < 4; i++ {
		out.MinX = math.Min(out.MinX, outX[i])
		out.MinY = math.Min(out.MinY, outY[i])
		out.MaxX = math.Max(out.MaxX, outX[i])
		out.MaxY = math.Max(out.MaxY, outY[i])
	}
	return out, nil
}
