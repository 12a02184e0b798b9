package geophys

import "github.com/richardt94/geophys-utils/internal/crs"

// SpatialMask returns a boolean vector over the point dimension, true where
// a point's coordinate lies within the closed rectangle
// [MinX,MaxX] x [MinY,MaxY]. All four edges are inclusive, so points exactly
// on the boundary are included.
//
// If boundsCRS is non-empty and differs from the native CRS, the cached
// coordinates are reprojected into boundsCRS and compared there. A point
// with a NaN coordinate is never inside any rectangle.
//
// The mask is a pure function of the cache and the rectangle: it mutates no
// state, costs O(PointCount) per call, and may be called once per query.
func (d *PointDataset) SpatialMask(bounds Bounds, boundsCRS string) ([]bool, error) {
	xs := d.xs
	ys := d.ys
	if !crs.Identity(d.nativeCRS, boundsCRS) {
		var err error
		xs, ys, err = crs.Transform(d.xs, d.ys, d.nativeCRS, boundsCRS)
		if err != nil {
			return nil, &ErrReprojection{FromCRS: d.nativeCRS, ToCRS: boundsCRS, Err: err}
		}
	}

	mask := make([]bool, d.pointCount)
	for i := range mask {
		mask[i] = bounds.Contains(xs[i], ys[i])
	}
	return mask, nil
}
