package geophys

import (
	"math"

	"github.com/richardt94/geophys-utils/internal/crs"
)

// fetchArray copies the named 1-D variable of length n into a freshly
// allocated slice, reading contiguous chunks of at most maxBytes each (the
// final chunk may be shorter). Element order is preserved exactly; nothing
// is aggregated or skipped.
func fetchArray(src Source, name string, n, maxBytes int) ([]float64, error) {
	elemSize := src.ElemSize(name)
	if elemSize <= 0 {
		elemSize = 8
	}
	chunk := maxBytes / elemSize
	if chunk < 1 {
		chunk = 1
	}

	out := make([]float64, n)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		if err := src.ReadFloat64s(name, start, end, out[start:end]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// buildCoordinateCache materializes the X/Y coordinate pairs for every
// point. The cache is immutable for the lifetime of the dataset.
func (d *PointDataset) buildCoordinateCache() error {
	if !d.hasVariable("longitude") {
		return &ErrDatasetShape{Reason: "missing coordinate variable \"longitude\""}
	}
	if !d.hasVariable("latitude") {
		return &ErrDatasetShape{Reason: "missing coordinate variable \"latitude\""}
	}

	xs, err := fetchArray(d.src, "longitude", d.pointCount, d.opts.MaxTransferBytes)
	if err != nil {
		return err
	}
	ys, err := fetchArray(d.src, "latitude", d.pointCount, d.opts.MaxTransferBytes)
	if err != nil {
		return err
	}
	d.xs = xs
	d.ys = ys
	return nil
}

// deriveBounds computes the native axis-aligned bounds (ignoring NaN
// coordinates), the native 4-corner bounding box, and its WGS-84
// reprojection.
func (d *PointDataset) deriveBounds() error {
	minX, maxX := nanMinMax(d.xs)
	minY, maxY := nanMinMax(d.ys)
	if math.IsNaN(minX) || math.IsNaN(minY) {
		return &ErrDatasetShape{Reason: "no valid coordinates in dataset"}
	}

	d.bounds = Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	d.nativeBBox = d.bounds.Corners()

	if d.nativeCRS == "" || d.nativeCRS == WGS84 {
		d.wgs84BBox = d.nativeBBox
		return nil
	}

	cornerX := make([]float64, 4)
	cornerY := make([]float64, 4)
	for i, c := range d.nativeBBox {
		cornerX[i] = c.X
		cornerY[i] = c.Y
	}
	outX, outY, err := crs.Transform(cornerX, cornerY, d.nativeCRS, WGS84)
	if err != nil {
		return &ErrReprojection{FromCRS: d.nativeCRS, ToCRS: WGS84, Err: err}
	}
	for i := range d.wgs84BBox {
		d.wgs84BBox[i] = Point{X: outX[i], Y: outY[i]}
	}
	return nil
}

// nanMinMax returns the minimum and maximum of vs ignoring NaN entries.
// Both results are NaN when no valid value exists.
func nanMinMax(vs []float64) (min, max float64) {
	min = math.NaN()
	max = math.NaN()
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return min, max
}
