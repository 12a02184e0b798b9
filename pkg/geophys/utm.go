package geophys

import (
	"math"

	"github.com/richardt94/geophys-utils/internal/crs"
)

// UTMGridQuery describes a resampling request onto a grid in the local UTM
// zone, with the resolution in metres.
type UTMGridQuery struct {
	// Resolution is the grid cell size in metres (UTM units). Required.
	Resolution float64

	// Variables names the per-point variables to resample. Empty means all
	// measured point variables.
	Variables []string

	// BoundsNative is the area to grid, in the native CRS. If nil, the
	// dataset's own native bounds are used.
	BoundsNative *Bounds

	// Method is the interpolation method. Empty means MethodLinear.
	Method ResampleMethod

	// PointStep decimates the input as in GridQuery.
	PointStep int
}

// GridUTM resamples points onto a regular metric grid in the UTM zone local
// to the requested area: the zone is derived from the centroid of the
// native bounds, and the rest delegates to Grid.
func (d *PointDataset) GridUTM(q UTMGridQuery) (*GridResult, error) {
	bounds := d.bounds
	if q.BoundsNative != nil {
		bounds = *q.BoundsNative
	}

	centre := bounds.Centroid()
	utm, err := crs.LocalUTM(centre.X, centre.Y, d.nativeCRS)
	if err != nil {
		return nil, &ErrReprojection{FromCRS: d.nativeCRS, ToCRS: crs.WGS84, Err: err}
	}

	return d.Grid(GridQuery{
		Resolution:   q.Resolution,
		Variables:    q.Variables,
		BoundsNative: &bounds,
		Method:       q.Method,
		CRS:          utm,
		PointStep:    q.PointStep,
	})
}

// UTMCoords transforms coordinate pairs into the UTM zone local to their
// centroid and returns that zone's descriptor alongside the transformed
// pairs. fromCRS is the system the input pairs are expressed in; empty
// means the dataset's native CRS.
func (d *PointDataset) UTMCoords(coords []Point, fromCRS string) (string, []Point, error) {
	if len(coords) == 0 {
		return "", nil, &ErrInvalidArgument{Reason: "no coordinates supplied"}
	}
	if fromCRS == "" {
		fromCRS = d.nativeCRS
	}

	var sumX, sumY float64
	xs := make([]float64, len(coords))
	ys := make([]float64, len(coords))
	for i, c := range coords {
		xs[i] = c.X
		ys[i] = c.Y
		sumX += c.X
		sumY += c.Y
	}

	utm, err := crs.LocalUTM(sumX/float64(len(coords)), sumY/float64(len(coords)), fromCRS)
	if err != nil {
		return "", nil, &ErrReprojection{FromCRS: fromCRS, ToCRS: crs.WGS84, Err: err}
	}

	outX, outY, err := crs.Transform(xs, ys, fromCRS, utm)
	if err != nil {
		return "", nil, &ErrReprojection{FromCRS: fromCRS, ToCRS: utm, Err: err}
	}
	out := make([]Point, len(coords))
	for i := range out {
		out[i] = Point{X: outX[i], Y: outY[i]}
	}
	return utm, out, nil
}

// CoordsToDistance returns the cumulative distance in metres along a
// coordinate sequence (a transect), measured in the sequence's local UTM
// zone. The first entry is always 0.
func (d *PointDataset) CoordsToDistance(coords []Point, fromCRS string) ([]float64, error) {
	_, utmCoords, err := d.UTMCoords(coords, fromCRS)
	if err != nil {
		return nil, err
	}

	distances := make([]float64, len(utmCoords))
	for i := 1; i < len(utmCoords); i++ {
		dx := utmCoords[i].X - utmCoords[i-1].X
		dy := utmCoords[i].Y - utmCoords[i-1].Y
		distances[i] = distances[i-1] + math.Hypot(dx, dy)
	}
	return distances, nil
}
