package geophys

import (
	"fmt"
	"math"

	"github.com/richardt94/geophys-utils/internal/crs"
	"github.com/richardt94/geophys-utils/internal/interp"
)

// ResampleMethod selects the scattered-data interpolation algorithm used by
// Grid.
type ResampleMethod string

const (
	// MethodLinear interpolates linearly within a triangulation of the
	// points. Cells outside the convex hull of the points are NaN.
	MethodLinear ResampleMethod = "linear"

	// MethodNearest assigns every cell the value of the closest point and
	// never produces NaN while at least one point survives masking.
	MethodNearest ResampleMethod = "nearest"

	// MethodCubic interpolates with cubic patches over a triangulation.
	// Cells outside the convex hull of the points are NaN.
	MethodCubic ResampleMethod = "cubic"
)

func (m ResampleMethod) valid() bool {
	switch m {
	case MethodLinear, MethodNearest, MethodCubic:
		return true
	}
	return false
}

// GeoTransform is a GDAL-order affine transform mapping pixel indices to
// coordinates: {originX, cellWidth, 0, originY, 0, cellHeight}. The origin
// is the outer corner of the top-left pixel (half a cell outside the first
// pixel centre) and cellHeight is negative: rows grow downward while Y
// decreases, image-style.
type GeoTransform [6]float64

// Apply maps fractional pixel coordinates to real-world coordinates.
// (0, 0) is the grid origin; (col+0.5, row+0.5) is a pixel centre.
func (gt GeoTransform) Apply(col, row float64) (x, y float64) {
	x = gt[0] + col*gt[1] + row*gt[2]
	y = gt[3] + col*gt[4] + row*gt[5]
	return x, y
}

// GridQuery describes one resampling request.
type GridQuery struct {
	// Resolution is the grid cell size, in the linear units of the grid
	// CRS. Required.
	Resolution float64

	// Variables names the per-point variables to resample. Empty means all
	// measured point variables (see PointVariables).
	Variables []string

	// BoundsNative is the area to grid, expressed in the native CRS.
	// Mutually exclusive with BoundsGrid. If neither is set, the dataset's
	// own native bounds are used.
	BoundsNative *Bounds

	// BoundsGrid is the area to grid, expressed in the grid CRS.
	// Mutually exclusive with BoundsNative.
	BoundsGrid *Bounds

	// Method is the interpolation method. Empty means MethodLinear.
	Method ResampleMethod

	// CRS is the grid's reference system. Empty means the native CRS.
	CRS string

	// PointStep decimates the input: only every Nth point by raw index is
	// used, independent of spatial position. Reduces memory and time on
	// very dense datasets. 0 or 1 means every point.
	PointStep int
}

// Grid is one resampled raster. Values are row-major with row 0 at the top
// of the raster (maximum Y).
type Grid struct {
	cols      int
	rows      int
	values    []float64
	crs       string
	transform GeoTransform
}

// Dims returns the number of columns and rows.
func (g *Grid) Dims() (cols, rows int) { return g.cols, g.rows }

// Z returns the value of the cell at (col, row).
func (g *Grid) Z(col, row int) float64 { return g.values[row*g.cols+col] }

// X returns the centre X coordinate of a column.
func (g *Grid) X(col int) float64 {
	x, _ := g.transform.Apply(float64(col)+0.5, 0.5)
	return x
}

// Y returns the centre Y coordinate of a row.
func (g *Grid) Y(row int) float64 {
	_, y := g.transform.Apply(0.5, float64(row)+0.5)
	return y
}

// Values returns the raw row-major cell values, row 0 at the top.
func (g *Grid) Values() []float64 { return g.values }

// CRS returns the reference system the grid is expressed in.
func (g *Grid) CRS() string { return g.crs }

// Transform returns the grid's pixel-to-coordinate affine transform.
func (g *Grid) Transform() GeoTransform { return g.transform }

// GridResult holds the rasters produced by one Grid call, keyed by variable
// name, plus the CRS and affine transform they share.
type GridResult struct {
	Grids     map[string]*Grid
	CRS       string
	Transform GeoTransform
}

// Grid resamples irregularly-spaced point measurements onto a regular
// raster at the requested resolution and CRS.
//
// The requested rectangle is snapped outward to whole multiples of the
// resolution, so the emitted grid always fully covers it and every pixel
// centre lands on a resolution-aligned position. Point selection uses a
// rectangle a further 2% wider on each edge, so interpolation at the
// requested boundary is not starved of neighbouring points.
//
// Fewer than one surviving point after masking yields all-NaN grids, not an
// error. MethodLinear and MethodCubic also yield all-NaN when the survivors
// do not span a triangle, and NaN cells outside the survivors' convex hull.
//
// Returns *ErrInvalidArgument when both bounds kinds are supplied (no
// partial work is performed) and *ErrUnknownVariable for a variable name
// absent from the dataset.
func (d *PointDataset) Grid(q GridQuery) (*GridResult, error) {
	if q.Resolution <= 0 {
		return nil, &ErrInvalidArgument{Reason: "resolution must be positive"}
	}
	if q.BoundsNative != nil && q.BoundsGrid != nil {
		return nil, &ErrInvalidArgument{
			Reason: "BoundsNative and BoundsGrid are mutually exclusive"}
	}
	method := q.Method
	if method == "" {
		method = MethodLinear
	}
	if !method.valid() {
		return nil, &ErrInvalidArgument{
			Reason: fmt.Sprintf("unknown resampling method %q", method)}
	}

	variables := q.Variables
	if len(variables) == 0 {
		variables = d.PointVariables()
	}
	if len(variables) == 0 {
		return nil, &ErrInvalidArgument{Reason: "no variables to grid"}
	}
	for _, name := range variables {
		if !d.hasVariable(name) {
			return nil, &ErrUnknownVariable{Name: name}
		}
	}

	gridCRS := q.CRS
	if gridCRS == "" {
		gridCRS = d.nativeCRS
	}

	// Resolve both the native-CRS and grid-CRS rectangles regardless of
	// which one the caller supplied.
	var gridBounds Bounds
	var err error
	switch {
	case q.BoundsNative != nil:
		gridBounds, err = ReprojectBounds(*q.BoundsNative, d.nativeCRS, gridCRS)
	case q.BoundsGrid != nil:
		gridBounds = *q.BoundsGrid
	default:
		gridBounds, err = ReprojectBounds(d.bounds, d.nativeCRS, gridCRS)
	}
	if err != nil {
		return nil, err
	}

	snapped := snapOutward(gridBounds, q.Resolution)
	expanded := snapped.Expand(snapped.Width()*0.02, snapped.Height()*0.02)
	expandedNative, err := ReprojectBounds(expanded, gridCRS, d.nativeCRS)
	if err != nil {
		return nil, err
	}

	mask, err := d.SpatialMask(expandedNative, "")
	if err != nil {
		return nil, err
	}
	step := q.PointStep
	if step < 1 {
		step = 1
	}
	if step > 1 {
		for i := range mask {
			if i%step != 0 {
				mask[i] = false
			}
		}
	}

	var indices []int
	var xs, ys []float64
	for i, keep := range mask {
		if !keep {
			continue
		}
		indices = append(indices, i)
		xs = append(xs, d.xs[i])
		ys = append(ys, d.ys[i])
	}
	d.logger.Debug("grid point subset computed",
		"points", len(indices), "of", d.pointCount, "step", step)

	if !crs.Identity(d.nativeCRS, gridCRS) {
		xs, ys, err = crs.Transform(xs, ys, d.nativeCRS, gridCRS)
		if err != nil {
			return nil, &ErrReprojection{FromCRS: d.nativeCRS, ToCRS: gridCRS, Err: err}
		}
	}

	mesh := interp.Mesh{
		OriginX: snapped.MinX,
		OriginY: snapped.MaxY,
		Res:     q.Resolution,
		Cols:    int(math.Round(snapped.Width()/q.Resolution)) + 1,
		Rows:    int(math.Round(snapped.Height()/q.Resolution)) + 1,
	}
	transform := GeoTransform{
		snapped.MinX - q.Resolution/2,
		q.Resolution,
		0,
		snapped.MaxY + q.Resolution/2,
		0,
		-q.Resolution,
	}

	result := &GridResult{
		Grids:     make(map[string]*Grid, len(variables)),
		CRS:       gridCRS,
		Transform: transform,
	}
	for _, name := range variables {
		all, err := fetchArray(d.src, name, d.pointCount, d.opts.MaxTransferBytes)
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(indices))
		for i, idx := range indices {
			values[i] = all[idx]
		}

		d.logger.Debug("interpolating variable onto grid",
			"variable", name, "method", string(method),
			"cols", mesh.Cols, "rows", mesh.Rows)
		cells, err := interp.Griddata(xs, ys, values, mesh, interp.Method(method))
		if err != nil {
			return nil, err
		}
		result.Grids[name] = &Grid{
			cols:      mesh.Cols,
			rows:      mesh.Rows,
			values:    cells,
			crs:       gridCRS,
			transform: transform,
		}
	}
	return result, nil
}

// GridOne resamples a single variable and returns its grid directly.
func (d *PointDataset) GridOne(name string, q GridQuery) (*Grid, error) {
	q.Variables = []string{name}
	result, err := d.Grid(q)
	if err != nil {
		return nil, err
	}
	return result.Grids[name], nil
}

// snapOutward grows a rectangle to the nearest enclosing multiples of res on
// every edge. Edges already on a multiple stay put (epsilon-guarded against
// floating point drift), so snapping is stable under repetition.
func snapOutward(b Bounds, res float64) Bounds {
	return Bounds{
		MinX: snapDown(b.MinX, res),
		MinY: snapDown(b.MinY, res),
		MaxX: snapUp(b.MaxX, res),
		MaxY: snapUp(b.MaxY, res),
	}
}

const snapEpsilon = 1e-9

func snapDown(v, res float64) float64 { return math.Floor(v/res+snapEpsilon) * res }
func snapUp(v, res float64) float64   { return math.Ceil(v/res-snapEpsilon) * res }
