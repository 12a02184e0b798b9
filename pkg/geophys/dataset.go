// Package geophys indexes and resamples point-cloud geophysical survey
// datasets.
//
// A PointDataset wraps an already-open Source (one record per measurement
// point, each with a longitude/latitude pair and one or more measured
// variables) and provides fast nearest-neighbour lookup, spatial membership
// masking, and resampling of the irregular points onto regular raster grids
// in an arbitrary coordinate reference system.
//
// Coordinate reference systems are identified by opaque PROJ.4 descriptor
// strings throughout.
package geophys

import (
	"io"
	"log/slog"
	"sync"

	"github.com/richardt94/geophys-utils/internal/crs"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// WGS84 is the PROJ.4 descriptor for geographic WGS-84 coordinates
// (EPSG:4326), the common system used for cross-dataset comparison.
const WGS84 = crs.WGS84

// bookkeepingVariables are point-dimension variables that carry no measured
// data and are excluded from PointVariables and default gridding.
var bookkeepingVariables = map[string]bool{
	"longitude":     true,
	"latitude":      true,
	"point":         true,
	"fiducial":      true,
	"flag_linetype": true,
}

// PointDataset represents one opened survey dataset.
//
// Construction materializes a coordinate cache (native-CRS X/Y pairs for
// every point) and derives the dataset's native and WGS-84 bounding boxes.
// Downstream operations never re-read the source's coordinate variables;
// they work against the cache, whose point ordering is index-aligned with
// every other per-point variable.
//
// A PointDataset provides no internal locking. Callers sharing one instance
// across goroutines must serialize access or open one dataset per worker.
type PointDataset struct {
	src    Source
	opts   Options
	logger *slog.Logger

	pointCount int
	unlimited  bool
	nativeCRS  string

	// Coordinate cache: immutable once built, index-aligned with the point
	// dimension.
	xs []float64
	ys []float64

	bounds     Bounds
	nativeBBox [4]Point
	wgs84BBox  [4]Point

	// Full-dataset KD-tree, built lazily at most once.
	treeOnce sync.Once
	tree     *kdtree.Tree
}

// Open opens a point dataset over the given source with default options.
//
// Example:
//
//	src, err := netcdf.Open("survey.nc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds, err := geophys.Open(src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ds.Close()
func Open(src Source) (*PointDataset, error) {
	return OpenWithOptions(src, DefaultOptions())
}

// OpenWithOptions opens a point dataset with custom options.
//
// The point count is snapshotted at construction time: even if the source's
// point dimension is unlimited and later grows, this dataset keeps operating
// on the points present now.
//
// Returns *ErrDatasetShape if the source lacks longitude/latitude variables
// or its point dimension is empty, and *ErrReprojection if the native bounds
// cannot be expressed in WGS-84.
func OpenWithOptions(src Source, opts Options) (*PointDataset, error) {
	if opts.MaxTransferBytes <= 0 {
		opts.MaxTransferBytes = DefaultOptions().MaxTransferBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	n, unlimited := src.PointCount()
	if n <= 0 {
		return nil, &ErrDatasetShape{Reason: "point dimension is empty"}
	}

	d := &PointDataset{
		src:        src,
		opts:       opts,
		logger:     logger,
		pointCount: n,
		unlimited:  unlimited,
		nativeCRS:  src.CRS(),
	}

	if err := d.buildCoordinateCache(); err != nil {
		return nil, err
	}
	if err := d.deriveBounds(); err != nil {
		return nil, err
	}
	return d, nil
}

// Close releases the coordinate cache and any cached spatial index.
//
// The dataset must not be used after Close. The underlying source is not
// closed; it belongs to the caller.
func (d *PointDataset) Close() error {
	d.xs = nil
	d.ys = nil
	d.tree = nil
	return nil
}

// PointCount returns the number of points, fixed at construction time.
func (d *PointDataset) PointCount() int { return d.pointCount }

// Unlimited reports whether the source's point dimension may grow.
func (d *PointDataset) Unlimited() bool { return d.unlimited }

// NativeCRS returns the dataset's native reference system descriptor, or ""
// if the source declared none (coordinates are then treated as WGS-84-like
// and never transformed implicitly).
func (d *PointDataset) NativeCRS() string { return d.nativeCRS }

// Bounds returns the axis-aligned bounding rectangle of all valid
// coordinates, in the native CRS.
func (d *PointDataset) Bounds() Bounds { return d.bounds }

// NativeBBox returns the four corners of the native bounding box,
// counter-clockwise from the lower-left.
func (d *PointDataset) NativeBBox() [4]Point { return d.nativeBBox }

// WGS84BBox returns the native bounding box corners reprojected to WGS-84,
// for cross-dataset comparison. The reprojected polygon is generally not
// axis-aligned.
func (d *PointDataset) WGS84BBox() [4]Point { return d.wgs84BBox }

// WGS84Bounds returns the axis-aligned envelope of the WGS-84 bounding box.
func (d *PointDataset) WGS84Bounds() Bounds {
	b := Bounds{
		MinX: d.wgs84BBox[0].X, MinY: d.wgs84BBox[0].Y,
		MaxX: d.wgs84BBox[0].X, MaxY: d.wgs84BBox[0].Y,
	}
	for _, c := range d.wgs84BBox[1:] {
		b = b.Union(Bounds{MinX: c.X, MinY: c.Y, MaxX: c.X, MaxY: c.Y})
	}
	return b
}

// Coordinate returns the cached native-CRS coordinate of point i.
func (d *PointDataset) Coordinate(i int) (x, y float64) {
	return d.xs[i], d.ys[i]
}

// PointVariables returns the names of the measured per-point variables:
// everything on the point dimension except coordinates and bookkeeping
// variables such as "fiducial".
func (d *PointDataset) PointVariables() []string {
	var names []string
	for _, name := range d.src.Variables() {
		if !bookkeepingVariables[name] {
			names = append(names, name)
		}
	}
	return names
}

// ReadVariable copies an entire per-point variable out of the source,
// chunked so that no single transfer exceeds MaxTransferBytes. The result
// is index-aligned with the coordinate cache.
//
// Returns *ErrUnknownVariable if the source has no such variable.
func (d *PointDataset) ReadVariable(name string) ([]float64, error) {
	if !d.hasVariable(name) {
		return nil, &ErrUnknownVariable{Name: name}
	}
	return fetchArray(d.src, name, d.pointCount, d.opts.MaxTransferBytes)
}

func (d *PointDataset) hasVariable(name string) bool {
	for _, v := range d.src.Variables() {
		if v == name {
			return true
		}
	}
	return false
}
