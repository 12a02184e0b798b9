package geophys

import (
	"fmt"
	"math"
	"sort"

	"github.com/richardt94/geophys-utils/internal/crs"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// NeighborQuery describes a k-nearest-neighbour lookup.
type NeighborQuery struct {
	// X, Y is the query coordinate, expressed in CRS.
	X float64
	Y float64

	// CRS is the reference system of the query coordinate. Empty means the
	// dataset's native CRS.
	CRS string

	// K is the number of neighbours to return. 0 means 1.
	K int

	// MaxDistance bounds the search radius in native-CRS units. Callers are
	// strongly advised to set it whenever the dataset may be large: it
	// narrows the search to an ephemeral index over a small spatial subset
	// instead of fanning out over the full dataset. 0 means unbounded.
	MaxDistance float64

	// SecondaryMask, if non-nil, restricts candidates to an arbitrary
	// caller-chosen subset of points (for example, points belonging to one
	// survey line). Must have length PointCount. It composes with, but is
	// independent from, spatial filtering.
	SecondaryMask []bool
}

// Neighbor is one nearest-neighbour result.
type Neighbor struct {
	// Index is the point's index in the original dataset, valid for
	// indexing any per-point variable.
	Index int

	// Distance is the Euclidean distance from the query coordinate, in
	// native-CRS units (not necessarily metres: reproject into a local
	// projected CRS first for metric distances).
	Distance float64
}

// NearestNeighbors returns the K nearest points to the query coordinate,
// sorted by ascending distance. Ordering among exactly equidistant points is
// unspecified.
//
// With MaxDistance set, the search builds an ephemeral KD-tree over just the
// points inside the distance window (intersected with SecondaryMask); every
// returned distance is <= MaxDistance. Without it, a cached full-dataset
// tree is built on first use and reused; a SecondaryMask still forces an
// ephemeral caller-scoped tree, since the cached tree carries no mask state.
//
// An empty candidate set is not an error: the result is simply empty.
func (d *PointDataset) NearestNeighbors(q NeighborQuery) ([]Neighbor, error) {
	k := q.K
	if k < 1 {
		k = 1
	}
	if q.SecondaryMask != nil && len(q.SecondaryMask) != d.pointCount {
		return nil, &ErrInvalidArgument{
			Reason: fmt.Sprintf("secondary mask length %d != point count %d",
				len(q.SecondaryMask), d.pointCount),
		}
	}

	x, y := q.X, q.Y
	if !crs.Identity(q.CRS, d.nativeCRS) {
		var err error
		x, y, err = crs.TransformPoint(q.X, q.Y, q.CRS, d.nativeCRS)
		if err != nil {
			return nil, &ErrReprojection{FromCRS: q.CRS, ToCRS: d.nativeCRS, Err: err}
		}
	}

	if q.MaxDistance > 0 {
		return d.queryBounded(x, y, k, q.MaxDistance, q.SecondaryMask)
	}
	if q.SecondaryMask != nil {
		return d.queryMasked(x, y, k, q.SecondaryMask)
	}
	return queryTree(d.fullTree(), x, y, k, 0), nil
}

// queryBounded searches an ephemeral tree over the points inside the
// distance window around the query coordinate.
func (d *PointDataset) queryBounded(x, y float64, k int, maxDistance float64, secondary []bool) ([]Neighbor, error) {
	d.logger.Debug("computing spatial subset mask",
		"x", x, "y", y, "max_distance", maxDistance)

	window := Bounds{
		MinX: x - maxDistance,
		MinY: y - maxDistance,
		MaxX: x + maxDistance,
		MaxY: y + maxDistance,
	}
	spatial, err := d.SpatialMask(window, "")
	if err != nil {
		return nil, err
	}
	if secondary != nil {
		for i := range spatial {
			spatial[i] = spatial[i] && secondary[i]
		}
	}

	pts := d.maskedPoints(spatial)
	if len(pts) == 0 {
		d.logger.Debug("no points within distance of query coordinate",
			"max_distance", maxDistance)
		return nil, nil
	}

	d.logger.Debug("indexing spatial subset into KD-tree", "points", len(pts))
	tree := kdtree.New(pts, false)
	return queryTree(tree, x, y, k, maxDistance), nil
}

// queryMasked searches an ephemeral tree scoped to a secondary mask with no
// distance bound.
func (d *PointDataset) queryMasked(x, y float64, k int, secondary []bool) ([]Neighbor, error) {
	pts := d.maskedPoints(secondary)
	if len(pts) == 0 {
		return nil, nil
	}
	d.logger.Debug("indexing masked subset into KD-tree", "points", len(pts))
	tree := kdtree.New(pts, false)
	return queryTree(tree, x, y, k, 0), nil
}

// fullTree returns the cached full-dataset KD-tree, building it on first
// use. The tree is static: it is invalidated only by Close.
func (d *PointDataset) fullTree() *kdtree.Tree {
	d.treeOnce.Do(func() {
		d.logger.Debug("indexing full dataset into KD-tree", "points", d.pointCount)
		pts := make(indexedPoints, 0, d.pointCount)
		for i := 0; i < d.pointCount; i++ {
			if math.IsNaN(d.xs[i]) || math.IsNaN(d.ys[i]) {
				continue
			}
			pts = append(pts, indexedPoint{x: d.xs[i], y: d.ys[i], idx: i})
		}
		d.tree = kdtree.New(pts, false)
		d.logger.Debug("finished indexing full dataset into KD-tree")
	})
	return d.tree
}

// maskedPoints collects the tree input for the points where mask is true,
// each carrying its original dataset index.
func (d *PointDataset) maskedPoints(mask []bool) indexedPoints {
	var pts indexedPoints
	for i, keep := range mask {
		if !keep || math.IsNaN(d.xs[i]) || math.IsNaN(d.ys[i]) {
			continue
		}
		pts = append(pts, indexedPoint{x: d.xs[i], y: d.ys[i], idx: i})
	}
	return pts
}

// queryTree runs a k-nearest query and converts the keeper contents into
// Neighbors with original dataset indices. maxDistance 0 means unbounded.
func queryTree(tree *kdtree.Tree, x, y float64, k int, maxDistance float64) []Neighbor {
	keeper := kdtree.NewNKeeper(k)
	tree.NearestSet(keeper, indexedPoint{x: x, y: y, idx: -1})

	out := make([]Neighbor, 0, keeper.Heap.Len())
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil || math.IsInf(cd.Dist, 1) {
			continue
		}
		dist := math.Sqrt(cd.Dist)
		if maxDistance > 0 && dist > maxDistance {
			continue
		}
		out = append(out, Neighbor{
			Index:    cd.Comparable.(indexedPoint).idx,
			Distance: dist,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// indexedPoint is a cached coordinate pair carrying its original dataset
// index, a kdtree.Comparable over the coordinate.
type indexedPoint struct {
	x, y float64
	idx  int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	o := c.(indexedPoint)
	switch d {
	case 0:
		return p.x - o.x
	default:
		return p.y - o.y
	}
}

func (p indexedPoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between point locations.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	o := c.(indexedPoint)
	dx := p.x - o.x
	dy := p.y - o.y
	return dx*dx + dy*dy
}

// indexedPoints implements kdtree.Interface.
type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p indexedPoints) Len() int                              { return len(p) }
func (p indexedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p indexedPoints) Pivot(d kdtree.Dim) int {
	return indexedPlane{indexedPoints: p, Dim: d}.Pivot()
}

// indexedPlane sorts indexedPoints along one axis for kd-tree construction.
type indexedPlane struct {
	kdtree.Dim
	indexedPoints
}

func (p indexedPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.indexedPoints[i].x < p.indexedPoints[j].x
	default:
		return p.indexedPoints[i].y < p.indexedPoints[j].y
	}
}

func (p indexedPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p indexedPlane) Slice(start, end int) kdtree.SortSlicer {
	p.indexedPoints = p.indexedPoints[start:end]
	return p
}

func (p indexedPlane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}
