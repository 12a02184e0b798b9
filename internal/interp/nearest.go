package interp

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// sample is one scattered measurement, a kdtree.Comparable over its location.
type sample struct {
	x, y float64
	val  float64
}

func (s sample) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	o := c.(sample)
	switch d {
	case 0:
		return s.x - o.x
	default:
		return s.y - o.y
	}
}

func (s sample) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between sample locations.
func (s sample) Distance(c kdtree.Comparable) float64 {
	o := c.(sample)
	dx := s.x - o.x
	dy := s.y - o.y
	return dx*dx + dy*dy
}

// samples implements kdtree.Interface.
type samples []sample

func (s samples) Index(i int) kdtree.Comparable         { return s[i] }
func (s samples) Len() int                              { return len(s) }
func (s samples) Slice(start, end int) kdtree.Interface { return s[start:end] }
func (s samples) Pivot(d kdtree.Dim) int {
	return samplePlane{samples: s, Dim: d}.Pivot()
}

// samplePlane sorts samples along one axis for kd-tree construction.
type samplePlane struct {
	kdtree.Dim
	samples
}

func (p samplePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.samples[i].x < p.samples[j].x
	default:
		return p.samples[i].y < p.samples[j].y
	}
}

func (p samplePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	p.samples = p.samples[start:end]
	return p
}

func (p samplePlane) Swap(i, j int) {
	p.samples[i], p.samples[j] = p.samples[j], p.samples[i]
}

// gridNearest assigns every mesh node the value of its closest sample.
func gridNearest(xs, ys, values []float64, mesh Mesh) []float64 {
	data := make(samples, 0, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		data = append(data, sample{x: xs[i], y: ys[i], val: values[i]})
	}
	if len(data) == 0 {
		return nanGrid(mesh)
	}

	tree := kdtree.New(data, false)

	out := make([]float64, mesh.Len())
	meshXs := mesh.Xs()
	meshYs := mesh.Ys()
	for row := 0; row < mesh.Rows; row++ {
		for col := 0; col < mesh.Cols; col++ {
			got, _ := tree.Nearest(sample{x: meshXs[col], y: meshYs[row]})
			out[row*mesh.Cols+col] = got.(sample).val
		}
	}
	return out
}
