package geophys_test

import (
	"errors"
	"math"
	"testing"

	"github.com/richardt94/geophys-utils/pkg/geophys"
)

// fivePointSource returns the canonical test dataset: four corners of the
// unit square plus its centre, with a constant "mag" variable.
func fivePointSource(crs string) *geophys.MemorySource {
	src := geophys.NewMemorySource(crs)
	src.SetVariable("longitude", []float64{0, 1, 0, 1, 0.5})
	src.SetVariable("latitude", []float64{0, 0, 1, 1, 0.5})
	src.SetVariable("mag", []float64{1, 1, 1, 1, 1})
	src.SetVariable("fiducial", []float64{100, 101, 102, 103, 104})
	return src
}

func openFivePoints(t *testing.T) *geophys.PointDataset {
	t.Helper()
	d, err := geophys.Open(fivePointSource(geophys.WGS84))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDatasetBounds(t *testing.T) {
	d := openFivePoints(t)

	b := d.Bounds()
	if b != (geophys.Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}) {
		t.Errorf("Bounds = %+v, want unit square", b)
	}

	corners := d.NativeBBox()
	wantCorners := [4]geophys.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if corners != wantCorners {
		t.Errorf("NativeBBox = %v, want %v", corners, wantCorners)
	}

	// Native CRS is already WGS-84: the WGS-84 bbox is the native bbox
	if d.WGS84BBox() != wantCorners {
		t.Errorf("WGS84BBox = %v, want %v", d.WGS84BBox(), wantCorners)
	}
	if d.WGS84Bounds() != b {
		t.Errorf("WGS84Bounds = %+v, want %+v", d.WGS84Bounds(), b)
	}
}

func TestPointVariablesExcludeBookkeeping(t *testing.T) {
	d := openFivePoints(t)

	vars := d.PointVariables()
	if len(vars) != 1 || vars[0] != "mag" {
		t.Errorf("PointVariables = %v, want [mag]", vars)
	}
}

func TestSpatialMaskScenario(t *testing.T) {
	d := openFivePoints(t)

	mask, err := d.SpatialMask(geophys.Bounds{MinX: 0, MinY: 0, MaxX: 0.5, MaxY: 0.5}, "")
	if err != nil {
		t.Fatalf("SpatialMask failed: %v", err)
	}
	want := []bool{true, false, false, false, true}
	for i := range want {
		if mask[i] != want[i] {
			t.Errorf("mask[%d] = %v, want %v", i, mask[i], want[i])
		}
	}
}

// Points exactly on the rectangle boundary are included: all four edges are
// inclusive.
func TestSpatialMaskInclusiveBoundary(t *testing.T) {
	d := openFivePoints(t)

	mask, err := d.SpatialMask(geophys.Bounds{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}, "")
	if err != nil {
		t.Fatalf("SpatialMask failed: %v", err)
	}
	for i, in := range mask {
		if !in {
			t.Errorf("point %d on the boundary excluded", i)
		}
	}
}

// The mask is a pure function of the cache and the rectangle.
func TestSpatialMaskIdempotent(t *testing.T) {
	d := openFivePoints(t)

	rect := geophys.Bounds{MinX: 0.25, MinY: 0.25, MaxX: 0.75, MaxY: 0.75}
	first, err := d.SpatialMask(rect, "")
	if err != nil {
		t.Fatalf("SpatialMask failed: %v", err)
	}
	second, err := d.SpatialMask(rect, "")
	if err != nil {
		t.Fatalf("SpatialMask failed: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("mask differs at %d between identical calls", i)
		}
	}
}

func TestSpatialMaskForeignCRS(t *testing.T) {
	d := openFivePoints(t)

	// A rectangle in a local transverse Mercator system centred on the data
	merc := "+proj=tmerc +lat_0=0 +lon_0=0 +k=0.9996 +x_0=500000 +y_0=0 +datum=WGS84 +units=m +no_defs"

	// The whole unit square in degrees is roughly within 500km of the
	// central meridian in this projection.
	mask, err := d.SpatialMask(geophys.Bounds{
		MinX: 0, MinY: -1e6, MaxX: 1.2e6, MaxY: 1e6,
	}, merc)
	if err != nil {
		t.Fatalf("SpatialMask with foreign CRS failed: %v", err)
	}
	for i, in := range mask {
		if !in {
			t.Errorf("point %d excluded by generous projected rectangle", i)
		}
	}
}

func TestSpatialMaskInvalidCRS(t *testing.T) {
	d := openFivePoints(t)

	_, err := d.SpatialMask(geophys.Bounds{}, "not a CRS")
	var reprojErr *geophys.ErrReprojection
	if !errors.As(err, &reprojErr) {
		t.Fatalf("expected *ErrReprojection, got %v", err)
	}
}

func TestReprojectBoundsIdentity(t *testing.T) {
	b := geophys.Bounds{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}

	// Same descriptor on both sides: returned unchanged, even when the
	// descriptor is unparseable (proves no transform is constructed).
	for _, crs := range []string{geophys.WGS84, "complete gibberish", ""} {
		got, err := geophys.ReprojectBounds(b, crs, crs)
		if err != nil {
			t.Fatalf("identity reproject failed for %q: %v", crs, err)
		}
		if got != b {
			t.Errorf("identity reproject changed bounds: %+v", got)
		}
	}

	// Unset on either side is also the identity
	if got, _ := geophys.ReprojectBounds(b, "", geophys.WGS84); got != b {
		t.Errorf("unset source CRS should be identity, got %+v", got)
	}
	if got, _ := geophys.ReprojectBounds(b, geophys.WGS84, ""); got != b {
		t.Errorf("unset target CRS should be identity, got %+v", got)
	}
}

func TestReprojectBoundsUsesAllFourCorners(t *testing.T) {
	// In a transverse Mercator projection away from the central meridian,
	// the extreme eastings of a geographic rectangle come from different
	// corners at different latitudes. The reprojected envelope must contain
	// every transformed corner.
	merc := "+proj=tmerc +lat_0=0 +lon_0=0 +k=0.9996 +x_0=500000 +y_0=0 +datum=WGS84 +units=m +no_defs"
	b := geophys.Bounds{MinX: 3, MinY: -40, MaxX: 6, MaxY: 40}

	out, err := geophys.ReprojectBounds(b, geophys.WGS84, merc)
	if err != nil {
		t.Fatalf("ReprojectBounds failed: %v", err)
	}
	if out.MinX > out.MaxX || out.MinY > out.MaxY {
		t.Errorf("degenerate envelope after reprojection: %+v", out)
	}

	// Every corner of the input must land inside the output envelope
	for _, c := range b.Corners() {
		rb, err := geophys.ReprojectBounds(
			geophys.Bounds{MinX: c.X, MinY: c.Y, MaxX: c.X, MaxY: c.Y},
			geophys.WGS84, merc)
		if err != nil {
			t.Fatalf("corner reproject failed: %v", err)
		}
		if !out.Contains(rb.MinX, rb.MinY) {
			t.Errorf("transformed corner (%g, %g) outside envelope %+v", rb.MinX, rb.MinY, out)
		}
	}
}

func TestBoundsValueType(t *testing.T) {
	b := geophys.Bounds{MinX: 0, MinY: 0, MaxX: 2, MaxY: 1}

	if !b.Contains(0, 0) || !b.Contains(2, 1) {
		t.Error("Contains must include the boundary")
	}
	if b.Contains(2.001, 0.5) {
		t.Error("Contains must exclude exterior points")
	}
	if !b.Intersects(geophys.Bounds{MinX: 2, MinY: 1, MaxX: 3, MaxY: 2}) {
		t.Error("touching rectangles intersect")
	}
	if b.Intersects(geophys.Bounds{MinX: 2.1, MinY: 0, MaxX: 3, MaxY: 1}) {
		t.Error("disjoint rectangles must not intersect")
	}

	u := b.Union(geophys.Bounds{MinX: -1, MinY: 0.5, MaxX: 1, MaxY: 3})
	if u != (geophys.Bounds{MinX: -1, MinY: 0, MaxX: 2, MaxY: 3}) {
		t.Errorf("Union = %+v", u)
	}

	e := b.Expand(0.5, 0.25)
	if e != (geophys.Bounds{MinX: -0.5, MinY: -0.25, MaxX: 2.5, MaxY: 1.25}) {
		t.Errorf("Expand = %+v", e)
	}

	if b.Width() != 2 || b.Height() != 1 {
		t.Errorf("Width/Height = %g/%g", b.Width(), b.Height())
	}
	if b.Centroid() != (geophys.Point{X: 1, Y: 0.5}) {
		t.Errorf("Centroid = %+v", b.Centroid())
	}
}

func TestReadVariableUnknown(t *testing.T) {
	d := openFivePoints(t)

	_, err := d.ReadVariable("gravity")
	var unknownErr *geophys.ErrUnknownVariable
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected *ErrUnknownVariable, got %v", err)
	}
}

func TestReadVariableAlignment(t *testing.T) {
	d := openFivePoints(t)

	fid, err := d.ReadVariable("fiducial")
	if err != nil {
		t.Fatalf("ReadVariable failed: %v", err)
	}
	for i, want := range []float64{100, 101, 102, 103, 104} {
		if fid[i] != want {
			t.Errorf("fiducial[%d] = %g, want %g (index alignment broken)", i, fid[i], want)
		}
	}
}

func TestWGS84BoundsFromProjectedDataset(t *testing.T) {
	// Points around (500km, 0) in a transverse Mercator system sit near
	// (0deg, 0deg) in WGS-84.
	merc := "+proj=tmerc +lat_0=0 +lon_0=0 +k=0.9996 +x_0=500000 +y_0=0 +datum=WGS84 +units=m +no_defs"
	src := geophys.NewMemorySource(merc)
	src.SetVariable("longitude", []float64{490000, 510000})
	src.SetVariable("latitude", []float64{-10000, 10000})

	d, err := geophys.Open(src)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Close()

	wb := d.WGS84Bounds()
	if math.Abs(wb.MinX) > 0.5 || math.Abs(wb.MaxX) > 0.5 ||
		math.Abs(wb.MinY) > 0.5 || math.Abs(wb.MaxY) > 0.5 {
		t.Errorf("WGS84Bounds = %+v, want near the origin", wb)
	}
	if wb.MinX >= wb.MaxX || wb.MinY >= wb.MaxY {
		t.Errorf("degenerate WGS84Bounds %+v", wb)
	}
}
