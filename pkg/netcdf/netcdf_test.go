package netcdf_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/richardt94/geophys-utils/pkg/geophys"
	"github.com/richardt94/geophys-utils/pkg/netcdf"
)

// writeTestFile creates a small classic-format survey file: five points on
// the unit square plus centre, a float32 "mag" variable with a fill value,
// and a global proj4 attribute.
func writeTestFile(t *testing.T) string {
	t.Helper()

	h := cdf.NewHeader([]string{"point"}, []int{5})
	h.AddVariable("longitude", []string{"point"}, []float64{0})
	h.AddVariable("latitude", []string{"point"}, []float64{0})
	h.AddVariable("mag", []string{"point"}, []float32{0})
	h.AddAttribute("mag", "_FillValue", []float32{-999})
	h.AddAttribute("", "proj4", geophys.WGS84)
	h.Define()

	path := filepath.Join(t.TempDir(), "survey.nc")
	ff, err := os.Create(path)
	if err != nil {
		t.Fatalf("create test file: %v", err)
	}
	defer ff.Close()

	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatalf("write netcdf header: %v", err)
	}

	write := func(name string, data interface{}) {
		end := f.Header.Lengths(name)
		start := make([]int, len(end))
		w := f.Writer(name, start, end)
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("longitude", []float64{0, 1, 0, 1, 0.5})
	write("latitude", []float64{0, 0, 1, 1, 0.5})
	write("mag", []float32{10, 20, 30, -999, 50})

	return path
}

func TestOpenSurveyFile(t *testing.T) {
	src, err := netcdf.Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	n, unlimited := src.PointCount()
	if n != 5 {
		t.Errorf("PointCount = %d, want 5", n)
	}
	if unlimited {
		t.Error("fixed point dimension reported as unlimited")
	}

	vars := src.Variables()
	want := map[string]bool{"longitude": true, "latitude": true, "mag": true}
	if len(vars) != len(want) {
		t.Errorf("Variables = %v, want 3 entries", vars)
	}
	for _, v := range vars {
		if !want[v] {
			t.Errorf("unexpected variable %q", v)
		}
	}

	if src.CRS() != geophys.WGS84 {
		t.Errorf("CRS = %q, want global proj4 attribute", src.CRS())
	}

	if got := src.ElemSize("longitude"); got != 8 {
		t.Errorf("ElemSize(longitude) = %d, want 8", got)
	}
	if got := src.ElemSize("mag"); got != 4 {
		t.Errorf("ElemSize(mag) = %d, want 4", got)
	}
	if got := src.ElemSize("nope"); got != 0 {
		t.Errorf("ElemSize(nope) = %d, want 0", got)
	}
}

func TestReadFloat64sWidensAndMapsFill(t *testing.T) {
	src, err := netcdf.Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	mag := make([]float64, 5)
	if err := src.ReadFloat64s("mag", 0, 5, mag); err != nil {
		t.Fatalf("ReadFloat64s failed: %v", err)
	}
	if mag[0] != 10 || mag[1] != 20 || mag[2] != 30 || mag[4] != 50 {
		t.Errorf("widened values wrong: %v", mag)
	}
	if !math.IsNaN(mag[3]) {
		t.Errorf("fill value not mapped to NaN: %g", mag[3])
	}
}

func TestChunkedRead(t *testing.T) {
	src, err := netcdf.Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	// Read in two pieces and compare with one whole read
	whole := make([]float64, 5)
	if err := src.ReadFloat64s("longitude", 0, 5, whole); err != nil {
		t.Fatalf("whole read failed: %v", err)
	}

	pieced := make([]float64, 5)
	if err := src.ReadFloat64s("longitude", 0, 3, pieced[:3]); err != nil {
		t.Fatalf("first piece failed: %v", err)
	}
	if err := src.ReadFloat64s("longitude", 3, 5, pieced[3:]); err != nil {
		t.Fatalf("second piece failed: %v", err)
	}

	for i := range whole {
		if whole[i] != pieced[i] {
			t.Errorf("chunked read diverges at %d: %g != %g", i, pieced[i], whole[i])
		}
	}
}

func TestReadErrors(t *testing.T) {
	src, err := netcdf.Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	if err := src.ReadFloat64s("nope", 0, 5, make([]float64, 5)); err == nil {
		t.Error("expected error for unknown variable")
	}
	if err := src.ReadFloat64s("mag", 0, 5, make([]float64, 3)); err == nil {
		t.Error("expected error for mismatched buffer length")
	}
}

// The adapter must satisfy geophys.Source end to end.
func TestOpenAsPointDataset(t *testing.T) {
	src, err := netcdf.Open(writeTestFile(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	ds, err := geophys.Open(src)
	if err != nil {
		t.Fatalf("geophys.Open failed: %v", err)
	}
	defer ds.Close()

	if ds.PointCount() != 5 {
		t.Errorf("PointCount = %d, want 5", ds.PointCount())
	}
	b := ds.Bounds()
	if b.MinX != 0 || b.MinY != 0 || b.MaxX != 1 || b.MaxY != 1 {
		t.Errorf("Bounds = %+v, want unit square", b)
	}

	vars := ds.PointVariables()
	if len(vars) != 1 || vars[0] != "mag" {
		t.Errorf("PointVariables = %v, want [mag]", vars)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := netcdf.Open(filepath.Join(t.TempDir(), "absent.nc")); err == nil {
		t.Error("expected error for missing file")
	}
}
