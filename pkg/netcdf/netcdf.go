// Package netcdf adapts NetCDF classic files to the geophys.Source
// interface.
//
// The reader is pure Go (github.com/ctessum/cdf) and supports the V1/V2
// "classic" format that geophysical point surveys are published in. The
// adapter widens numeric variables to float64, maps declared _FillValue
// entries to NaN, and extracts the native CRS descriptor from conventional
// attribute locations, keeping the descriptor opaque.
package netcdf

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ctessum/cdf"
)

// Source is a geophys.Source over an open NetCDF classic file.
type Source struct {
	f      *cdf.File
	closer io.Closer

	pointDim  string
	pointLen  int
	unlimited bool
	vars      []string
	crs       string
}

// Open opens a NetCDF file from disk.
//
// Example:
//
//	src, err := netcdf.Open("P1255MAG.nc")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer src.Close()
//	ds, err := geophys.Open(src)
func Open(path string) (*Source, error) {
	ff, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	f, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("read netcdf header: %w", err)
	}
	s := newSource(f)
	s.closer = ff
	return s, nil
}

// NewSource wraps an already-open NetCDF file. The caller keeps ownership
// of the underlying reader.
func NewSource(f *cdf.File) *Source {
	return newSource(f)
}

func newSource(f *cdf.File) *Source {
	s := &Source{f: f, crs: detectCRS(f)}

	// The point dimension is the one the longitude variable lives on.
	if hasVariable(f, "longitude") {
		dims := f.Header.Dimensions("longitude")
		lengths := f.Header.Lengths("longitude")
		if len(dims) > 0 {
			s.pointDim = dims[0]
			s.pointLen = lengths[0]
			if s.pointLen == 0 {
				// Length 0 marks the record (unlimited) dimension; the
				// actual record count is only discoverable by reading.
				s.unlimited = true
				s.pointLen = countRecords(f, "longitude")
			}
		}
	}

	// Per-point variables: 1-D over the point dimension
	for _, name := range f.Header.Variables() {
		dims := f.Header.Dimensions(name)
		if len(dims) == 1 && dims[0] == s.pointDim {
			s.vars = append(s.vars, name)
		}
	}
	return s
}

// Close closes the underlying file if this source owns it.
func (s *Source) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *Source) PointCount() (int, bool) {
	if !hasVariable(s.f, "longitude") {
		return 0, false
	}
	return s.pointLen, s.unlimited
}

func (s *Source) Variables() []string { return s.vars }

func (s *Source) ElemSize(name string) int {
	if !hasVariable(s.f, name) {
		return 0
	}
	switch s.f.Reader(name, nil, nil).Zero(1).(type) {
	case []int8, []uint8:
		return 1
	case []int16:
		return 2
	case []int32, []float32:
		return 4
	default:
		return 8
	}
}

func (s *Source) ReadFloat64s(name string, start, end int, dst []float64) error {
	if !hasVariable(s.f, name) {
		return fmt.Errorf("netcdf: no variable %q", name)
	}
	if end-start != len(dst) || start < 0 {
		return fmt.Errorf("netcdf: bad read range [%d, %d) for buffer of %d", start, end, len(dst))
	}
	if len(dst) == 0 {
		return nil
	}

	r := s.f.Reader(name, []int{start}, []int{end})
	buf := r.Zero(len(dst))
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return fmt.Errorf("netcdf: read %q [%d, %d): %w", name, start, end, err)
	}
	widenTo(dst, buf)

	if fill, ok := fillValue(s.f, name); ok {
		for i, v := range dst {
			if v == fill {
				dst[i] = math.NaN()
			}
		}
	}
	return nil
}

func (s *Source) CRS() string { return s.crs }

func hasVariable(f *cdf.File, name string) bool {
	for _, v := range f.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// countRecords determines the length of the record dimension by reading the
// named record variable to EOF.
func countRecords(f *cdf.File, name string) int {
	r := f.Reader(name, nil, nil)
	total := 0
	for {
		buf := r.Zero(8192)
		n, err := r.Read(buf)
		total += n
		if err != nil || n == 0 {
			return total
		}
	}
}

// widenTo converts a typed cdf buffer into float64s.
func widenTo(dst []float64, src interface{}) {
	switch vs := src.(type) {
	case []float64:
		copy(dst, vs)
	case []float32:
		for i, v := range vs {
			dst[i] = float64(v)
		}
	case []int32:
		for i, v := range vs {
			dst[i] = float64(v)
		}
	case []int16:
		for i, v := range vs {
			dst[i] = float64(v)
		}
	case []int8:
		for i, v := range vs {
			dst[i] = float64(v)
		}
	case []uint8:
		for i, v := range vs {
			dst[i] = float64(v)
		}
	}
}

// fillValue returns the variable's declared _FillValue widened to float64.
func fillValue(f *cdf.File, name string) (float64, bool) {
	attr := f.Header.GetAttribute(name, "_FillValue")
	if attr == nil {
		return 0, false
	}
	switch vs := attr.(type) {
	case []float64:
		if len(vs) > 0 {
			return vs[0], true
		}
	case []float32:
		if len(vs) > 0 {
			return float64(vs[0]), true
		}
	case []int32:
		if len(vs) > 0 {
			return float64(vs[0]), true
		}
	case []int16:
		if len(vs) > 0 {
			return float64(vs[0]), true
		}
	case []int8:
		if len(vs) > 0 {
			return float64(vs[0]), true
		}
	}
	return 0, false
}

// detectCRS looks for a CRS descriptor in the conventional places: PROJ.4
// style attributes on a grid-mapping variable named "crs", then the same
// attributes globally. The descriptor is returned verbatim.
func detectCRS(f *cdf.File) string {
	attrs := []string{"proj4", "crs_proj4", "proj4text", "spatial_ref"}

	if hasVariable(f, "crs") {
		for _, attr := range attrs {
			if v, ok := f.Header.GetAttribute("crs", attr).(string); ok && v != "" {
				return v
			}
		}
	}
	for _, attr := range attrs {
		if v, ok := f.Header.GetAttribute("", attr).(string); ok && v != "" {
			return v
		}
	}
	return ""
}
