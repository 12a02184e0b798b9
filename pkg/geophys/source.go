package geophys

import "sort"

// Source is the open-dataset collaborator a PointDataset is built over.
//
// A source exposes named 1-D numeric arrays over a shared "point" dimension,
// along with the dataset's declared native coordinate reference system.
// Implementations include the NetCDF adapter in pkg/netcdf and the in-memory
// MemorySource below.
type Source interface {
	// PointCount returns the length of the point dimension and whether that
	// dimension is unlimited (may grow after this call).
	PointCount() (n int, unlimited bool)

	// Variables returns the names of all variables on the point dimension.
	Variables() []string

	// ElemSize returns the storage size in bytes of one element of the
	// named variable, or 0 if the variable is unknown.
	ElemSize(name string) int

	// ReadFloat64s copies elements [start, end) of the named variable into
	// dst, widening to float64. len(dst) must be end-start. Missing values
	// are represented as NaN.
	ReadFloat64s(name string, start, end int, dst []float64) error

	// CRS returns the dataset's native coordinate reference system as an
	// opaque descriptor string, or "" if undeclared.
	CRS() string
}

// MemorySource is an in-memory Source, useful for tests and synthetic data.
//
// The point dimension length is the length of the "longitude" variable.
// All per-point variables are expected to share that length.
type MemorySource struct {
	crs       string
	unlimited bool
	vars      map[string][]float64
}

// NewMemorySource creates an empty in-memory source with the given native
// CRS descriptor ("" for undeclared).
func NewMemorySource(crs string) *MemorySource {
	return &MemorySource{
		crs:  crs,
		vars: make(map[string][]float64),
	}
}

// SetVariable stores a per-point variable. The slice is used directly, not
// copied.
func (s *MemorySource) SetVariable(name string, values []float64) {
	s.vars[name] = values
}

// SetUnlimited marks the point dimension as unlimited.
func (s *MemorySource) SetUnlimited(unlimited bool) {
	s.unlimited = unlimited
}

func (s *MemorySource) PointCount() (int, bool) {
	return len(s.vars["longitude"]), s.unlimited
}

func (s *MemorySource) Variables() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *MemorySource) ElemSize(name string) int {
	if _, ok := s.vars[name]; !ok {
		return 0
	}
	return 8
}

func (s *MemorySource) ReadFloat64s(name string, start, end int, dst []float64) error {
	values, ok := s.vars[name]
	if !ok {
		return &ErrUnknownVariable{Name: name}
	}
	if start < 0 || end > len(values) || end-start != len(dst) {
		return &ErrInvalidArgument{Reason: "read slice out of range"}
	}
	copy(dst, values[start:end])
	return nil
}

func (s *MemorySource) CRS() string { return s.crs }
