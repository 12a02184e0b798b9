// Package crs converts coordinates between reference systems.
//
// Reference systems are identified by opaque PROJ.4 descriptor strings
// (e.g. "+proj=longlat +datum=WGS84 +no_defs"). The actual math is
// delegated to github.com/ctessum/geom/proj; this package decides when a
// transform is needed at all and derives local UTM descriptors.
package crs

import (
	"fmt"
	"math"
	"strings"

	"github.com/ctessum/geom/proj"
)

// WGS84 is the PROJ.4 descriptor for geographic WGS-84 coordinates (EPSG:4326).
const WGS84 = "+proj=longlat +datum=WGS84 +no_defs"

// Identity reports whether transforming between from and to would be a no-op.
//
// An unset descriptor on either side means "no transform requested", so
// identity also holds when either string is empty. Identity pairs never reach
// the proj library, which keeps them free of round-trip precision loss.
func Identity(from, to string) bool {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	return from == "" || to == "" || from == to
}

// Transformer converts a single coordinate pair between two fixed reference
// systems.
type Transformer func(x, y float64) (float64, float64, error)

// NewTransformer compiles a coordinate transform between two descriptors.
//
// Identity pairs compile to a pass-through that never parses either
// descriptor, so both sides may even be unparseable as long as they are equal.
func NewTransformer(from, to string) (Transformer, error) {
	if Identity(from, to) {
		return func(x, y float64) (float64, float64, error) {
			return x, y, nil
		}, nil
	}

	fromSR, err := proj.Parse(strings.TrimSpace(from))
	if err != nil {
		return nil, fmt.Errorf("parse source CRS %q: %w", from, err)
	}
	toSR, err := proj.Parse(strings.TrimSpace(to))
	if err != nil {
		return nil, fmt.Errorf("parse target CRS %q: %w", to, err)
	}
	t, err := fromSR.NewTransform(toSR)
	if err != nil {
		return nil, fmt.Errorf("create transform: %w", err)
	}

	return func(x, y float64) (float64, float64, error) {
		return t(x, y)
	}, nil
}

// TransformPoint converts one coordinate pair from one reference system to
// another.
func TransformPoint(x, y float64, from, to string) (float64, float64, error) {
	t, err := NewTransformer(from, to)
	if err != nil {
		return 0, 0, err
	}
	return t(x, y)
}

// Transform converts parallel coordinate slices from one reference system to
// another, returning freshly allocated slices of the same length.
//
// Missing coordinates pass through untouched: a pair containing NaN stays
// (NaN, NaN) in the output rather than being handed to the transform.
// Identity pairs return the input slices unchanged.
func Transform(xs, ys []float64, from, to string) ([]float64, []float64, error) {
	if len(xs) != len(ys) {
		return nil, nil, fmt.Errorf("coordinate slice lengths differ: %d != %d", len(xs), len(ys))
	}
	if Identity(from, to) {
		return xs, ys, nil
	}

	t, err := NewTransformer(from, to)
	if err != nil {
		return nil, nil, err
	}

	outX := make([]float64, len(xs))
	outY := make([]float64, len(ys))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			outX[i] = math.NaN()
			outY[i] = math.NaN()
			continue
		}
		x, y, err := t(xs[i], ys[i])
		if err != nil {
			return nil, nil, fmt.Errorf("transform point %d (%g, %g): %w", i, xs[i], ys[i], err)
		}
		outX[i] = x
		outY[i] = y
	}
	return outX, outY, nil
}

// UTMZone returns the UTM zone number (1-60) containing a WGS-84 longitude.
func UTMZone(lon float64) int {
	zone := int(math.Floor((lon+180.0)/6.0)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// UTM returns the PROJ.4 descriptor of the UTM zone containing the given
// WGS-84 coordinate.
//
// The descriptor is spelled out as a transverse Mercator projection
// (central meridian, scale factor 0.9996, 500 km false easting, 10000 km
// false northing in the southern hemisphere) so it parses on PROJ.4
// implementations that lack the "utm" shorthand.
func UTM(lon, lat float64) string {
	lon0 := UTMZone(lon)*6 - 183
	falseNorthing := 0
	if lat < 0 {
		falseNorthing = 10000000
	}
	return fmt.Sprintf(
		"+proj=tmerc +lat_0=0 +lon_0=%d +k=0.9996 +x_0=500000 +y_0=%d +datum=WGS84 +units=m +no_defs",
		lon0, falseNorthing)
}

// LocalUTM derives the UTM descriptor local to a coordinate expressed in an
// arbitrary reference system. An empty from descriptor means the coordinate
// is already WGS-84.
func LocalUTM(x, y float64, from string) (string, error) {
	lon, lat, err := TransformPoint(x, y, from, WGS84)
	if err != nil {
		return "", err
	}
	return UTM(lon, lat), nil
}
