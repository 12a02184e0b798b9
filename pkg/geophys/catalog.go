package geophys

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"
)

// Catalog provides fast spatial queries over a collection of survey
// extents.
//
// The catalog stores lightweight metadata per survey (name, point count,
// native CRS, WGS-84 extent) indexed with an R-tree, so overlay and
// discovery layers can ask "which surveys intersect this view?" without
// touching the datasets themselves. All extents are kept in WGS-84 for
// cross-survey comparability.
//
// Example:
//
//	catalog := geophys.NewCatalog()
//	catalog.Add("GSSA_P1255MAG", ds)
//
//	viewport := geophys.Bounds{MinX: 135, MinY: -35, MaxX: 140, MaxY: -30}
//	for _, entry := range catalog.Query(viewport) {
//	    fmt.Printf("%s: %d points\n", entry.Name, entry.PointCount)
//	}
type Catalog struct {
	entries []*CatalogEntry
	rtree   *rtreego.Rtree
}

// CatalogEntry contains indexed metadata for a single survey.
type CatalogEntry struct {
	Name        string  // Survey identifier
	PointCount  int     // Number of measurement points
	NativeCRS   string  // Native CRS descriptor of the dataset
	WGS84Bounds Bounds  // Axis-aligned extent in WGS-84

	bbox [4]Point // WGS-84 bounding box corners for GeoJSON export
}

// Bounds method for the rtreego.Spatial interface.
func (e *CatalogEntry) Bounds() rtreego.Rect {
	b := e.WGS84Bounds

	// R-tree rectangles need non-zero extent; inflate point-like surveys
	// by ~11 m at the equator.
	const epsilon = 0.0001
	lengths := []float64{b.Width(), b.Height()}
	if lengths[0] < epsilon {
		lengths[0] = epsilon
	}
	if lengths[1] < epsilon {
		lengths[1] = epsilon
	}

	rect, _ := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, lengths)
	return rect
}

// NewCatalog creates an empty survey catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		rtree: rtreego.NewTree(2, 25, 50),
	}
}

// Add indexes one opened dataset under the given survey name.
//
// Only metadata is retained; the dataset itself may be closed afterwards.
// Add is not safe for concurrent use.
func (c *Catalog) Add(name string, d *PointDataset) {
	entry := &CatalogEntry{
		Name:        name,
		PointCount:  d.PointCount(),
		NativeCRS:   d.NativeCRS(),
		WGS84Bounds: d.WGS84Bounds(),
		bbox:        d.WGS84BBox(),
	}
	c.entries = append(c.entries, entry)
	c.rtree.Insert(entry)
}

// Query returns the surveys whose WGS-84 extent intersects the given
// bounds, sorted by name.
func (c *Catalog) Query(bounds Bounds) []*CatalogEntry {
	lengths := []float64{bounds.Width(), bounds.Height()}
	const epsilon = 0.0001
	if lengths[0] < epsilon {
		lengths[0] = epsilon
	}
	if lengths[1] < epsilon {
		lengths[1] = epsilon
	}
	queryRect, _ := rtreego.NewRect(rtreego.Point{bounds.MinX, bounds.MinY}, lengths)

	spatials := c.rtree.SearchIntersect(queryRect)
	result := make([]*CatalogEntry, 0, len(spatials))
	for _, spatial := range spatials {
		entry := spatial.(*CatalogEntry)
		// The R-tree rect may be inflated; re-check the true extent.
		if bounds.Intersects(entry.WGS84Bounds) {
			result = append(result, entry)
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Len returns the number of surveys in the catalog.
func (c *Catalog) Len() int { return len(c.entries) }

// Bounds returns the WGS-84 union of all survey extents.
func (c *Catalog) Bounds() Bounds {
	if len(c.entries) == 0 {
		return Bounds{}
	}
	bounds := c.entries[0].WGS84Bounds
	for _, entry := range c.entries[1:] {
		bounds = bounds.Union(entry.WGS84Bounds)
	}
	return bounds
}

// Entries returns all surveys in the catalog.
func (c *Catalog) Entries() []*CatalogEntry { return c.entries }

// GeoJSON exports the survey extents as a FeatureCollection of WGS-84
// polygons, one feature per survey, for map-overlay consumers.
func (c *Catalog) GeoJSON() ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, entry := range c.entries {
		ring := make(orb.Ring, 0, 5)
		for _, corner := range entry.bbox {
			ring = append(ring, orb.Point{corner.X, corner.Y})
		}
		ring = append(ring, ring[0]) // close the ring

		feature := geojson.NewFeature(orb.Polygon{ring})
		feature.Properties["name"] = entry.Name
		feature.Properties["point_count"] = entry.PointCount
		feature.Properties["native_crs"] = entry.NativeCRS
		fc.Append(feature)
	}
	return fc.MarshalJSON()
}

// BuildCatalog opens every named source in parallel and indexes the
// resulting datasets. Each dataset is closed again once its metadata is
// extracted.
//
// With SkipErrors set, sources that fail to open are skipped and their
// errors returned alongside the catalog; otherwise the first failure aborts
// the build.
func BuildCatalog(sources map[string]Source, opts CatalogOptions) (*Catalog, []error) {
	catalog := NewCatalog()
	if len(sources) == 0 {
		return catalog, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultCatalogOptions().Workers
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	var errs []error
	datasets := make(map[string]*PointDataset, len(sources))

	var g errgroup.Group
	g.SetLimit(workers)
	for _, name := range names {
		name := name
		g.Go(func() error {
			d, err := OpenWithOptions(sources[name], opts.Options)
			if err != nil {
				err = fmt.Errorf("open %s: %w", name, err)
				if opts.SkipErrors {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
					return nil
				}
				return err
			}

			mu.Lock()
			datasets[name] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, []error{err}
	}

	// Deterministic catalog order regardless of open order
	for _, name := range names {
		if d, ok := datasets[name]; ok {
			catalog.Add(name, d)
			d.Close()
		}
	}
	return catalog, errs
}
