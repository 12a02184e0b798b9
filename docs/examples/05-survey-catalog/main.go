package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/richardt94/geophys-utils/pkg/geophys"
	"github.com/richardt94/geophys-utils/pkg/netcdf"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: survey-catalog <dir-of-nc-files>")
		os.Exit(1)
	}

	paths, err := filepath.Glob(filepath.Join(os.Args[1], "*.nc"))
	if err != nil {
		log.Fatal(err)
	}
	if len(paths) == 0 {
		log.Fatalf("no .nc files under %s", os.Args[1])
	}

	// Open every survey in parallel and index the extents
	sources := make(map[string]geophys.Source, len(paths))
	for _, path := range paths {
		src, err := netcdf.Open(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		defer src.Close()
		name := filepath.Base(path)
		sources[name[:len(name)-len(".nc")]] = src
	}

	catalog, errs := geophys.BuildCatalog(sources, geophys.DefaultCatalogOptions())
	for _, err := range errs {
		log.Printf("catalog: %v", err)
	}

	fmt.Printf("Indexed %d surveys\n", catalog.Len())
	union := catalog.Bounds()
	fmt.Printf("Combined extent: [%.4f,%.4f] to [%.4f,%.4f]\n",
		union.MinX, union.MinY, union.MaxX, union.MaxY)

	// Which surveys cover the centre of the combined extent?
	centre := union.Centroid()
	viewport := geophys.Bounds{
		MinX: centre.X - 0.5, MinY: centre.Y - 0.5,
		MaxX: centre.X + 0.5, MaxY: centre.Y + 0.5,
	}
	for _, entry := range catalog.Query(viewport) {
		fmt.Printf("  %s: %d points (%s)\n", entry.Name, entry.PointCount, entry.NativeCRS)
	}

	// Export the extents for a web map
	geo, err := catalog.GeoJSON()
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("surveys.geojson", geo, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote surveys.geojson")
}
