package main

import (
	"fmt"
	"log"
	"os"

	"github.com/richardt94/geophys-utils/pkg/geophys"
	"github.com/richardt94/geophys-utils/pkg/netcdf"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: utm-transects <survey.nc>")
		os.Exit(1)
	}

	src, err := netcdf.Open(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	dataset, err := geophys.Open(src)
	if err != nil {
		log.Fatal(err)
	}
	defer dataset.Close()

	// Grid in the local UTM zone so cell sizes are metres, not degrees
	result, err := dataset.GridUTM(geophys.UTMGridQuery{
		Resolution: 100, // 100 m cells
		Method:     geophys.MethodNearest,
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("UTM CRS: %s\n", result.CRS)
	for name, grid := range result.Grids {
		cols, rows := grid.Dims()
		fmt.Printf("%s: %d x %d cells at 100 m\n", name, cols, rows)
	}

	// Distance along a transect across the survey, in metres
	b := dataset.Bounds()
	transect := []geophys.Point{
		{X: b.MinX, Y: b.Centroid().Y},
		{X: b.Centroid().X, Y: b.Centroid().Y},
		{X: b.MaxX, Y: b.Centroid().Y},
	}
	distances, err := dataset.CoordsToDistance(transect, "")
	if err != nil {
		log.Fatal(err)
	}
	for i, d := range distances {
		fmt.Printf("waypoint %d: %.1f m along transect\n", i, d)
	}
}
