package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/richardt94/geophys-utils/pkg/geophys"
	"github.com/richardt94/geophys-utils/pkg/netcdf"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("usage: nearest-neighbors <survey.nc> <lon> <lat>")
		os.Exit(1)
	}
	lon, err := strconv.ParseFloat(os.Args[2], 64)
	if err != nil {
		log.Fatal(err)
	}
	lat, err := strconv.ParseFloat(os.Args[3], 64)
	if err != nil {
		log.Fatal(err)
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

	// Bounded query: a small search radius keeps the index ephemeral and
	// cheap even on multi-million-point surveys.
	neighbors, err := dataset.NearestNeighbors(geophys.NeighborQuery{
		X:           lon,
		Y:           lat,
		CRS:         geophys.WGS84,
		K:           10,
		MaxDistance: 0.1,
	})
	if err != nil {
		log.Fatal(err)
	}
	if len(neighbors) == 0 {
		fmt.Println("No points within 0.1 degrees of the query coordinate")
		return
	}

	// Look up a measured value at each neighbour
	vars := dataset.PointVariables()
	var values []float64
	if len(vars) > 0 {
		values, err = dataset.ReadVariable(vars[0])
		if err != nil {
			log.Fatal(err)
		}
	}

	for i, n := range neighbors {
		x, y := dataset.Coordinate(n.Index)
		fmt.Printf("%2d. point %-8d (%.5f, %.5f)  distance %.5f", i+1, n.Index, x, y, n.Distance)
		if values != nil {
			fmt.Printf("  %s=%.2f", vars[0], values[n.Index])
		}
		fmt.Println()
	}
}
