package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/richardt94/geophys-utils/pkg/geophys"
	"github.com/richardt94/geophys-utils/pkg/netcdf"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: gridding <survey.nc> <variable>")
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

	// Resample the scattered points onto a regular raster over the full
	// survey extent. Cells outside the flight lines come back NaN.
	grid, err := dataset.GridOne(os.Args[2], geophys.GridQuery{
		Resolution: 0.001,
		Method:     geophys.MethodLinear,
	})
	if err != nil {
		log.Fatal(err)
	}

	cols, rows := grid.Dims()
	fmt.Printf("Grid: %d x %d cells in %s\n", cols, rows, grid.CRS())
	fmt.Printf("GeoTransform: %v\n", grid.Transform())

	// Summarise the raster
	var filled int
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range grid.Values() {
		if math.IsNaN(v) {
			continue
		}
		filled++
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	fmt.Printf("Filled cells: %d of %d\n", filled, cols*rows)
	if filled > 0 {
		fmt.Printf("Value range: %.2f to %.2f\n", min, max)
	}
}
