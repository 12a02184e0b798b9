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
		fmt.Println("usage: quick-start <survey.nc>")
		os.Exit(1)
	}

	// Open the NetCDF point dataset
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

	// Print survey info
	fmt.Printf("Points: %d\n", dataset.PointCount())
	fmt.Printf("CRS: %s\n", dataset.NativeCRS())
	fmt.Printf("Variables: %v\n", dataset.PointVariables())

	// Get survey extent
	bounds := dataset.WGS84Bounds()
	fmt.Printf("Extent: [%.4f,%.4f] to [%.4f,%.4f]\n",
		bounds.MinX, bounds.MinY,
		bounds.MaxX, bounds.MaxY)
}
