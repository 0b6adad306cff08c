// Command gentoolpath writes a deterministic synthetic toolpath file: a
// rectangular perimeter repeated over N layers, useful for exercising the
// road builder, contact graph, and thermal engine without a real slicer.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	var (
		out         = flag.String("out", "toolpath.gcode", "output file path")
		layers      = flag.Int("layers", 5, "number of layers")
		layerHeight = flag.Float64("layer-height", 0.2, "layer height, mm")
		width       = flag.Float64("width", 20, "perimeter square side, mm")
		lineWidth   = flag.Float64("line-width", 0.45, "extrusion width target, mm")
		feedrate    = flag.Float64("feedrate", 1800, "print feedrate, mm/min")
	)
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gentoolpath:", err)
		os.Exit(1)
	}
	defer f.Close()

	writeToolpath(f, *layers, *layerHeight, *width, *lineWidth, *feedrate)
}

// writeToolpath emits one square-perimeter extrusion per layer. Extrusion
// volume is derived so the resulting road width matches lineWidth, given
// the filament cross-section in internal/physconst's default diameter.
func writeToolpath(f *os.File, layers int, layerHeight, side, lineWidth, feedrate float64) {
	const filamentDiaMM = 1.75
	filamentArea := 3.14159265 / 4 * filamentDiaMM * filamentDiaMM

	fmt.Fprintf(f, "; synthetic square perimeter toolpath, %d layers\n", layers)
	fmt.Fprintf(f, "G1 F%.0f\n", feedrate)

	e := 0.0
	z := 0.0
	corners := [][2]float64{{0, 0}, {side, 0}, {side, side}, {0, side}, {0, 0}}

	for l := 0; l < layers; l++ {
		z += layerHeight
		fmt.Fprintf(f, "G1 Z%.3f F%.0f\n", z, feedrate)
		fmt.Fprintf(f, "G0 X%.3f Y%.3f\n", corners[0][0], corners[0][1])
		for _, c := range corners[1:] {
			segLen := side // each edge of the square
			volume := lineWidth * layerHeight * segLen
			e += volume / filamentArea
			fmt.Fprintf(f, "G1 X%.3f Y%.3f E%.5f F%.0f\n", c[0], c[1], e, feedrate)
		}
	}
}
