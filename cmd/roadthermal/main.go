// Command roadthermal reconstructs the printed roads from a toolpath file,
// simulates their deposition thermal history, and writes the two annotated
// visualization copies spec.md §6 describes.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/fdmsim/thermoroad/internal/annotate"
	"github.com/fdmsim/thermoroad/internal/contactgraph"
	"github.com/fdmsim/thermoroad/internal/model"
	"github.com/fdmsim/thermoroad/internal/physconst"
	"github.com/fdmsim/thermoroad/internal/roadbuild"
	"github.com/fdmsim/thermoroad/internal/thermal"
	"github.com/fdmsim/thermoroad/internal/toolpath"
)

func main() {
	defaultConsts := physconst.Default()

	var (
		input      = flag.String("in", "", "input toolpath file (required)")
		tempOut    = flag.String("temp-out", "", "contact-temperature annotated output path")
		hdtOut     = flag.String("hdt-out", "", "time-above-HDT annotated output path")
		summaryOut = flag.String("summary-out", "", "write the run summary as JSON to this path")
		maxSegment = flag.Float64("max-segment", defaultConsts.MaxSegmentLengthMM, "split roads longer than this many mm (0 disables splitting)")
		verbose    = flag.Bool("v", false, "print a per-road summary")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: roadthermal -in <toolpath.gcode> [-temp-out f] [-hdt-out f] [-summary-out f] [-v]")
		os.Exit(2)
	}

	if err := run(*input, *tempOut, *hdtOut, *summaryOut, *maxSegment, *verbose); err != nil {
		log.Fatalf("roadthermal: %v", err)
	}
}

func run(input, tempOut, hdtOut, summaryOut string, maxSegment float64, verbose bool) error {
	consts := physconst.Default()

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	moves, err := toolpath.Decode(in)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	log.Printf("roadthermal: decoded %d moves from %s", len(moves), input)

	set := roadbuild.Build(moves, consts)
	set = roadbuild.Split(set, maxSegment)
	log.Printf("roadthermal: built %d roads", set.Len())

	contactgraph.Build(set, consts)
	if err := contactgraph.FreeSurface(set, consts); err != nil {
		return fmt.Errorf("free surface: %w", err)
	}

	engine := thermal.New(set, consts)
	summary, err := engine.Run()
	if err != nil {
		return fmt.Errorf("thermal: %w", err)
	}
	log.Printf("roadthermal: simulated %.2fs, mean time above HDT %.2fs, max %.2fs (road %d)",
		summary.SimulatedSeconds, summary.MeanTimeAboveHDT, summary.MaxTimeAboveHDT, summary.MaxTimeAboveHDTRoad)

	if verbose {
		printPerRoad(set)
	}

	if summaryOut != "" {
		if err := writeSummaryJSON(summaryOut, summary); err != nil {
			return fmt.Errorf("summary output: %w", err)
		}
	}

	if tempOut != "" {
		if err := writeAnnotated(input, tempOut, set, annotate.ContactTemperature); err != nil {
			return fmt.Errorf("contact-temperature output: %w", err)
		}
	}
	if hdtOut != "" {
		if err := writeAnnotated(input, hdtOut, set, annotate.TimeAboveHDT); err != nil {
			return fmt.Errorf("hdt output: %w", err)
		}
	}
	return nil
}

func writeSummaryJSON(outPath string, summary thermal.Summary) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func writeAnnotated(inputPath, outPath string, set *model.Set, which annotate.Value) error {
	src, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	return annotate.WriteAnnotated(dst, src, set.All(), which)
}

func printPerRoad(set *model.Set) {
	for _, r := range set.All() {
		if r.Travel {
			continue
		}
		fmt.Printf("  line=%d layer=%d deposit_contact_temp=%.1f time_above_hdt=%.2fs\n",
			r.SourceLine, r.LayerNumber, r.AvgContactTempAtDeposition, r.DurationTempAboveHDT)
	}
}
