// Package annotate re-reads a toolpath file and writes two visualization
// copies: the feedrate field of each recognized move line is rewritten to
// encode either the road's deposition contact temperature or its time
// above the heat-deflection threshold, scaled so an unmodified gcode
// visualizer renders the value as a (fictitious) print speed.
//
// This is the thin I/O shell spec.md §1/§6 names as an external
// collaborator: everything it needs (the per-road derived values) was
// already computed by internal/thermal.
package annotate

import (
	"bufio"
	"fmt"
	"io"
	"regexp"

	"github.com/fdmsim/thermoroad/internal/model"
)

var feedrateField = regexp.MustCompile(`F[0-9]+(\.[0-9]+)?`)

// Value selects which derived quantity to encode.
type Value int

const (
	ContactTemperature Value = iota
	TimeAboveHDT
)

// WriteAnnotated copies every line of src to dst, rewriting each recognized
// move line's feedrate field to encode the chosen value for the road whose
// SourceLine matches. Roads are looked up by SourceLine because a
// line-split splitter (internal/roadbuild.Split) can map several Road
// values onto one file line; the first matching road's value wins.
func WriteAnnotated(dst io.Writer, src io.Reader, roads []*model.Road, which Value) error {
	bySourceLine := make(map[int]*model.Road, len(roads))
	for _, r := range roads {
		if _, exists := bySourceLine[r.SourceLine]; !exists {
			bySourceLine[r.SourceLine] = r
		}
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	w := bufio.NewWriter(dst)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if r, ok := bySourceLine[lineNo]; ok {
			if rewritten, ok := rewrite(line, r, which); ok {
				line = rewritten
			}
		}

		if _, err := w.WriteString(line); err != nil {
			return err
		}
		if _, err := w.WriteString("\n"); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("annotate: scan: %w", err)
	}
	return w.Flush()
}

// rewrite computes the integer feedrate value for a road and splices it
// into the line, returning ok=false when the road has nothing to encode
// (spec.md §6: only positive values are written).
func rewrite(line string, r *model.Road, which Value) (string, bool) {
	var value int64
	switch which {
	case ContactTemperature:
		if r.AvgContactTempAtDeposition <= 0 {
			return "", false
		}
		value = int64(r.AvgContactTempAtDeposition * 600)
	case TimeAboveHDT:
		if r.DurationTempAboveHDT <= 0 {
			return "", false
		}
		value = int64(r.DurationTempAboveHDT * 60000)
	}

	field := fmt.Sprintf("F%d", value)
	if feedrateField.MatchString(line) {
		return feedrateField.ReplaceAllString(line, field), true
	}
	return line + " " + field, true
}
