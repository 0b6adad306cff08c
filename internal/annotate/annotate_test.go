package annotate

import (
	"strings"
	"testing"

	"github.com/fdmsim/thermoroad/internal/model"
)

func TestWriteAnnotated_RewritesFeedrateField(t *testing.T) {
	src := "G1 X10 Y0 E0.8 F1800\n"
	roads := []*model.Road{
		{SourceLine: 1, AvgContactTempAtDeposition: 50.0},
	}

	var out strings.Builder
	if err := WriteAnnotated(&out, strings.NewReader(src), roads, ContactTemperature); err != nil {
		t.Fatalf("WriteAnnotated: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "F30000") {
		t.Fatalf("output %q missing expected F30000 field (50*600)", got)
	}
	if strings.Contains(got, "F1800") {
		t.Fatalf("output %q still contains original feedrate", got)
	}
}

func TestWriteAnnotated_NonPositiveValueLeavesLineUnchanged(t *testing.T) {
	src := "G1 X10 Y0 E0.8 F1800\n"
	roads := []*model.Road{
		{SourceLine: 1, AvgContactTempAtDeposition: 0},
	}

	var out strings.Builder
	if err := WriteAnnotated(&out, strings.NewReader(src), roads, ContactTemperature); err != nil {
		t.Fatalf("WriteAnnotated: %v", err)
	}
	if !strings.Contains(out.String(), "F1800") {
		t.Fatalf("expected original feedrate preserved, got %q", out.String())
	}
}

func TestWriteAnnotated_TimeAboveHDT(t *testing.T) {
	src := "G1 X10 Y0 E0.8 F1800\n"
	roads := []*model.Road{
		{SourceLine: 1, DurationTempAboveHDT: 0.5},
	}

	var out strings.Builder
	if err := WriteAnnotated(&out, strings.NewReader(src), roads, TimeAboveHDT); err != nil {
		t.Fatalf("WriteAnnotated: %v", err)
	}
	if !strings.Contains(out.String(), "F30000") {
		t.Fatalf("output %q missing expected F30000 field (0.5*60000)", out.String())
	}
}

func TestWriteAnnotated_UnmatchedLinesPassThrough(t *testing.T) {
	src := "; comment\nG1 X10 Y0 E0.8 F1800\n"
	var out strings.Builder
	if err := WriteAnnotated(&out, strings.NewReader(src), nil, ContactTemperature); err != nil {
		t.Fatalf("WriteAnnotated: %v", err)
	}
	if out.String() != src {
		t.Fatalf("expected passthrough, got %q", out.String())
	}
}
