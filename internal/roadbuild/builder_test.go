package roadbuild

import (
	"math"
	"testing"

	"github.com/fdmsim/thermoroad/internal/physconst"
	"github.com/fdmsim/thermoroad/internal/toolpath"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestBuild_SingleStraightExtrusionLayer1(t *testing.T) {
	c := physconst.Default()
	moves := []toolpath.Move{
		{SourceLine: 1, Z: 0.2, HasZ: true},
		{SourceLine: 2, X: 10, Y: 0, E: 0.8, F: 1800, HasX: true, HasY: true, HasE: true, HasF: true},
	}
	set := Build(moves, c)

	var extrusion *roadResult
	for _, r := range set.All() {
		if !r.Travel && r.Length > 0 {
			extrusion = &roadResult{length: r.Length, width: r.Width, layer: r.LayerNumber}
		}
	}
	if extrusion == nil {
		t.Fatal("no extrusion road found")
	}
	if !almostEqual(extrusion.length, 10, 1e-9) {
		t.Fatalf("length = %v, want 10", extrusion.length)
	}
	if !almostEqual(extrusion.width, 0.962, 5e-3) {
		t.Fatalf("width = %v, want ~0.962", extrusion.width)
	}
	if extrusion.layer != 1 {
		t.Fatalf("layer = %d, want 1", extrusion.layer)
	}
}

type roadResult struct {
	length, width float64
	layer         int
}

func TestBuild_TravelHasNoGeometry(t *testing.T) {
	c := physconst.Default()
	moves := []toolpath.Move{
		{SourceLine: 1, Z: 0.2, HasZ: true},
		{SourceLine: 2, X: 5, Y: 5, HasX: true, HasY: true},
	}
	set := Build(moves, c)

	found := false
	for _, r := range set.All() {
		if r.Travel && r.Length > 0 {
			found = true
			if r.Geometry != nil {
				t.Fatal("travel road should have nil geometry")
			}
			if r.Width != 0 {
				t.Fatalf("travel width = %v, want 0", r.Width)
			}
		}
	}
	if !found {
		t.Fatal("expected a travel road")
	}
}

func TestBuild_ZDeltaLessThanOneIncrementsLayer(t *testing.T) {
	c := physconst.Default()
	moves := []toolpath.Move{
		{SourceLine: 1, Z: 0.2, HasZ: true},
		{SourceLine: 2, X: 10, Y: 0, E: 0.8, HasX: true, HasY: true, HasE: true},
		{SourceLine: 3, Z: 0.4, HasZ: true},
		{SourceLine: 4, X: 0, Y: 0, E: 1.6, HasX: true, HasY: true, HasE: true},
	}
	set := Build(moves, c)

	layers := map[int]bool{}
	for _, r := range set.All() {
		if !r.Travel {
			layers[r.LayerNumber] = true
		}
	}
	if !layers[1] || !layers[2] {
		t.Fatalf("expected layers 1 and 2, got %v", layers)
	}
}

func TestSplit_NoOpWhenDisabled(t *testing.T) {
	c := physconst.Default()
	moves := []toolpath.Move{
		{SourceLine: 1, Z: 0.2, HasZ: true},
		{SourceLine: 2, X: 10, Y: 0, E: 0.8, HasX: true, HasY: true, HasE: true},
	}
	set := Build(moves, c)
	before := set.Len()
	after := Split(set, 0)
	if after.Len() != before {
		t.Fatalf("Split(0) changed road count: %d -> %d", before, after.Len())
	}
}

func TestSplit_FragmentsLongExtrusion(t *testing.T) {
	c := physconst.Default()
	moves := []toolpath.Move{
		{SourceLine: 1, Z: 0.2, HasZ: true},
		{SourceLine: 2, X: 10, Y: 0, E: 0.8, HasX: true, HasY: true, HasE: true},
	}
	set := Build(moves, c)
	split := Split(set, 2.0)

	var total float64
	count := 0
	for _, r := range split.All() {
		if r.Travel {
			continue
		}
		count++
		if r.Length > 2.0+1e-9 {
			t.Fatalf("segment length %v exceeds cap", r.Length)
		}
		total += r.Length
	}
	if count != 5 {
		t.Fatalf("got %d segments, want 5", count)
	}
	if !almostEqual(total, 10, 1e-6) {
		t.Fatalf("total length = %v, want 10", total)
	}
}
