package thermal

import (
	"math"
	"testing"

	"github.com/fdmsim/thermoroad/internal/geom"
	"github.com/fdmsim/thermoroad/internal/model"
	"github.com/fdmsim/thermoroad/internal/physconst"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func extrusion(layer int, sourceLine int, y float64, width, layerHeight, duration float64) *model.Road {
	start := geom.Point{X: 0, Y: y}
	end := geom.Point{X: 10, Y: y}
	return &model.Road{
		SourceLine:  sourceLine,
		LayerNumber: layer,
		Start:       start,
		End:         end,
		Length:      10,
		Width:       width,
		LayerHeight: layerHeight,
		Duration:    duration,
		Geometry:    geom.RectFootprint(start, end, width),
		Contacts:    model.NewContacts(),
	}
}

func TestRun_FirstLayerPinnedToEnvironment(t *testing.T) {
	c := physconst.Default()
	set := model.NewSet()
	r := extrusion(1, 1, 0, 1.0, 0.2, 1.0)
	set.Add(r)

	e := New(set, c)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Temperature != c.EnvironmentTempC {
		t.Fatalf("layer-1 temperature = %v, want %v", r.Temperature, c.EnvironmentTempC)
	}
	if r.AvgContactTempAtDeposition != c.EnvironmentTempC {
		t.Fatalf("deposition contact temp = %v, want %v", r.AvgContactTempAtDeposition, c.EnvironmentTempC)
	}
}

func TestRun_SecondLayerDepositionContactTempIsLayer1PeerTemp(t *testing.T) {
	c := physconst.Default()
	set := model.NewSet()
	below := extrusion(1, 5, 0, 1.0, 0.2, 1.0)
	set.Add(below)
	above := extrusion(2, 20, 0, 1.0, 0.2, 1.0)
	above.Contacts[below.ID] = above.TopBottomFaceArea()
	set.Add(above)

	e := New(set, c)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if above.AvgContactTempAtDeposition != c.EnvironmentTempC {
		t.Fatalf("deposition contact temp = %v, want %v (the layer-1 peer's temp)",
			above.AvgContactTempAtDeposition, c.EnvironmentTempC)
	}
}

func TestRun_SymmetrizesContactsOntoPeer(t *testing.T) {
	c := physconst.Default()
	set := model.NewSet()
	below := extrusion(1, 1, 0, 1.0, 0.2, 1.0)
	set.Add(below)
	above := extrusion(2, 2, 0, 1.0, 0.2, 1.0)
	above.Contacts[below.ID] = above.TopBottomFaceArea()
	set.Add(above)

	e := New(set, c)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, ok := below.Contacts[above.ID]; !ok {
		t.Fatal("expected symmetrized back-contact on the layer-1 peer")
	}
}

func TestRun_HotterRoadCoolsTowardPeer(t *testing.T) {
	c := physconst.Default()
	set := model.NewSet()
	below := extrusion(1, 1, 0, 1.0, 0.2, 30.0)
	set.Add(below)
	above := extrusion(2, 2, 0, 1.0, 0.2, 30.0)
	above.Contacts[below.ID] = above.TopBottomFaceArea()
	set.Add(above)

	e := New(set, c)
	if _, err := e.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if above.Temperature >= c.ExtrusionTempC {
		t.Fatalf("hot road should have cooled below extrusion temp, got %v", above.Temperature)
	}
	if above.Temperature < c.EnvironmentTempC {
		t.Fatalf("temperature %v dropped below environment floor", above.Temperature)
	}
}

func TestRun_TimeAboveHDTIsMonotonicWithDuration(t *testing.T) {
	c := physconst.Default()

	run := func(duration float64) float64 {
		set := model.NewSet()
		r := extrusion(2, 1, 0, 1.0, 0.2, duration)
		set.Add(r)
		e := New(set, c)
		if _, err := e.Run(); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return r.DurationTempAboveHDT
	}

	short := run(0.3)
	long := run(3.0)
	if long < short {
		t.Fatalf("longer dwell time above HDT (%v) should be >= shorter (%v)", long, short)
	}
}

func TestRun_Summary(t *testing.T) {
	c := physconst.Default()
	set := model.NewSet()
	a := extrusion(1, 1, 0, 1.0, 0.2, 1.0)
	b := extrusion(2, 2, 0, 1.0, 0.2, 1.0)
	b.Contacts[a.ID] = b.TopBottomFaceArea()
	set.Add(a)
	set.Add(b)

	e := New(set, c)
	summary, err := e.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RoadCount != 2 {
		t.Fatalf("road count = %d, want 2", summary.RoadCount)
	}
	if summary.SimulatedSeconds <= 0 {
		t.Fatalf("simulated seconds = %v, want > 0", summary.SimulatedSeconds)
	}
}
