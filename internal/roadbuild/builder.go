// Package roadbuild folds a decoded toolpath move stream through a running
// machine state into the Road sequence the rest of the simulation operates
// on.
package roadbuild

import (
	"math"

	"github.com/fdmsim/thermoroad/internal/geom"
	"github.com/fdmsim/thermoroad/internal/model"
	"github.com/fdmsim/thermoroad/internal/physconst"
	"github.com/fdmsim/thermoroad/internal/toolpath"
)

// state is the running machine state carried between moves.
type state struct {
	x, y, z     float64
	e           float64
	feedrate    float64 // mm/minute
	layerNumber int
	layerHeight float64
}

// Build folds moves into a Set of Roads in toolpath order. Extrusions get
// layerNumber>=1 and a populated footprint; travels get width 0 and an empty
// footprint and are never candidates for contact. A move whose computed width
// is not positive (no E field, zero length, no layer height yet, or a
// non-positive ΔE) is recorded as a travel.
func Build(moves []toolpath.Move, c physconst.Constants) *model.Set {
	set := model.NewSet()
	st := state{feedrate: 3000}

	for _, mv := range moves {
		start := geom.Point{X: st.x, Y: st.y}

		end := start
		if mv.HasX {
			end.X = mv.X
		}
		if mv.HasY {
			end.Y = mv.Y
		}

		if mv.HasZ {
			delta := mv.Z - st.z
			switch {
			case delta < 0:
				st.layerNumber++
				st.layerHeight = mv.Z
			case delta < 1.0:
				st.layerNumber++
				st.layerHeight = delta
			default:
				// long travel/priming move: ignored for layer accounting
			}
			st.z = mv.Z
		}

		length := geom.Dist(start, end)

		if mv.HasF {
			st.feedrate = mv.F
		}
		var duration float64
		if st.feedrate > 0 {
			duration = length / (st.feedrate / 60)
		}

		road := &model.Road{
			SourceLine:  mv.SourceLine,
			LayerNumber: st.layerNumber,
			Start:       start,
			End:         end,
			Length:      length,
			LayerHeight: st.layerHeight,
			Duration:    duration,
			Contacts:    model.NewContacts(),
		}

		if mv.HasE {
			deltaE := mv.E - st.e
			st.e = mv.E
			if length > 0 && st.layerHeight > 0 {
				extrudedVolume := deltaE * (math.Pi / 4 * c.FilamentDiameterMM * c.FilamentDiameterMM)
				road.Width = extrudedVolume / (length * st.layerHeight)
			}
		} else {
			road.Travel = true
		}

		if road.Width <= 0 {
			road.Travel = true
			road.Width = 0
		}

		if !road.Travel {
			road.Geometry = geom.RectFootprint(start, end, road.Width)
		}

		set.Add(road)
		st.x, st.y = end.X, end.Y
	}

	return set
}

// Split fragments every extrusion road longer than maxSegmentMM into
// sub-roads of at most maxSegmentMM, each inheriting the parent's width,
// layer, and a length-proportional share of its duration. maxSegmentMM<=0
// disables splitting (a no-op, which spec.md §4.2/§9.iii says is itself
// conforming). Travels are never split. Returned roads are renumbered by
// deposition order; contacts must be built after splitting, not before.
func Split(set *model.Set, maxSegmentMM float64) *model.Set {
	if maxSegmentMM <= 0 {
		return set
	}

	out := model.NewSet()
	for _, r := range set.All() {
		if r.Travel || r.Length <= maxSegmentMM {
			clone := *r
			clone.Contacts = model.NewContacts()
			out.Add(&clone)
			continue
		}

		n := int(math.Ceil(r.Length / maxSegmentMM))
		ux := (r.End.X - r.Start.X) / float64(n)
		uy := (r.End.Y - r.Start.Y) / float64(n)
		segLen := r.Length / float64(n)
		segDuration := r.Duration / float64(n)

		prev := r.Start
		for i := 1; i <= n; i++ {
			cur := geom.Point{X: r.Start.X + ux*float64(i), Y: r.Start.Y + uy*float64(i)}
			sub := &model.Road{
				SourceLine:  r.SourceLine,
				LayerNumber: r.LayerNumber,
				Start:       prev,
				End:         cur,
				Length:      segLen,
				Width:       r.Width,
				LayerHeight: r.LayerHeight,
				Duration:    segDuration,
				Contacts:    model.NewContacts(),
			}
			sub.Geometry = geom.RectFootprint(prev, cur, r.Width)
			out.Add(sub)
			prev = cur
		}
	}
	return out
}
