// Package contactgraph builds the per-layer contact adjacency between road
// footprints (same layer and previous layer) and derives each road's free
// surface area from the result.
package contactgraph

import (
	"gonum.org/v1/gonum/floats"

	"github.com/fdmsim/thermoroad/internal/geom"
	"github.com/fdmsim/thermoroad/internal/model"
	"github.com/fdmsim/thermoroad/internal/physconst"
)

// Build constructs the contact graph over every road in set, processing
// layers in ascending order. Contacts are recorded one-directional here (on
// the later-deposited road of a pair); internal/thermal symmetrizes them at
// deposition time.
func Build(set *model.Set, c physconst.Constants) {
	byLayer := groupByLayer(set.All())

	var prevGrid *grid
	var prevLayer int
	havePrev := false

	layers := sortedLayerKeys(byLayer)
	for _, layerNum := range layers {
		roads := byLayer[layerNum]
		g := newGrid(roads)

		sameLayerPass(roads, g, c)

		if havePrev && layerNum == prevLayer+1 {
			prevLayerPass(roads, prevGrid, c)
		}

		prevGrid, prevLayer, havePrev = g, layerNum, true
	}
}

func groupByLayer(roads []*model.Road) map[int][]*model.Road {
	m := make(map[int][]*model.Road)
	for _, r := range roads {
		if r.Travel || len(r.Geometry) == 0 {
			continue
		}
		m[r.LayerNumber] = append(m[r.LayerNumber], r)
	}
	return m
}

func sortedLayerKeys(m map[int][]*model.Road) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// sameLayerPass computes contacts between a road and earlier-deposited
// roads sharing its layer.
func sameLayerPass(roads []*model.Road, g *grid, c physconst.Constants) {
	for _, r := range roads {
		query := geom.Buffer(r.Geometry, c.XYResolutionMM)
		if query == nil {
			continue
		}
		for _, cand := range g.query(geom.Bounds(query)) {
			if cand.ID == r.ID || cand.ID >= r.ID {
				continue // only earlier-deposited roads are candidates
			}

			var area float64
			if cand.ID == r.ID-1 {
				area = r.LayerHeight * r.Width
			} else {
				area = boundaryContactArea(r, cand, c)
			}

			if area > c.MinContactAreaMM2 {
				r.Contacts[cand.ID] = area
			}
		}
	}
}

// prevLayerPass computes contacts between roads in the current layer and
// roads in the immediately previous layer, keyed by footprint overlap.
func prevLayerPass(roads []*model.Road, prevGrid *grid, c physconst.Constants) {
	for _, r := range roads {
		for _, cand := range prevGrid.query(geom.Bounds(r.Geometry)) {
			area := geom.IntersectArea(r.Geometry, cand.Geometry)
			if area > c.MinContactAreaMM2 {
				r.Contacts[cand.ID] = area
			}
		}
	}
}

// boundaryContactArea implements the buffered-boundary-intersection trick
// of spec.md §4.3: intersect R's footprint with C's footprint buffered
// outward and inward by the XY resolution (a thin frame tracing C's
// boundary); dividing the intersection area by the buffer distance gives an
// effective contact length, clamped to the shorter of the two roads'
// lengths.
func boundaryContactArea(r, c *model.Road, consts physconst.Constants) float64 {
	outer := geom.Buffer(c.Geometry, consts.XYResolutionMM)
	inner := geom.Buffer(c.Geometry, -consts.XYResolutionMM)

	outerHit := geom.IntersectArea(r.Geometry, outer)
	innerHit := 0.0
	if inner != nil {
		innerHit = geom.IntersectArea(r.Geometry, inner)
	}
	frameHit := outerHit - innerHit
	if frameHit < 0 {
		frameHit = 0
	}

	contactLength := frameHit / consts.XYResolutionMM
	if shorter := minF(r.Length, c.Length); contactLength > shorter {
		contactLength = shorter
	}
	return contactLength * r.LayerHeight
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// FreeSurface fills in every extrusion road's free_area, clamping any
// contact group (above/below/side) that exceeds its matching physical face
// area by more than the overshoot tolerance (spec.md §4.4).
func FreeSurface(set *model.Set, c physconst.Constants) error {
	for _, r := range set.All() {
		if r.Travel {
			continue
		}
		clampGroups(r, set, c)

		total := r.TotalNominalSurfaceArea()
		var sum float64
		for _, area := range r.Contacts {
			sum += area
		}
		free := total - sum
		if free < 0 {
			if free > -c.FreeAreaSlackMM2 {
				free = 0
			} else {
				return &model.InvariantError{Road: r.ID, Reason: "free_area below tolerance"}
			}
		}
		r.FreeArea = free
	}
	return nil
}

func clampGroups(r *model.Road, set *model.Set, c physconst.Constants) {
	var above, below, side []model.RoadID
	for peer := range r.Contacts {
		switch {
		case set.Get(peer).LayerNumber == r.LayerNumber+1:
			above = append(above, peer)
		case set.Get(peer).LayerNumber == r.LayerNumber-1:
			below = append(below, peer)
		default:
			side = append(side, peer)
		}
	}

	clampGroup(r, above, r.TopBottomFaceArea(), c)
	clampGroup(r, below, r.TopBottomFaceArea(), c)
	clampGroup(r, side, r.SideFaceArea(), c)
}

func clampGroup(r *model.Road, group []model.RoadID, faceArea float64, c physconst.Constants) {
	if len(group) == 0 {
		return
	}
	areas := make([]float64, len(group))
	for i, id := range group {
		areas[i] = r.Contacts[id]
	}
	total := floats.Sum(areas)
	if total <= faceArea*c.ContactOvershoot || total == 0 {
		return
	}
	ratio := faceArea / total
	for _, id := range group {
		r.Contacts[id] *= ratio
	}
}
