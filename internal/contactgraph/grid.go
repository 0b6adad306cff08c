package contactgraph

import (
	"github.com/fdmsim/thermoroad/internal/geom"
	"github.com/fdmsim/thermoroad/internal/model"
)

// cellSize is chosen relative to typical road length; a handful of roads
// per bucket keeps bbox-prune queries close to O(1) without building a
// full R-tree for what is, in practice, a few hundred footprints per layer.
const cellSize = 5.0 // mm

// grid is a uniform-bucket bounding-box spatial index over a layer's
// non-empty road footprints, queried by inflated bounding box.
type grid struct {
	cells map[[2]int][]*model.Road
}

func newGrid(roads []*model.Road) *grid {
	g := &grid{cells: make(map[[2]int][]*model.Road)}
	for _, r := range roads {
		if len(r.Geometry) == 0 {
			continue
		}
		for _, key := range g.cellsFor(geom.Bounds(r.Geometry)) {
			g.cells[key] = append(g.cells[key], r)
		}
	}
	return g
}

func (g *grid) cellsFor(b geom.BBox) [][2]int {
	x0, y0 := cellIndex(b.MinX), cellIndex(b.MinY)
	x1, y1 := cellIndex(b.MaxX), cellIndex(b.MaxY)
	var keys [][2]int
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			keys = append(keys, [2]int{x, y})
		}
	}
	return keys
}

func cellIndex(v float64) int {
	c := int(v / cellSize)
	if v < 0 {
		c--
	}
	return c
}

// query returns every road whose footprint bounding box might overlap b,
// deduplicated. Callers still need their own precise geometric test.
func (g *grid) query(b geom.BBox) []*model.Road {
	seen := make(map[model.RoadID]bool)
	var out []*model.Road
	for _, key := range g.cellsFor(b) {
		for _, r := range g.cells[key] {
			if !seen[r.ID] {
				seen[r.ID] = true
				out = append(out, r)
			}
		}
	}
	return out
}
