// Package geom provides the minimal 2-D geometry the road reconstruction
// and contact graph need: oriented rectangular footprints (a centerline
// buffered by half the track width, flat end caps) and convex polygon
// clipping to compute their intersection areas.
//
// Points use gonum's r2.Vec, from the same gonum module whose reduction and
// weighted-mean helpers internal/contactgraph and internal/thermal use,
// rather than rolling a parallel vector type.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a 2-D coordinate in millimetres.
type Point = r2.Vec

// Polygon is an ordered, closed list of vertices (not repeating the first
// point at the end). A Polygon with zero vertices is the empty footprint
// used for travels.
type Polygon []Point

// Sub returns a-b.
func Sub(a, b Point) Point { return Point{X: a.X - b.X, Y: a.Y - b.Y} }

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Point) float64 {
	d := Sub(a, b)
	return math.Hypot(d.X, d.Y)
}

// RectFootprint builds the oriented rectangle for an extrusion running
// from start to end with the given track width: the centerline buffered by
// width/2 on each side, with flat (unrounded) end caps.
func RectFootprint(start, end Point, width float64) Polygon {
	length := Dist(start, end)
	if length == 0 || width <= 0 {
		return nil
	}
	ux, uy := (end.X-start.X)/length, (end.Y-start.Y)/length // unit along centerline
	nx, ny := -uy, ux                                        // unit normal
	h := width / 2

	return Polygon{
		{X: start.X + nx*h, Y: start.Y + ny*h},
		{X: end.X + nx*h, Y: end.Y + ny*h},
		{X: end.X - nx*h, Y: end.Y - ny*h},
		{X: start.X - nx*h, Y: start.Y - ny*h},
	}
}

// Buffer grows (d>0) or shrinks (d<0) an oriented rectangle isotropically
// by d on every side, flat caps preserved. Shrinking past degeneracy
// (either side reaching zero or negative extent) returns an empty polygon.
func Buffer(p Polygon, d float64) Polygon {
	if len(p) != 4 {
		return nil
	}
	// Local frame: p[0]->p[1] is "along", p[0]->p[3] is "across".
	along := Sub(p[1], p[0])
	across := Sub(p[3], p[0])
	alongLen := math.Hypot(along.X, along.Y)
	acrossLen := math.Hypot(across.X, across.Y)
	if alongLen == 0 || acrossLen == 0 {
		return nil
	}
	ux, uy := along.X/alongLen, along.Y/alongLen
	nx, ny := across.X/acrossLen, across.Y/acrossLen

	newAlong := alongLen + 2*d
	newAcross := acrossLen + 2*d
	if newAlong <= 0 || newAcross <= 0 {
		return nil
	}

	cx := (p[0].X + p[1].X + p[2].X + p[3].X) / 4
	cy := (p[0].Y + p[1].Y + p[2].Y + p[3].Y) / 4
	halfAlong, halfAcross := newAlong/2, newAcross/2

	return Polygon{
		{X: cx - ux*halfAlong - nx*halfAcross, Y: cy - uy*halfAlong - ny*halfAcross},
		{X: cx + ux*halfAlong - nx*halfAcross, Y: cy + uy*halfAlong - ny*halfAcross},
		{X: cx + ux*halfAlong + nx*halfAcross, Y: cy + uy*halfAlong + ny*halfAcross},
		{X: cx - ux*halfAlong + nx*halfAcross, Y: cy - uy*halfAlong + ny*halfAcross},
	}
}

// Area returns the polygon's area via the shoelace formula. Works for any
// simple polygon, convex or not.
func Area(p Polygon) float64 {
	if len(p) < 3 {
		return 0
	}
	sum := 0.0
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}

// BBox is an axis-aligned bounding box.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds returns the axis-aligned bounding box of p. Returns a degenerate
// (zero) box for an empty polygon.
func Bounds(p Polygon) BBox {
	if len(p) == 0 {
		return BBox{}
	}
	b := BBox{MinX: p[0].X, MinY: p[0].Y, MaxX: p[0].X, MaxY: p[0].Y}
	for _, v := range p[1:] {
		if v.X < b.MinX {
			b.MinX = v.X
		}
		if v.X > b.MaxX {
			b.MaxX = v.X
		}
		if v.Y < b.MinY {
			b.MinY = v.Y
		}
		if v.Y > b.MaxY {
			b.MaxY = v.Y
		}
	}
	return b
}

// Overlaps reports whether two bounding boxes intersect.
func (b BBox) Overlaps(o BBox) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// IntersectArea returns the area of the intersection of two convex
// polygons given in either winding order, via Sutherland-Hodgman clipping.
// Both RectFootprint and Buffer always produce convex (rectangular)
// output, which is the only shape this simulation ever clips.
func IntersectArea(subject, clip Polygon) float64 {
	if len(subject) < 3 || len(clip) < 3 {
		return 0
	}
	out := clipPolygon(subject, clip)
	return Area(out)
}

// clipPolygon clips subject against the convex polygon clip. clip may be
// given in either winding order: a clockwise clip is reversed to
// counter-clockwise first, so "inside" is always to the left of each edge.
func clipPolygon(subject, clip Polygon) Polygon {
	output := subject
	n := len(clip)
	// Normalize winding so "inside" is consistently to the left of each edge.
	if signedArea(clip) < 0 {
		clip = reversed(clip)
	}
	for i := 0; i < n && len(output) > 0; i++ {
		a := clip[i]
		b := clip[(i+1)%n]
		input := output
		output = nil
		if len(input) == 0 {
			break
		}
		prev := input[len(input)-1]
		prevInside := isLeft(a, b, prev)
		for _, cur := range input {
			curInside := isLeft(a, b, cur)
			if curInside {
				if !prevInside {
					output = append(output, segmentIntersect(a, b, prev, cur))
				}
				output = append(output, cur)
			} else if prevInside {
				output = append(output, segmentIntersect(a, b, prev, cur))
			}
			prev, prevInside = cur, curInside
		}
	}
	return output
}

func signedArea(p Polygon) float64 {
	sum := 0.0
	n := len(p)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

func reversed(p Polygon) Polygon {
	out := make(Polygon, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// isLeft reports whether point c is on or to the left of directed edge a->b.
func isLeft(a, b, c Point) bool {
	return (b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X) >= 0
}

// segmentIntersect returns the intersection of line a-b with segment p-q,
// assuming it exists (callers only invoke this when the segment straddles
// the line).
func segmentIntersect(a, b, p, q Point) Point {
	a1 := b.Y - a.Y
	b1 := a.X - b.X
	c1 := a1*a.X + b1*a.Y

	a2 := q.Y - p.Y
	b2 := p.X - q.X
	c2 := a2*p.X + b2*p.Y

	det := a1*b2 - a2*b1
	if det == 0 {
		return p // parallel: degenerate, fall back to an endpoint
	}
	return Point{
		X: (b2*c1 - b1*c2) / det,
		Y: (a1*c2 - a2*c1) / det,
	}
}
