// Package model defines the Road: the single domain type that the road
// builder, contact graph, free-surface, and thermal stages all share and
// mutate in turn. Contacts reference peers by RoadID (a stable deposition
// ordinal), never by pointer, so the graph can be serialized, iterated in
// any order, and survive independent of container growth.
package model

import (
	"fmt"

	"github.com/fdmsim/thermoroad/internal/geom"
)

// RoadID is a road's deposition-order ordinal; stable for the road's
// lifetime and used as the sole key into Contacts.
type RoadID int

// Road is one extruded or travel segment.
type Road struct {
	ID         RoadID
	SourceLine int
	Travel     bool // true iff this is a zero-width travel move

	LayerNumber int // >=1 for extrusions; 0 for pre-layer-1 travels
	Start, End  geom.Point
	Length      float64
	Width       float64
	LayerHeight float64
	Duration    float64
	Geometry    geom.Polygon

	// Contacts maps a contacting road's ID to the contact area (mm^2).
	// Built by the contact graph, back-filled symmetrically at deposition
	// (see internal/thermal), and read thereafter.
	Contacts map[RoadID]float64
	FreeArea float64

	HeatCapacity float64 // J/K
	Temperature  float64 // deg C; undefined (0) until Deposited

	Deposited                  bool
	DurationTempAboveHDT       float64
	AvgContactTempAtDeposition float64
}

// NewContacts allocates an empty contact map.
func NewContacts() map[RoadID]float64 { return make(map[RoadID]float64) }

// InvariantError reports a geometric or thermal invariant violation. These
// are fatal per spec.md §7: they indicate a bug in the contact builder or
// thermal engine, not a recoverable input error.
type InvariantError struct {
	Road   RoadID
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("model: road %d: invariant violated: %s", e.Road, e.Reason)
}

// TopBottomFaceArea returns the nominal area of one top or bottom face.
func (r *Road) TopBottomFaceArea() float64 {
	return r.Length * r.Width
}

// SideFaceArea returns the nominal area of one side face.
func (r *Road) SideFaceArea() float64 {
	return r.LayerHeight * (r.Length + r.Width)
}

// TotalNominalSurfaceArea is the full physical surface area before any
// contact is subtracted: 2 top/bottom faces + 2 side faces.
func (r *Road) TotalNominalSurfaceArea() float64 {
	return 2*r.TopBottomFaceArea() + 2*r.SideFaceArea()
}

// Set owns every Road for the simulation's full lifetime, indexed by
// deposition order. Removal from an active set elsewhere never deletes
// from Set; Set is the only place roads are actually freed (at process
// exit).
type Set struct {
	roads []*Road
}

// NewSet creates an empty road set.
func NewSet() *Set { return &Set{} }

// Add appends a new road, assigning it the next RoadID.
func (s *Set) Add(r *Road) RoadID {
	r.ID = RoadID(len(s.roads))
	s.roads = append(s.roads, r)
	return r.ID
}

// Get returns the road with the given ID.
func (s *Set) Get(id RoadID) *Road { return s.roads[id] }

// Len returns the number of roads in the set.
func (s *Set) Len() int { return len(s.roads) }

// All returns every road in deposition order. The returned slice aliases
// the set's internal storage and must not be appended to by callers.
func (s *Set) All() []*Road { return s.roads }
