// Package thermal drives the deposition-and-integration pass over a built
// road set: as each road is deposited it is seeded at the extrusion
// temperature (layer-1 roads at the environment temperature), symmetrized
// into its peers' contact maps, and the active set
// of depositing-or-cooling roads is advanced forward on an adaptive,
// fixed-ceiling time grid.
package thermal

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fdmsim/thermoroad/internal/model"
	"github.com/fdmsim/thermoroad/internal/physconst"
)

// Summary is the aggregate thermal report for a run, mirroring the shape a
// simulation metrics export would take (max/mean time above HDT, total
// simulated time) — the per-road "longest HDT road" figure spec.md §9.ii
// leaves to the reporting layer. JSON tags let cmd/roadthermal export it
// directly with encoding/json, the same shape as the teacher's
// ExportMetrics.
type Summary struct {
	RoadCount           int          `json:"road_count"`
	SimulatedSeconds    float64      `json:"simulated_seconds"`
	MaxTimeAboveHDT     float64      `json:"max_time_above_hdt"`
	MaxTimeAboveHDTRoad model.RoadID `json:"max_time_above_hdt_road"`
	MeanTimeAboveHDT    float64      `json:"mean_time_above_hdt"`
}

// Engine advances the thermal simulation over a road set in deposition
// order.
type Engine struct {
	set    *model.Set
	c      physconst.Constants
	active map[model.RoadID]bool

	simTime   float64
	gcodeTime float64
	curLayer  int
}

// New creates an Engine bound to set. Run mutates every road's Temperature,
// DurationTempAboveHDT, and AvgContactTempAtDeposition fields in place.
func New(set *model.Set, c physconst.Constants) *Engine {
	return &Engine{set: set, c: c, active: make(map[model.RoadID]bool)}
}

// Run walks every road in deposition order, depositing it and advancing
// the integrator, and returns the aggregate Summary.
func (e *Engine) Run() (Summary, error) {
	for _, r := range e.set.All() {
		if r.Travel {
			continue
		}
		e.deposit(r)

		e.gcodeTime += r.Duration
		if err := e.advance(); err != nil {
			return Summary{}, err
		}
	}
	return e.summarize(), nil
}

func (e *Engine) summarize() Summary {
	s := Summary{RoadCount: e.set.Len(), SimulatedSeconds: e.simTime}
	var values []float64
	for _, r := range e.set.All() {
		if r.Travel {
			continue
		}
		values = append(values, r.DurationTempAboveHDT)
		if r.DurationTempAboveHDT > s.MaxTimeAboveHDT {
			s.MaxTimeAboveHDT = r.DurationTempAboveHDT
			s.MaxTimeAboveHDTRoad = r.ID
		}
	}
	if len(values) > 0 {
		s.MeanTimeAboveHDT = stat.Mean(values, nil)
	}
	return s
}

// deposit seeds r's temperature, inserts it into the active set,
// symmetrizes its contacts into its peers, and records its deposition
// contact temperature (spec.md §4.5).
func (e *Engine) deposit(r *model.Road) {
	volumeM3 := r.Length * r.Width * r.LayerHeight * 1e-9
	r.HeatCapacity = volumeM3 * e.c.VolumetricHeatCap

	if r.LayerNumber > e.curLayer {
		e.curLayer = r.LayerNumber
	}

	if r.LayerNumber == 1 {
		r.Temperature = e.c.EnvironmentTempC
	} else {
		r.Temperature = e.c.ExtrusionTempC
	}
	r.Deposited = true
	e.active[r.ID] = true

	e.symmetrize(r)
	r.AvgContactTempAtDeposition = e.depositionContactTemp(r)
}

func (e *Engine) symmetrize(r *model.Road) {
	for peerID, area := range r.Contacts {
		peer := e.set.Get(peerID)
		if peer.Travel {
			continue
		}
		if _, already := peer.Contacts[r.ID]; already {
			continue
		}

		backArea := area
		if peerID == r.ID-1 || peerID == r.ID+1 {
			backArea = minF(r.Width*r.LayerHeight, peer.Width*peer.LayerHeight)
		}
		if backArea > e.c.MinContactAreaMM2 {
			peer.Contacts[r.ID] = backArea
			e.recomputeFreeArea(peer)
		}
	}
}

func (e *Engine) recomputeFreeArea(r *model.Road) {
	total := r.TotalNominalSurfaceArea()
	var sum float64
	for _, a := range r.Contacts {
		sum += a
	}
	free := total - sum
	if free < 0 {
		free = 0
	}
	r.FreeArea = free
}

func (e *Engine) depositionContactTemp(r *model.Road) float64 {
	if r.LayerNumber == 1 {
		return e.c.EnvironmentTempC
	}

	var temps, weights []float64
	for peerID, area := range r.Contacts {
		peer := e.set.Get(peerID)
		if peer.SourceLine == r.SourceLine-1 {
			continue // exclude the immediate predecessor
		}
		temps = append(temps, peer.Temperature)
		weights = append(weights, area)
	}
	if len(temps) == 0 {
		return e.c.ExtrusionTempC
	}
	return stat.Mean(temps, weights)
}

// advance consumes the accumulated gcode/sim time gap in MAX_STEP-sized
// chunks (plus a remainder), deferring anything smaller than MIN_STEP.
func (e *Engine) advance() error {
	for {
		delta := e.gcodeTime - e.simTime
		switch {
		case delta > e.c.MaxStepSeconds:
			if err := e.step(e.c.MaxStepSeconds); err != nil {
				return err
			}
		case delta >= e.c.MinStepSeconds:
			return e.step(delta)
		default:
			return nil
		}
	}
}

type update struct {
	id    model.RoadID
	newT  float64
	above bool
}

// step integrates one dt-sized step over the active set: every new
// temperature is computed from a start-of-step snapshot and applied only
// after the whole sweep, so updates never observe each other mid-step.
func (e *Engine) step(dt float64) error {
	updates := make([]update, 0, len(e.active))

	for id := range e.active {
		r := e.set.Get(id)
		newT, err := e.integrate(r, dt)
		if err != nil {
			return err
		}
		updates = append(updates, update{id: id, newT: newT, above: newT > e.c.HDTCelsius})
	}

	for _, u := range updates {
		r := e.set.Get(u.id)
		if u.above {
			r.DurationTempAboveHDT += dt
		}
		r.Temperature = u.newT
	}

	e.simTime += dt
	e.evict()
	return nil
}

func (e *Engine) integrate(r *model.Road, dt float64) (float64, error) {
	energy := 0.0
	for peerID, area := range r.Contacts {
		peer := e.set.Get(peerID)
		if peer.Travel {
			continue
		}
		var thickness float64
		switch {
		case absInt(r.SourceLine-peer.SourceLine) == 1:
			thickness = r.Length + peer.Length
		case r.LayerNumber != peer.LayerNumber:
			thickness = r.LayerHeight + peer.LayerHeight
		default:
			thickness = r.Width + peer.Width
		}
		if thickness <= 0 {
			continue
		}
		energy += e.c.ThermalConductivity * (area * 1e-6) * (r.Temperature - peer.Temperature) / (thickness * 1e-3) * dt
	}

	energy += dt * (r.FreeArea * 1e-6) * e.c.ConvectionCoeff * (r.Temperature - e.c.EnvironmentTempC)

	tAbs := r.Temperature - e.c.AbsoluteZeroC
	envAbs := e.c.EnvironmentTempC - e.c.AbsoluteZeroC
	energy += dt * (r.FreeArea * 1e-6) * e.c.Emissivity * e.c.StefanBoltzmann * (math.Pow(tAbs, 4) - math.Pow(envAbs, 4))

	deltaT := energy / r.HeatCapacity
	newT := r.Temperature - deltaT

	if r.LayerNumber == 1 {
		return e.c.EnvironmentTempC, nil
	}

	if (newT < e.c.EnvironmentTempC || newT > e.c.ExtrusionTempC) && r.HeatCapacity < e.c.FragileHeatCapacityJPerK {
		newT = e.fragileSubstitute(r)
	}
	if newT < 0.99*e.c.EnvironmentTempC {
		return 0, &model.InvariantError{Road: r.ID, Reason: "temperature outside physical envelope"}
	}
	return newT, nil
}

func (e *Engine) fragileSubstitute(r *model.Road) float64 {
	if len(r.Contacts) == 0 {
		return e.c.EnvironmentTempC
	}
	min := math.Inf(1)
	for peerID := range r.Contacts {
		t := e.set.Get(peerID).Temperature
		if t < min {
			min = t
		}
	}
	return min
}

// evict drops roads that are both cold and buried from the active set; it
// does not delete them from the owning Set.
func (e *Engine) evict() {
	for id := range e.active {
		r := e.set.Get(id)
		if e.curLayer-r.LayerNumber >= e.c.EvictionLayerGap && r.Temperature < e.c.EvictionTempFactor*e.c.EnvironmentTempC {
			delete(e.active, id)
		}
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
