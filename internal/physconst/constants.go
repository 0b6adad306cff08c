// Package physconst holds the physical and numerical constants the thermal
// simulation runs against. There are no runtime toggles for these beyond
// the CLI overrides exposed in cmd/roadthermal; the core only ever reads a
// resolved Constants value.
package physconst

// Constants is the fixed set of physical and numerical parameters driving
// road construction, contact detection, and thermal integration.
type Constants struct {
	// Geometry / construction.
	FilamentDiameterMM float64 // filament stock diameter, mm
	XYResolutionMM      float64 // printer XY positioning resolution, mm
	MaxSegmentLengthMM  float64 // splitter cap; 0 disables splitting

	// Contact detection.
	MinContactAreaMM2 float64 // contacts below this area are not recorded
	ContactOvershoot  float64 // group overshoot tolerance factor (e.g. 1.0001)
	FreeAreaSlackMM2  float64 // negative free_area within (-slack, 0) clamps to 0

	// Thermal integration.
	EnvironmentTempC   float64 // bed / ambient temperature, °C
	ExtrusionTempC     float64 // nozzle extrusion temperature, °C
	AbsoluteZeroC      float64 // °C value of absolute zero, for radiation
	ThermalConductivity float64 // W/(m*K)
	VolumetricHeatCap  float64 // J/(m^3*K)
	ConvectionCoeff    float64 // h_env, W/(m^2*K)
	Emissivity         float64 // dimensionless
	StefanBoltzmann    float64 // W/(m^2*K^4)
	HDTCelsius         float64 // heat-deflection temperature threshold, °C

	// Integration stepping.
	MaxStepSeconds float64
	MinStepSeconds float64

	// Fragile-segment regime (spec.md §4.5).
	FragileHeatCapacityJPerK float64

	// Active-set eviction.
	EvictionLayerGap   int     // current_layer - road.layer >= this
	EvictionTempFactor float64 // new_T < factor * T_env
}

// Default returns the constants named in spec.md §4.5 and §6.
func Default() Constants {
	return Constants{
		FilamentDiameterMM: 1.75,
		XYResolutionMM:     0.05,
		MaxSegmentLengthMM: 2.0,

		MinContactAreaMM2: 0.02,
		ContactOvershoot:  1.0001,
		FreeAreaSlackMM2:  0.02,

		EnvironmentTempC:    25.0,
		ExtrusionTempC:      220.0,
		AbsoluteZeroC:       -273.15,
		ThermalConductivity: 0.2,
		VolumetricHeatCap:   1260.0 * 1200.0,
		ConvectionCoeff:     50.0,
		Emissivity:          0.92,
		StefanBoltzmann:     5.6703e-8,
		HDTCelsius:          80.0,

		MaxStepSeconds: 0.2,
		MinStepSeconds: 0.1,

		FragileHeatCapacityJPerK: 1e-4,

		EvictionLayerGap:   3,
		EvictionTempFactor: 1.1,
	}
}
