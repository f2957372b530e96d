// Package emissions converts estimated power draw into CO2 mass for
// the two supported powertrain classes.
package emissions

import "github.com/banshee-data/emissions.report/internal/units"

// Powertrain selects the emission model for a vehicle.
type Powertrain string

const (
	// Combustion vehicles burn fuel; emissions scale with fuel volume.
	Combustion Powertrain = "ice"

	// Electric vehicles draw from the grid; emissions scale with the
	// grid's carbon intensity.
	Electric Powertrain = "ev"

	// Auto defers to the per-vehicle default chosen at registration.
	Auto Powertrain = "auto"
)

// Emission model constants.
const (
	// FuelKWhPerLiter is the energy density of gasoline in kWh per liter.
	FuelKWhPerLiter = 8.9

	// FuelGramsCO2PerLiter is the CO2 mass emitted per liter of fuel burned.
	FuelGramsCO2PerLiter = 2310.0

	// DefaultGridGramsCO2PerKWh is the default grid carbon intensity.
	DefaultGridGramsCO2PerKWh = 400.0
)

// FuelCO2 returns the CO2 grams emitted by a combustion powertrain
// drawing powerW Watts for dtS seconds. Non-positive power emits
// nothing (deceleration is handled by the regen path upstream).
func FuelCO2(powerW, dtS float64) float64 {
	if powerW <= 0 {
		return 0
	}
	kwh := units.JoulesToKilowattHours(powerW * dtS)
	liters := kwh / FuelKWhPerLiter
	return liters * FuelGramsCO2PerLiter
}

// GridCO2 returns the CO2 grams attributed to an electric powertrain
// drawing powerW Watts for dtS seconds, given the grid carbon intensity
// in grams CO2 per kWh. A non-positive intensity falls back to the
// default.
func GridCO2(powerW, dtS, gridGramsPerKWh float64) float64 {
	if powerW <= 0 {
		return 0
	}
	if gridGramsPerKWh <= 0 {
		gridGramsPerKWh = DefaultGridGramsCO2PerKWh
	}
	kwh := units.JoulesToKilowattHours(powerW * dtS)
	return kwh * gridGramsPerKWh
}
