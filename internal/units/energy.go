package units

// Energy accumulators integrate power in Watt-seconds (Joules); results
// and emission factors are expressed in Watt-hours and kilowatt-hours.
const (
	// JoulesPerWattHour converts between Joules and Watt-hours.
	JoulesPerWattHour = 3600.0

	// JoulesPerKilowattHour converts between Joules and kilowatt-hours.
	JoulesPerKilowattHour = 3.6e6
)

// JoulesToWattHours converts an energy in Joules to Watt-hours.
func JoulesToWattHours(j float64) float64 {
	return j / JoulesPerWattHour
}

// JoulesToKilowattHours converts an energy in Joules to kilowatt-hours.
func JoulesToKilowattHours(j float64) float64 {
	return j / JoulesPerKilowattHour
}
