// Package physics implements the longitudinal force-balance model used
// to estimate instantaneous vehicle power from kinematic samples.
package physics

// Physical constants (SI).
const (
	// Gravity is standard gravitational acceleration in m/s^2.
	Gravity = 9.81

	// AirDensity is air density at sea level in kg/m^3.
	AirDensity = 1.225
)

// AerodynamicForce returns the aerodynamic drag force in Newtons:
// 0.5 * rho * Cd * A * v^2.
func AerodynamicForce(cd, areaM2, speedMPS float64) float64 {
	return 0.5 * AirDensity * cd * areaM2 * speedMPS * speedMPS
}

// RollingResistanceForce returns the rolling resistance force in
// Newtons: Crr * m * g.
func RollingResistanceForce(crr, massKg float64) float64 {
	return crr * massKg * Gravity
}

// GradeForce returns the component of gravity along a slope in
// Newtons. slope is the road grade (rise/run), e.g. 0.01 for 1%.
func GradeForce(massKg, slope float64) float64 {
	return massKg * Gravity * slope
}

// KineticEnergy returns 0.5 * m * v^2 in Joules.
func KineticEnergy(massKg, speedMPS float64) float64 {
	return 0.5 * massKg * speedMPS * speedMPS
}
