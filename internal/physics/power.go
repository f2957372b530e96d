package physics

// VehicleParams holds the static physical parameters of one vehicle.
// They are fixed at tracker construction and never mutated afterwards.
type VehicleParams struct {
	// MassKg is the vehicle mass in kilograms.
	MassKg float64

	// Cd is the aerodynamic drag coefficient.
	Cd float64

	// FrontalAreaM2 is the frontal area in square meters.
	FrontalAreaM2 float64

	// Crr is the rolling resistance coefficient.
	Crr float64

	// DrivetrainEff is the drivetrain efficiency in (0, 1].
	DrivetrainEff float64
}

// DefaultVehicleParams returns typical passenger-car parameters. Mass
// defaults to 1500 kg, which is also the fallback when a vehicle's
// physics query fails.
func DefaultVehicleParams() VehicleParams {
	return VehicleParams{
		MassKg:        1500.0,
		Cd:            0.30,
		FrontalAreaM2: 2.2,
		Crr:           0.01,
		DrivetrainEff: 0.90,
	}
}

// Power returns the instantaneous mechanical/electrical power in Watts
// for the given speed (m/s), longitudinal acceleration (m/s^2) and road
// grade.
//
// Tractive power at the wheels is (F_aero + F_roll + F_grav +
// F_inertial) * v. Positive power is amplified by drivetrain losses
// (divide by efficiency); negative power available for regen capture is
// derated by the same losses in reverse (multiply by efficiency).
func (p VehicleParams) Power(speedMPS, accelMPS2, slope float64) float64 {
	fAero := AerodynamicForce(p.Cd, p.FrontalAreaM2, speedMPS)
	fRoll := RollingResistanceForce(p.Crr, p.MassKg)
	fGrav := GradeForce(p.MassKg, slope)
	fInertial := p.MassKg * accelMPS2

	watts := (fAero + fRoll + fGrav + fInertial) * speedMPS

	if watts >= 0 {
		eff := p.DrivetrainEff
		if eff < 1e-6 {
			eff = 1e-6
		}
		return watts / eff
	}
	return watts * p.DrivetrainEff
}
